// Package ui provides terminal styling for craftctl output, with adaptive
// light/dark colors and plain-text fallback when color is unavailable.
package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Semantic status colors, adaptive light/dark.
var (
	ColorOK = lipgloss.AdaptiveColor{
		Light: "#1a7f37",
		Dark:  "#3fb950",
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#9a6700",
		Dark:  "#d29922",
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#cf222e",
		Dark:  "#f85149",
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#6e7781",
		Dark:  "#8b949e",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#0969da",
		Dark:  "#58a6ff",
	}
)

// Status styles, consistent across all commands.
var (
	OKStyle     = lipgloss.NewStyle().Foreground(ColorOK)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
)

// Status icons.
const (
	IconOK   = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
)

// ShouldUseColor reports whether styled output is appropriate: a real
// terminal on stdout, NO_COLOR unset, and a color-capable profile.
func ShouldUseColor() bool {
	if termenv.EnvNoColor() {
		return false
	}
	return termenv.NewOutput(os.Stdout).ColorProfile() != termenv.Ascii
}

// RenderOK renders text with success styling.
func RenderOK(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return OKStyle.Render(s)
}

// RenderWarn renders text with warning styling.
func RenderWarn(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return WarnStyle.Render(s)
}

// RenderFail renders text with failure styling.
func RenderFail(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return FailStyle.Render(s)
}

// RenderMuted renders text with muted styling.
func RenderMuted(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return MutedStyle.Render(s)
}

// RenderHeader renders a bold section header.
func RenderHeader(s string) string {
	if !ShouldUseColor() {
		return s
	}
	return HeaderStyle.Render(s)
}
