package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/craftops/craftctl/internal/clear"
	"github.com/craftops/craftctl/internal/mc"
)

// FormatExecutionResult renders one command result for human output.
func FormatExecutionResult(r mc.ExecutionResult) string {
	var b strings.Builder

	if r.Success {
		fmt.Fprintf(&b, "%s %s\n", RenderOK(IconOK), r.Command)
		if r.UnitsAffected > 0 {
			fmt.Fprintf(&b, "  %s\n", RenderMuted(fmt.Sprintf("%d blocks affected", r.UnitsAffected)))
		}
	} else {
		fmt.Fprintf(&b, "%s %s\n", RenderFail(IconFail), r.Command)
		for _, line := range strings.Split(r.Error, "\n") {
			fmt.Fprintf(&b, "  %s\n", RenderFail(line))
		}
	}

	meta := fmt.Sprintf("took %s", roundDuration(r.ExecutionTime))
	if r.Retries > 0 {
		meta += fmt.Sprintf(", %d retries", r.Retries)
	}
	fmt.Fprintf(&b, "  %s\n", RenderMuted(meta))
	return b.String()
}

// FormatClearSummary renders the aggregate of a clear operation.
func FormatClearSummary(r *clear.Result) string {
	var b strings.Builder

	b.WriteString(RenderHeader("CLEAR OPERATION SUMMARY"))
	b.WriteByte('\n')

	if r.ConnectError != "" {
		fmt.Fprintf(&b, "%s could not connect\n", RenderFail(IconFail))
		for _, line := range strings.Split(r.ConnectError, "\n") {
			fmt.Fprintf(&b, "  %s\n", RenderFail(line))
		}
		return b.String()
	}

	fmt.Fprintf(&b, "  Chunks:  %d total, %s, %s\n",
		r.TotalChunks,
		RenderOK(fmt.Sprintf("%d succeeded", r.ChunksSucceeded)),
		failCount(r.ChunksFailed))
	fmt.Fprintf(&b, "  Blocks:  %d affected\n", r.TotalUnitsAffected)
	fmt.Fprintf(&b, "  Elapsed: %s\n", roundDuration(r.Elapsed))

	if r.GroundRestored {
		fmt.Fprintf(&b, "  Ground:  %s\n", RenderOK("restored"))
	} else {
		fmt.Fprintf(&b, "  Ground:  %s\n", RenderWarn("not fully restored"))
	}
	if r.TimedOut {
		fmt.Fprintf(&b, "  %s\n", RenderWarn(IconWarn+" global time budget exhausted; results are partial"))
	}

	for _, cr := range r.Chunks {
		if cr.Cleared {
			continue
		}
		fmt.Fprintf(&b, "  %s chunk %s failed after %d attempts\n",
			RenderFail(IconFail), cr.Chunk.Box, cr.Attempts)
	}
	return b.String()
}

func failCount(n int) string {
	s := fmt.Sprintf("%d failed", n)
	if n == 0 {
		return RenderMuted(s)
	}
	return RenderFail(s)
}

func roundDuration(d time.Duration) time.Duration {
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond)
	case d >= time.Millisecond:
		return d.Round(time.Millisecond)
	default:
		return d
	}
}
