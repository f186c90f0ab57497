package main

import (
	_ "embed"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/craftops/craftctl/internal/ui"
)

//go:embed guide.md
var guideMarkdown string

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Show the usage guide",
	Long:  `Show the full usage guide, rendered for the terminal.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(ui.RenderMarkdown(guideMarkdown))
	},
}

func init() {
	rootCmd.AddCommand(guideCmd)
}
