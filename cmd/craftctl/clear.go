package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/craftops/craftctl/internal/clear"
	"github.com/craftops/craftctl/internal/ui"
)

var (
	clearGroundDepth int
	clearBlock       string
	clearGroundBlock string
	clearMaxEdge     int
	clearParallel    int
	clearBudget      time.Duration
	clearYes         bool
)

var clearCmd = &cobra.Command{
	Use:   "clear <x1> <y1> <z1> <x2> <y2> <z2>",
	Short: "Clear a build site and restore its ground layer",
	Long: `Clear everything in the box between the two corners, then restore the
bottom layers as ground.

The site is partitioned into chunks, each cleared with its own timeout and
retry budget. A failed chunk never aborts the operation; it is reported in
the summary. The whole operation stops dispatching new chunks once the
global time budget runs out.`,
	Args: cobra.ExactArgs(6),
	RunE: func(cmd *cobra.Command, args []string) error {
		site, err := parseBox(args)
		if err != nil {
			return err
		}

		if !clearYes && !jsonOutput {
			ok, err := confirmClear(site.Volume())
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Aborted.")
				return nil
			}
		}

		exec, err := newExecutor()
		if err != nil {
			return err
		}

		opts := clear.Options{
			Site:          site,
			GroundDepth:   pickInt(clearGroundDepth, cfg.GroundDepth),
			ClearBlock:    pickString(clearBlock, cfg.ClearBlock),
			GroundBlock:   pickString(clearGroundBlock, cfg.GroundBlock),
			MaxEdge:       pickInt(clearMaxEdge, cfg.MaxChunkEdge),
			Parallelism:   pickInt(clearParallel, cfg.Parallelism),
			GlobalBudget:  clearBudget,
			ChunkAttempts: cfg.MaxAttempts,
		}
		if opts.GlobalBudget <= 0 {
			opts.GlobalBudget = cfg.GlobalBudget.Std()
		}

		result := clear.New(exec, opts).Run(cmd.Context())
		if jsonOutput {
			outputJSON(result)
		} else {
			fmt.Print(ui.FormatClearSummary(result))
		}
		if result.ConnectError != "" || result.ChunksFailed > 0 || !result.GroundRestored {
			os.Exit(1)
		}
		return nil
	},
}

// confirmClear asks before destroying a site. Skipped with --yes and in
// JSON mode.
func confirmClear(volume int) (bool, error) {
	ok := false
	err := huh.NewConfirm().
		Title(fmt.Sprintf("Clear %d blocks?", volume)).
		Description("Everything in the region will be removed. This cannot be undone.").
		Affirmative("Clear it").
		Negative("Cancel").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("confirmation: %w", err)
	}
	return ok, nil
}

func pickInt(flag, fallback int) int {
	if flag > 0 {
		return flag
	}
	return fallback
}

func pickString(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	return fallback
}

func init() {
	clearCmd.Flags().IntVar(&clearGroundDepth, "ground-depth", 0, "Bottom layers restored as ground (default: 1)")
	clearCmd.Flags().StringVar(&clearBlock, "clear-block", "", "Block used for the clear pass (default: air)")
	clearCmd.Flags().StringVar(&clearGroundBlock, "ground-block", "", "Block used for ground restoration (default: grass_block)")
	clearCmd.Flags().IntVar(&clearMaxEdge, "max-edge", 0, "Maximum chunk edge length (default: 32)")
	clearCmd.Flags().IntVar(&clearParallel, "parallel", 0, "Concurrent chunk workers (default: 1, sequential)")
	clearCmd.Flags().DurationVar(&clearBudget, "budget", 0, "Global wall-clock budget (default: 5m)")
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}
