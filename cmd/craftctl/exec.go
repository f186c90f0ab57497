package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/craftops/craftctl/internal/mc"
	"github.com/craftops/craftctl/internal/ui"
)

var (
	execTimeout  time.Duration
	execAttempts int
)

var execCmd = &cobra.Command{
	Use:   "exec <command>...",
	Short: "Run a raw server command",
	Long: `Run a raw command on the server, exactly as typed at the server console.

The command is retried with exponential backoff on transient failures.
Multiple arguments are joined with spaces, so quoting is optional:

  craftctl exec say hello world
  craftctl exec "time set day"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		exec, err := newExecutor()
		if err != nil {
			return err
		}

		opts := execDefaults()
		if execTimeout > 0 {
			opts.Timeout = execTimeout
		}
		if execAttempts > 0 {
			opts.MaxAttempts = execAttempts
		}

		result := exec.Execute(cmd.Context(), mc.Generic(strings.Join(args, " ")), opts)
		if jsonOutput {
			outputJSON(result)
		} else {
			fmt.Print(ui.FormatExecutionResult(result))
			if result.Success && result.RawResponse != "" {
				fmt.Printf("  %s\n", result.RawResponse)
			}
		}
		if !result.Success {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	execCmd.Flags().DurationVar(&execTimeout, "timeout", 0, "Per-attempt timeout (default: 10s)")
	execCmd.Flags().IntVar(&execAttempts, "attempts", 0, "Total attempts including the first try (default: 3)")
	rootCmd.AddCommand(execCmd)
}
