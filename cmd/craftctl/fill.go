package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/craftops/craftctl/internal/mc"
	"github.com/craftops/craftctl/internal/region"
	"github.com/craftops/craftctl/internal/ui"
)

var (
	fillReplace string
	fillMaxEdge int
)

var fillCmd = &cobra.Command{
	Use:   "fill <x1> <y1> <z1> <x2> <y2> <z2> <block>",
	Short: "Fill a region with a block",
	Long: `Fill the axis-aligned box between the two corners with the given block.

Regions larger than the server's per-command block limit are partitioned
into chunks and filled one command per chunk. Chunk failures are reported
individually; the remaining chunks still run.`,
	Args: cobra.ExactArgs(7),
	RunE: func(cmd *cobra.Command, args []string) error {
		box, err := parseBox(args[:6])
		if err != nil {
			return err
		}
		block := args[6]

		exec, err := newExecutor()
		if err != nil {
			return err
		}

		maxEdge := fillMaxEdge
		if maxEdge <= 0 {
			maxEdge = cfg.MaxChunkEdge
		}
		chunks := region.Partition(box, maxEdge, block, fillReplace)
		if !jsonOutput && len(chunks) > 1 {
			fmt.Printf("%s\n", ui.RenderMuted(fmt.Sprintf("region spans %d blocks; filling in %d chunks", box.Volume(), len(chunks))))
		}

		opts := execDefaults()
		failed := 0
		results := make([]mc.ExecutionResult, 0, len(chunks))
		for _, chunk := range chunks {
			result := exec.Execute(cmd.Context(), mc.FillChunk(chunk), opts)
			results = append(results, result)
			if !result.Success {
				failed++
			}
			if !jsonOutput {
				fmt.Print(ui.FormatExecutionResult(result))
			}
		}

		if jsonOutput {
			outputJSON(results)
		}
		if failed > 0 {
			if !jsonOutput {
				fmt.Printf("%s\n", ui.RenderFail(fmt.Sprintf("%d of %d chunks failed", failed, len(chunks))))
			}
			os.Exit(1)
		}
		return nil
	},
}

// parseBox parses six coordinate arguments into a normalized box.
func parseBox(args []string) (region.Box, error) {
	coords := make([]int, 6)
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return region.Box{}, fmt.Errorf("coordinate %q is not an integer", arg)
		}
		coords[i] = n
	}
	return region.NewBox(coords[0], coords[1], coords[2], coords[3], coords[4], coords[5]), nil
}

func init() {
	fillCmd.Flags().StringVar(&fillReplace, "replace", "", "Only replace this block type")
	fillCmd.Flags().IntVar(&fillMaxEdge, "max-edge", 0, "Maximum chunk edge length (default: 32)")
	rootCmd.AddCommand(fillCmd)
}
