package cmd

import (
	"fmt"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/grocerplan/internal/dataset"
	"github.com/chrisdamba/grocerplan/internal/planner"
)

var batchCmd = &cobra.Command{
	Use:   "batch <households.yaml>",
	Short: "Plan every household in a file in parallel",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		households, err := dataset.LoadHouseholds(args[0])
		if err != nil {
			return err
		}
		p, err := newPlanner(ctx, cfg, baseLogger)
		if err != nil {
			return err
		}

		var cleanup closer
		defer cleanup.close()
		writer, _, err := openWriter(ctx, cfg, baseLogger, &cleanup)
		if err != nil {
			return err
		}

		quiet, _ := cmd.Flags().GetBool("quiet")
		bar := progressbar.NewOptions(len(households),
			progressbar.OptionSetDescription("Planning households"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionSetVisibility(!quiet),
			progressbar.OptionClearOnFinish(),
		)

		var mu sync.Mutex
		var firstErr error
		planned, failed := 0, 0
		_, err = p.PlanBatch(ctx, households, func(r planner.BatchResult) {
			mu.Lock()
			defer mu.Unlock()
			_ = bar.Add(1)
			if r.Err == nil {
				r.Err = writer.WritePlan(ctx, r.Plan)
			}
			if r.Err != nil {
				failed++
				if firstErr == nil {
					firstErr = r.Err
				}
				baseLogger.Warn("household not planned", zap.String("household_id", r.HouseholdID), zap.Error(r.Err))
				return
			}
			planned++
		})
		_ = bar.Finish()
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "planned %d of %d households\n", planned, len(households))
		if failed > 0 {
			return fmt.Errorf("%d household(s) failed, first: %w", failed, firstErr)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().Bool("quiet", false, "Hide the progress bar")
	rootCmd.AddCommand(batchCmd)
}
