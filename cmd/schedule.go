package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/grocerplan/internal/dataset"
	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule <households.yaml>",
	Short: "Re-plan every household on the configured cron schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

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

		path := args[0]
		source := func() ([]models.Household, error) { return dataset.LoadHouseholds(path) }
		sched, err := scheduler.NewScheduler(cfg.Schedule, p, source, writer, 0, baseLogger.Named("scheduler"))
		if err != nil {
			return err
		}

		if now, _ := cmd.Flags().GetBool("now"); now {
			summary, err := sched.RunOnce(ctx)
			if err != nil {
				baseLogger.Error("initial replan failed", zap.Error(err))
			} else {
				baseLogger.Info("initial replan finished", zap.Int("planned", summary.Planned), zap.Int("failed", summary.Failed))
			}
		}

		if err := sched.Start(); err != nil {
			return err
		}
		<-ctx.Done()
		baseLogger.Info("shutdown signal received")
		sched.Stop()
		return nil
	},
}

func init() {
	scheduleCmd.Flags().Bool("now", false, "Run once immediately before waiting for the schedule")
	rootCmd.AddCommand(scheduleCmd)
}
