package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Plan the weekly shop for one household",
	Example: `  grocerplan solve --catalog catalog.csv --household home.yaml
  grocerplan solve --config config.yaml --stock pantry.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		householdPath, _ := cmd.Flags().GetString("household")
		if stock, _ := cmd.Flags().GetString("stock"); stock != "" {
			cfg.StockFile = stock
		}

		household, err := loadHousehold(cfg, householdPath)
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

		plan, err := p.Plan(ctx, household)
		if err != nil {
			return err
		}
		if err := writer.WritePlan(ctx, plan); err != nil {
			return err
		}
		baseLogger.Debug("plan written", zap.String("plan_id", plan.ID), zap.String("format", cfg.OutputFormat))
		return nil
	},
}

func init() {
	solveCmd.Flags().String("household", "", "Household file (.yaml or .json); defaults to household_file")
	solveCmd.Flags().String("stock", "", "Pantry stock file (.csv, .json or .yaml); defaults to stock_file")
	rootCmd.AddCommand(solveCmd)
}
