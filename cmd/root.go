package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/chrisdamba/grocerplan/internal/demand"
	"github.com/chrisdamba/grocerplan/internal/logger"
	"github.com/chrisdamba/grocerplan/internal/models"
)

var (
	cfgFile    string
	cfg        *models.Config
	baseLogger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "grocerplan",
	Short: "Plans the cheapest weekly grocery shop that feeds a household",
	Long: `grocerplan turns a household's members and pantry stock into a minimum-cost,
whole-package shopping list across stores that meets weekly calorie, protein,
carbohydrate and fat floors and buys at least one item from every food group.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = models.LoadConfig(cfgFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		baseLogger, err = logger.New(cfg.LogLevel, cfg.LogFormat)
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(baseLogger)
		if used := viper.ConfigFileUsed(); used != "" {
			baseLogger.Debug("using config file", zap.String("path", used))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if baseLogger != nil {
			_ = baseLogger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "json", "Log format (json or console)")
	rootCmd.PersistentFlags().String("catalog", "", "Catalog file (.csv or .json)")
	rootCmd.PersistentFlags().String("reference", "", "Nutrient reference table (.yaml); the built-in table when empty")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Solve timeout per household (overrides solve_timeout)")

	bindFlag(rootCmd, "log_level", "log-level")
	bindFlag(rootCmd, "log_format", "log-format")
	bindFlag(rootCmd, "catalog_file", "catalog")
	bindFlag(rootCmd, "reference_file", "reference")
	bindFlag(rootCmd, "solve_timeout", "timeout")
}

// bindFlag binds a flag to a config key, only when the flag is set so config
// file values are not shadowed by flag defaults.
func bindFlag(cmd *cobra.Command, key, flag string) {
	f := cmd.PersistentFlags().Lookup(flag)
	if f == nil {
		f = cmd.Flags().Lookup(flag)
	}
	cobra.OnInitialize(func() {
		if f.Changed {
			viper.Set(key, f.Value.String())
		}
	})
}

// Exit codes returned by Execute.
const (
	exitFailure    = 1
	exitInput      = 2
	exitInfeasible = 3
	exitTimeout    = 4
)

func exitCode(err error) int {
	switch {
	case errors.Is(err, models.ErrLookup), errors.Is(err, models.ErrValidation), errors.Is(err, demand.ErrNoMembers):
		return exitInput
	case errors.Is(err, models.ErrInfeasible):
		return exitInfeasible
	case errors.Is(err, models.ErrSolverTimeout):
		return exitTimeout
	default:
		return exitFailure
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}
