package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/grocerplan/internal/catalog"
	"github.com/chrisdamba/grocerplan/internal/dataset"
	"github.com/chrisdamba/grocerplan/internal/repositories/postgres"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the item catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <catalog.csv>",
	Short: "Validate a catalog file and load it into Postgres",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.Database.URL == "" {
			return fmt.Errorf("database.url is not set")
		}

		items, err := dataset.LoadCatalog(args[0])
		if err != nil {
			return err
		}
		// reject the whole file before touching the database
		if _, err := catalog.Normalize(items, catalog.WithKnownStores(cfg.Stores)); err != nil {
			return err
		}

		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := postgres.Migrate(ctx, pool); err != nil {
			return err
		}

		repo := postgres.NewCatalogRepository(pool)
		if replace, _ := cmd.Flags().GetBool("replace"); replace {
			if err := repo.DeleteAll(ctx); err != nil {
				return fmt.Errorf("failed to clear catalog: %w", err)
			}
		}
		if err := repo.BulkCreate(ctx, items); err != nil {
			return err
		}
		count, err := repo.Count(ctx)
		if err != nil {
			return err
		}
		baseLogger.Info("catalog imported", zap.Int("imported", len(items)), zap.Int("total", count))
		return nil
	},
}

var catalogCheckCmd = &cobra.Command{
	Use:   "check <catalog.csv>",
	Short: "Validate a catalog file and report every malformed item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		items, err := dataset.LoadCatalog(args[0])
		if err != nil {
			return err
		}
		cat, err := catalog.Normalize(items, catalog.WithKnownStores(cfg.Stores))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d items, %d purchasable, stores: %v\n", cat.Len(), len(cat.Eligible()), cat.Stores())
		return nil
	},
}

func init() {
	catalogImportCmd.Flags().Bool("replace", false, "Delete the existing catalog first")
	catalogCmd.AddCommand(catalogImportCmd, catalogCheckCmd)
	rootCmd.AddCommand(catalogCmd)
}
