package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chrisdamba/grocerplan/internal/dataset"
	"github.com/chrisdamba/grocerplan/internal/factories"
	"github.com/chrisdamba/grocerplan/internal/models"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic catalog and households for trying the planner",
	RunE: func(cmd *cobra.Command, args []string) error {
		seed, _ := cmd.Flags().GetInt64("seed")
		stores, _ := cmd.Flags().GetStringSlice("stores")
		perCategory, _ := cmd.Flags().GetInt("per-category")
		count, _ := cmd.Flags().GetInt("households")
		maxSize, _ := cmd.Flags().GetInt("max-members")
		outDir, _ := cmd.Flags().GetString("out")

		if len(stores) == 0 {
			stores = cfg.Stores
		}
		if len(stores) == 0 {
			return fmt.Errorf("at least one store is required")
		}
		if err := os.MkdirAll(outDir, os.ModePerm); err != nil {
			return err
		}

		factories.Seed(seed)
		cf := &factories.CatalogItemFactory{}
		hf := &factories.HouseholdFactory{}

		items := cf.CreateCatalog(stores, perCategory)
		households := make([]models.Household, 0, count)
		for i := 0; i < count; i++ {
			h := hf.CreateHousehold(1 + i%maxSize)
			h.Stock = hf.CreateStock(items, 3)
			households = append(households, h)
		}

		catalogPath := filepath.Join(outDir, "catalog.csv")
		if err := writeFile(catalogPath, func(f *os.File) error { return dataset.WriteCatalogCSV(f, items) }); err != nil {
			return err
		}
		householdsPath := filepath.Join(outDir, "households.yaml")
		if err := writeFile(householdsPath, func(f *os.File) error { return dataset.WriteHouseholds(f, households) }); err != nil {
			return err
		}

		baseLogger.Info("synthetic data written",
			zap.String("catalog", catalogPath),
			zap.Int("items", len(items)),
			zap.String("households", householdsPath),
			zap.Int("count", len(households)))
		return nil
	},
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

func init() {
	generateCmd.Flags().Int64("seed", 42, "Random seed")
	generateCmd.Flags().StringSlice("stores", []string{"Kroger", "Costco", "Aldi"}, "Store names")
	generateCmd.Flags().Int("per-category", 3, "Items per store and category")
	generateCmd.Flags().Int("households", 10, "Number of households")
	generateCmd.Flags().Int("max-members", 5, "Largest household size")
	generateCmd.Flags().String("out", "data", "Output directory")
	rootCmd.AddCommand(generateCmd)
}
