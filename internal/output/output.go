// Package output delivers finished purchase plans: to the terminal, to files
// partitioned by plan date, to object storage, to Kafka, or to a repository.
package output

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/chrisdamba/grocerplan/internal/output/producers"
	"go.uber.org/zap"
)

type PlanWriter interface {
	WritePlan(ctx context.Context, plan *models.PurchasePlan) error
	Close() error
}

// NewDestination builds the writer selected by output_format, with Kafka
// fanned in when kafka_enabled is set.
func NewDestination(ctx context.Context, config *models.Config, logger *zap.Logger) (PlanWriter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var primary PlanWriter
	switch config.OutputFormat {
	case "", "console":
		primary = NewConsoleOutput(nil)
	case "json":
		primary = NewJSONOutput(config.OutputPath, config.OutputFolder)
	case "csv":
		primary = NewCSVOutput(config.OutputPath, config.OutputFolder)
	case "parquet":
		p, err := NewParquetOutput(ctx, config, logger.Named("parquet"))
		if err != nil {
			return nil, fmt.Errorf("failed to create parquet output: %w", err)
		}
		primary = p
	default:
		return nil, fmt.Errorf("unsupported output format: %s", config.OutputFormat)
	}

	if !config.KafkaEnabled {
		return primary, nil
	}

	producer, err := producers.NewSaramaProducer(config, logger.Named("kafka"))
	if err != nil {
		primary.Close()
		return nil, err
	}
	return NewMultiOutput(primary, NewKafkaOutput(producer, config.KafkaTopic)), nil
}

// MultiOutput writes each plan to every destination in order and stops at the
// first failure.
type MultiOutput struct {
	writers []PlanWriter
}

func NewMultiOutput(writers ...PlanWriter) *MultiOutput {
	return &MultiOutput{writers: writers}
}

func (m *MultiOutput) WritePlan(ctx context.Context, plan *models.PurchasePlan) error {
	for _, w := range m.writers {
		if err := w.WritePlan(ctx, plan); err != nil {
			return err
		}
	}
	return nil
}

func (m *MultiOutput) Close() error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// partitionPath mirrors the hive-style layout used for every file output.
func partitionPath(t time.Time) string {
	t = t.UTC()
	year, month, day := t.Date()
	return fmt.Sprintf("year=%d/month=%02d/day=%02d", year, month, day)
}

func planDir(basePath, folder string, plan *models.PurchasePlan) string {
	return filepath.Join(basePath, folder, partitionPath(plan.CreatedAt))
}

var unsafeFileChars = strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")

// sheetName turns a store name into a file-safe sheet name of at most 31
// characters, the spreadsheet limit.
func sheetName(store string) string {
	name := unsafeFileChars.Replace(strings.TrimSpace(store))
	if name == "" {
		name = "store"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
