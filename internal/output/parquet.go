package output

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sync"

	"github.com/chrisdamba/grocerplan/internal/cloudwriter"
	"github.com/chrisdamba/grocerplan/internal/models"
	"github.com/lucsky/cuid"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"
)

// PlanLineRow is one purchased item of one plan, flattened for columnar
// analysis.
type PlanLineRow struct {
	PlanID       string  `parquet:"name=plan_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	HouseholdID  string  `parquet:"name=household_id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CreatedAt    int64   `parquet:"name=created_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Store        string  `parquet:"name=store, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	ItemID       string  `parquet:"name=item_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ItemName     string  `parquet:"name=item_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category     string  `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Quantity     int32   `parquet:"name=quantity, type=INT32"`
	UnitPrice    float64 `parquet:"name=unit_price, type=DOUBLE"`
	LineCost     float64 `parquet:"name=line_cost, type=DOUBLE"`
	LineWeightLb float64 `parquet:"name=line_weight_lb, type=DOUBLE"`
	Calories     float64 `parquet:"name=calories, type=DOUBLE"`
	ProteinG     float64 `parquet:"name=protein_g, type=DOUBLE"`
	CarbsG       float64 `parquet:"name=carbs_g, type=DOUBLE"`
	FatG         float64 `parquet:"name=fat_g, type=DOUBLE"`
	PlanTotal    float64 `parquet:"name=plan_total, type=DOUBLE"`
}

// PlanLineRows flattens a plan in entry order.
func PlanLineRows(plan *models.PurchasePlan) []PlanLineRow {
	total, _ := plan.TotalCost.Float64()
	rows := make([]PlanLineRow, 0, len(plan.Entries))
	for _, e := range plan.Entries {
		price, _ := e.Item.UnitPrice.Float64()
		cost, _ := e.LineCost.Float64()
		n := e.Item.Nutrients.Scale(float64(e.Quantity))
		rows = append(rows, PlanLineRow{
			PlanID:       plan.ID,
			HouseholdID:  plan.HouseholdID,
			CreatedAt:    plan.CreatedAt.UnixMilli(),
			Store:        e.Item.Store,
			ItemID:       e.Item.ID,
			ItemName:     e.Item.Name,
			Category:     string(e.Item.Category),
			Quantity:     int32(e.Quantity),
			UnitPrice:    price,
			LineCost:     cost,
			LineWeightLb: e.LineWeightLb,
			Calories:     n.Calories,
			ProteinG:     n.ProteinG,
			CarbsG:       n.CarbsG,
			FatG:         n.FatG,
			PlanTotal:    total,
		})
	}
	return rows
}

type partitionWriter struct {
	mu   sync.Mutex
	pw   *writer.ParquetWriter
	file source.ParquetFile
}

// ParquetOutput appends plan lines to one parquet file per day partition,
// written locally or uploaded to object storage on Close.
type ParquetOutput struct {
	ctx                context.Context
	basePath           string
	folder             string
	runID              string
	mu                 sync.Mutex
	writers            map[string]*partitionWriter
	cloudWriterFactory cloudwriter.CloudWriterFactory
	cloudBucketName    string
	logger             *zap.Logger
}

type CloudParquetFile struct {
	cloudWriter cloudwriter.CloudWriter
	offset      int64
}

func NewParquetOutput(ctx context.Context, config *models.Config, logger *zap.Logger) (*ParquetOutput, error) {
	var factory cloudwriter.CloudWriterFactory
	if config.OutputDestination == "s3" {
		switch config.CloudStorage.Provider {
		case "", "s3":
			f, err := cloudwriter.NewS3WriterFactory(ctx, config.CloudStorage.Region)
			if err != nil {
				return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			factory = f
		default:
			return nil, fmt.Errorf("unsupported cloud storage provider: %s", config.CloudStorage.Provider)
		}
	}
	return newParquetOutput(ctx, config.OutputPath, config.OutputFolder, factory, config.CloudStorage.BucketName, logger), nil
}

func newParquetOutput(ctx context.Context, basePath, folder string, factory cloudwriter.CloudWriterFactory, bucket string, logger *zap.Logger) *ParquetOutput {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParquetOutput{
		ctx:                ctx,
		basePath:           basePath,
		folder:             folder,
		runID:              cuid.New(),
		writers:            make(map[string]*partitionWriter),
		cloudWriterFactory: factory,
		cloudBucketName:    bucket,
		logger:             logger,
	}
}

func NewCloudParquetFile(cloudWriter cloudwriter.CloudWriter) *CloudParquetFile {
	return &CloudParquetFile{
		cloudWriter: cloudWriter,
		offset:      0,
	}
}

// Open and Create hand back the same object; the upload happens on Close.
func (c *CloudParquetFile) Open(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Create(name string) (source.ParquetFile, error) {
	return c, nil
}

func (c *CloudParquetFile) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		c.offset = offset
	case io.SeekCurrent:
		c.offset += offset
	case io.SeekEnd:
		return 0, fmt.Errorf("seek from end not supported for cloud storage")
	}
	return c.offset, nil
}

func (c *CloudParquetFile) Read(p []byte) (n int, err error) {
	return 0, fmt.Errorf("read not supported for cloud storage")
}

func (c *CloudParquetFile) Write(p []byte) (n int, err error) {
	n, err = c.cloudWriter.Write(p)
	c.offset += int64(n)
	return n, err
}

func (c *CloudParquetFile) Close() error {
	return c.cloudWriter.Close()
}

func (p *ParquetOutput) WritePlan(ctx context.Context, plan *models.PurchasePlan) error {
	partition := partitionPath(plan.CreatedAt)

	p.mu.Lock()
	w, ok := p.writers[partition]
	if !ok {
		var err error
		w, err = p.createNewWriter(partition)
		if err != nil {
			p.mu.Unlock()
			return fmt.Errorf("failed to create new writer: %w", err)
		}
		p.writers[partition] = w
	}
	p.mu.Unlock()

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, row := range PlanLineRows(plan) {
		if err := w.pw.Write(row); err != nil {
			return fmt.Errorf("failed to write plan %s: %w", plan.ID, err)
		}
	}
	return nil
}

func (p *ParquetOutput) createNewWriter(partition string) (*partitionWriter, error) {
	fileName := fmt.Sprintf("plans-%s.parquet", p.runID)

	var fw source.ParquetFile
	if p.cloudWriterFactory != nil {
		objectPath := path.Join(p.folder, partition, fileName)
		cw, err := p.cloudWriterFactory.NewWriter(p.ctx, p.cloudBucketName, objectPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create cloud file writer: %w", err)
		}
		fw = NewCloudParquetFile(cw)
	} else {
		fullPath := filepath.Join(p.basePath, p.folder, filepath.FromSlash(partition))
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return nil, err
		}
		var err error
		fw, err = local.NewLocalFileWriter(filepath.Join(fullPath, fileName))
		if err != nil {
			return nil, fmt.Errorf("failed to create local file writer: %w", err)
		}
	}

	pw, err := writer.NewParquetWriter(fw, new(PlanLineRow), 4)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to create ParquetWriter: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	p.logger.Debug("parquet writer opened", zap.String("partition", partition), zap.String("file", fileName))
	return &partitionWriter{pw: pw, file: fw}, nil
}

func (p *ParquetOutput) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for key, w := range p.writers {
		w.mu.Lock()
		if err := w.pw.WriteStop(); err != nil {
			lastErr = err
			p.logger.Error("error closing writer", zap.String("partition", key), zap.Error(err))
		}
		if err := w.file.Close(); err != nil {
			lastErr = err
			p.logger.Error("error closing file", zap.String("partition", key), zap.Error(err))
		}
		w.mu.Unlock()
	}
	p.writers = make(map[string]*partitionWriter)
	return lastErr
}
