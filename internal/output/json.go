package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chrisdamba/grocerplan/internal/models"
)

// JSONOutput writes one indented document per plan under
// basePath/folder/year=/month=/day=/<plan id>.json.
type JSONOutput struct {
	basePath string
	folder   string
}

func NewJSONOutput(basePath, folder string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		folder:   folder,
	}
}

func (j *JSONOutput) WritePlan(ctx context.Context, plan *models.PurchasePlan) error {
	fullPath := planDir(j.basePath, j.folder, plan)
	if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
		return err
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode plan %s: %w", plan.ID, err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(filepath.Join(fullPath, plan.ID+".json"), data, 0o644); err != nil {
		return fmt.Errorf("failed to write plan %s: %w", plan.ID, err)
	}
	return nil
}

func (j *JSONOutput) Close() error {
	return nil
}
