package dataset

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chrisdamba/grocerplan/internal/models"
	"gopkg.in/yaml.v3"
)

type householdsDocument struct {
	Households []models.Household `json:"households" yaml:"households"`
}

// LoadHousehold reads a single household from YAML or JSON.
func LoadHousehold(path string) (models.Household, error) {
	var h models.Household
	if err := decodeFile(path, &h); err != nil {
		return models.Household{}, err
	}
	h.NormalizeSex()
	return h, nil
}

// LoadHouseholds reads a document with a top-level "households" list.
func LoadHouseholds(path string) ([]models.Household, error) {
	var doc householdsDocument
	if err := decodeFile(path, &doc); err != nil {
		return nil, err
	}
	for i := range doc.Households {
		doc.Households[i].NormalizeSex()
		if doc.Households[i].ID == "" {
			doc.Households[i].ID = fmt.Sprintf("household-%d", i+1)
		}
	}
	return doc.Households, nil
}

// WriteHouseholds writes households in the layout LoadHouseholds expects.
func WriteHouseholds(w io.Writer, households []models.Household) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(householdsDocument{Households: households}); err != nil {
		return err
	}
	return enc.Close()
}

// LoadStock reads pantry stock from a CSV (item_id,quantity) or JSON file.
func LoadStock(path string) ([]models.PantryStockItem, error) {
	if strings.ToLower(filepath.Ext(path)) != ".csv" {
		var stock []models.PantryStockItem
		if err := decodeFile(path, &stock); err != nil {
			return nil, err
		}
		return stock, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stock: %w", err)
	}
	defer f.Close()
	return ReadStockCSV(f)
}

func ReadStockCSV(r io.Reader) ([]models.PantryStockItem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read stock header: %w", err)
	}
	cols := indexHeader(header)
	idCol, ok := cols["item_id"]
	if !ok {
		return nil, fmt.Errorf("stock is missing column %q", "item_id")
	}
	qtyCol, ok := cols["quantity"]
	if !ok {
		return nil, fmt.Errorf("stock is missing column %q", "quantity")
	}

	var stock []models.PantryStockItem
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read stock line %d: %w", line, err)
		}
		if idCol >= len(record) || qtyCol >= len(record) {
			return nil, fmt.Errorf("stock line %d: too few fields", line)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(record[qtyCol]))
		if err != nil {
			return nil, fmt.Errorf("stock line %d: invalid quantity: %w", line, err)
		}
		stock = append(stock, models.PantryStockItem{
			ItemID:   strings.TrimSpace(record[idCol]),
			Quantity: qty,
		})
	}
	return stock, nil
}

func decodeFile(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.NewDecoder(f).Decode(v)
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(v)
	default:
		return fmt.Errorf("unsupported file format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
