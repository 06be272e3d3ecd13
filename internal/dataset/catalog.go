// Package dataset reads and writes the file formats the CLI exchanges with
// the outside world: catalogs, pantry stock and households.
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
	"github.com/shopspring/decimal"
)

// CatalogColumns is the header written by WriteCatalogCSV. Only id, store,
// category, unit_price and max_quantity are mandatory when reading.
var CatalogColumns = []string{
	"id", "name", "food", "store", "category", "unit_price",
	"calories", "protein_g", "carbs_g", "fat_g", "max_quantity", "weight_lb",
}

var requiredCatalogColumns = []string{"id", "store", "category", "unit_price", "max_quantity"}

// LoadCatalog reads a catalog from a .csv or .json file.
func LoadCatalog(path string) ([]models.CatalogItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCatalogCSV(f)
	case ".json":
		var items []models.CatalogItem
		if err := json.NewDecoder(f).Decode(&items); err != nil {
			return nil, fmt.Errorf("failed to decode catalog %s: %w", path, err)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

// ReadCatalogCSV parses catalog rows by header name, so column order is free.
// Categories go through models.ParseCategory; unknown labels are kept verbatim
// for the normalizer to reject.
func ReadCatalogCSV(r io.Reader) ([]models.CatalogItem, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog header: %w", err)
	}
	cols := indexHeader(header)
	for _, c := range requiredCatalogColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("catalog is missing column %q", c)
		}
	}

	var items []models.CatalogItem
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog line %d: %w", line, err)
		}
		get := func(name string) string {
			if i, ok := cols[name]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		item := models.CatalogItem{
			ID:    get("id"),
			Name:  get("name"),
			Food:  get("food"),
			Store: get("store"),
		}
		if c, err := models.ParseCategory(get("category")); err == nil {
			item.Category = c
		} else {
			item.Category = models.Category(get("category"))
		}

		price := strings.TrimPrefix(get("unit_price"), "$")
		if item.UnitPrice, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("line %d: invalid unit_price %q", line, price)
		}

		floats := []struct {
			col string
			dst *float64
		}{
			{"calories", &item.Nutrients.Calories},
			{"protein_g", &item.Nutrients.ProteinG},
			{"carbs_g", &item.Nutrients.CarbsG},
			{"fat_g", &item.Nutrients.FatG},
			{"weight_lb", &item.WeightLb},
		}
		for _, f := range floats {
			if *f.dst, err = parseFloat(get(f.col)); err != nil {
				return nil, fmt.Errorf("line %d: invalid %s: %w", line, f.col, err)
			}
		}
		if item.MaxQuantity, err = strconv.Atoi(get("max_quantity")); err != nil {
			return nil, fmt.Errorf("line %d: invalid max_quantity: %w", line, err)
		}

		items = append(items, item)
	}
	return items, nil
}

// WriteCatalogCSV writes items with the CatalogColumns header.
func WriteCatalogCSV(w io.Writer, items []models.CatalogItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CatalogColumns); err != nil {
		return err
	}
	for _, item := range items {
		row := []string{
			item.ID,
			item.Name,
			item.Food,
			item.Store,
			string(item.Category),
			item.UnitPrice.StringFixed(2),
			formatFloat(item.Nutrients.Calories),
			formatFloat(item.Nutrients.ProteinG),
			formatFloat(item.Nutrients.CarbsG),
			formatFloat(item.Nutrients.FatG),
			strconv.Itoa(item.MaxQuantity),
			formatFloat(item.WeightLb),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func indexHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return cols
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
