// Package reference holds the nutrient reference table: daily requirement rows
// keyed by inclusive age bracket and sex.
package reference

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/chrisdamba/grocerplan/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed default_requirements.yaml
var defaultRequirements []byte

// Table is immutable after construction and safe for concurrent lookups.
type Table struct {
	rows []models.RequirementRow
}

type document struct {
	Rows []models.RequirementRow `yaml:"rows"`
}

// NewTable validates rows and builds a table. Brackets of the same sex must
// not overlap, so every (age, sex) pair resolves to at most one row.
func NewTable(rows []models.RequirementRow) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("reference table has no rows")
	}

	sorted := make([]models.RequirementRow, len(rows))
	for i, row := range rows {
		sex, err := models.ParseSex(string(row.Sex))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		row.Sex = sex
		if row.MinAge < 0 || row.MaxAge < row.MinAge {
			return nil, fmt.Errorf("row %d: invalid age bracket %d-%d", i, row.MinAge, row.MaxAge)
		}
		if err := row.Daily.Validate(); err != nil {
			return nil, fmt.Errorf("row %d (%s %d-%d): %w", i, sex, row.MinAge, row.MaxAge, err)
		}
		sorted[i] = row
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Sex != sorted[j].Sex {
			return sorted[i].Sex < sorted[j].Sex
		}
		return sorted[i].MinAge < sorted[j].MinAge
	})
	for i := 1; i < len(sorted); i++ {
		prev, row := sorted[i-1], sorted[i]
		if prev.Sex == row.Sex && prev.MaxAge >= row.MinAge {
			return nil, fmt.Errorf("overlapping brackets for %s: %d-%d and %d-%d",
				row.Sex, prev.MinAge, prev.MaxAge, row.MinAge, row.MaxAge)
		}
	}

	return &Table{rows: sorted}, nil
}

// Lookup returns the row whose bracket contains age for sex. There is no
// fallback row; an unmatched member is a *models.LookupError.
func (t *Table) Lookup(age int, sex models.Sex) (models.RequirementRow, error) {
	for _, row := range t.rows {
		if row.Matches(age, sex) {
			return row, nil
		}
	}
	return models.RequirementRow{}, &models.LookupError{MemberIndex: -1, Age: age, Sex: sex}
}

// Rows returns a copy of the table rows ordered by sex and age.
func (t *Table) Rows() []models.RequirementRow {
	out := make([]models.RequirementRow, len(t.rows))
	copy(out, t.rows)
	return out
}

func Decode(r io.Reader) (*Table, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode reference table: %w", err)
	}
	return NewTable(doc.Rows)
}

// Load reads a YAML reference table from path.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f)
}

// Default returns the table compiled into the binary.
func Default() *Table {
	var doc document
	if err := yaml.Unmarshal(defaultRequirements, &doc); err != nil {
		panic(fmt.Sprintf("reference: embedded table is invalid: %v", err))
	}
	t, err := NewTable(doc.Rows)
	if err != nil {
		panic(fmt.Sprintf("reference: embedded table is invalid: %v", err))
	}
	return t
}
