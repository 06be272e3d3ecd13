package models

// HouseholdMember is one person the weekly plan has to feed.
type HouseholdMember struct {
	Age int `json:"age" yaml:"age" mapstructure:"age"`
	Sex Sex `json:"sex" yaml:"sex" mapstructure:"sex"`
}

type Household struct {
	ID      string            `json:"id" yaml:"id" mapstructure:"id"`
	Members []HouseholdMember `json:"members" yaml:"members" mapstructure:"members"`
	Stock   []PantryStockItem `json:"stock,omitempty" yaml:"stock,omitempty" mapstructure:"stock"`
}

// NormalizeSex canonicalises sex spellings ("M", "Female") in place. Unknown
// values are left alone so the reference lookup reports them.
func (h *Household) NormalizeSex() {
	for i, m := range h.Members {
		if sex, err := ParseSex(string(m.Sex)); err == nil {
			h.Members[i].Sex = sex
		}
	}
}

// PantryStockItem is an unresolved reference to a catalog item already at home.
type PantryStockItem struct {
	ItemID   string `json:"item_id" yaml:"item_id" mapstructure:"item_id"`
	Quantity int    `json:"quantity" yaml:"quantity" mapstructure:"quantity"`
}

// StockLine is a pantry item resolved against the catalog.
type StockLine struct {
	Item     CatalogItem
	Quantity int
}

func (s StockLine) Nutrients() Nutrients {
	return s.Item.Nutrients.Scale(float64(s.Quantity))
}
