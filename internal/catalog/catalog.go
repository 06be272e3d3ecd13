// Package catalog validates purchasable items and exposes them as an immutable
// Catalog that concurrent solves share by reference.
package catalog

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/chrisdamba/grocerplan/internal/models"
)

type Catalog struct {
	items    []models.CatalogItem
	byID     map[string]int
	eligible []int
	stores   []string
}

type options struct {
	knownStores map[string]struct{}
}

type Option func(*options)

// WithKnownStores restricts items to the given stores. Store names compare
// case-insensitively. An empty list accepts any non-empty store.
func WithKnownStores(stores []string) Option {
	return func(o *options) {
		if len(stores) == 0 {
			return
		}
		o.knownStores = make(map[string]struct{}, len(stores))
		for _, s := range stores {
			o.knownStores[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
		}
	}
}

// Normalize validates every item and fails with a *models.ValidationError
// naming all offending ids. Items are never corrected.
func Normalize(items []models.CatalogItem, opts ...Option) (*Catalog, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	verr := &models.ValidationError{}
	c := &Catalog{
		items: make([]models.CatalogItem, 0, len(items)),
		byID:  make(map[string]int, len(items)),
	}
	storeSet := make(map[string]struct{})
	// ids of invalid items count too
	seen := make(map[string]bool, len(items))

	for i, item := range items {
		id := strings.TrimSpace(item.ID)
		problems := validateItem(item, o)
		if id == "" {
			id = fmt.Sprintf("#%d", i)
			problems = append([]string{"missing id"}, problems...)
		} else if seen[id] {
			problems = append([]string{"duplicate id"}, problems...)
		}
		seen[id] = true
		if len(problems) > 0 {
			for _, problem := range problems {
				verr.Add(id, problem)
			}
			continue
		}

		item.ID = id
		item.Store = strings.TrimSpace(item.Store)
		c.byID[id] = len(c.items)
		if item.Eligible() {
			c.eligible = append(c.eligible, len(c.items))
		}
		c.items = append(c.items, item)
		storeSet[item.Store] = struct{}{}
	}

	if !verr.Empty() {
		return nil, verr
	}

	for s := range storeSet {
		c.stores = append(c.stores, s)
	}
	sort.Strings(c.stores)
	return c, nil
}

func validateItem(item models.CatalogItem, o options) []string {
	var problems []string
	store := strings.TrimSpace(item.Store)
	if store == "" {
		problems = append(problems, "missing store")
	} else if o.knownStores != nil {
		if _, ok := o.knownStores[strings.ToLower(store)]; !ok {
			problems = append(problems, fmt.Sprintf("unrecognized store %q", item.Store))
		}
	}
	if !item.Category.Valid() {
		problems = append(problems, fmt.Sprintf("unrecognized category %q", item.Category))
	}
	if item.UnitPrice.IsNegative() {
		problems = append(problems, fmt.Sprintf("negative unit price %s", item.UnitPrice))
	}
	if err := item.Nutrients.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if item.MaxQuantity < 0 {
		problems = append(problems, fmt.Sprintf("negative max quantity %d", item.MaxQuantity))
	}
	if item.WeightLb < 0 || math.IsNaN(item.WeightLb) || math.IsInf(item.WeightLb, 0) {
		problems = append(problems, fmt.Sprintf("invalid weight %g", item.WeightLb))
	}
	return problems
}

func (c *Catalog) Len() int {
	return len(c.items)
}

// Items returns every validated item, including those with max quantity 0.
func (c *Catalog) Items() []models.CatalogItem {
	out := make([]models.CatalogItem, len(c.items))
	copy(out, c.items)
	return out
}

// Eligible returns the items that form the decision space, in catalog order.
func (c *Catalog) Eligible() []models.CatalogItem {
	out := make([]models.CatalogItem, len(c.eligible))
	for i, idx := range c.eligible {
		out[i] = c.items[idx]
	}
	return out
}

func (c *Catalog) Item(id string) (models.CatalogItem, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return models.CatalogItem{}, false
	}
	return c.items[idx], true
}

func (c *Catalog) Stores() []string {
	out := make([]string, len(c.stores))
	copy(out, c.stores)
	return out
}

// ResolveStock binds pantry references to catalog items. Unknown ids and
// negative quantities are reported together as a *models.ValidationError.
// Zero-quantity lines are dropped.
func (c *Catalog) ResolveStock(stock []models.PantryStockItem) ([]models.StockLine, error) {
	verr := &models.ValidationError{}
	lines := make([]models.StockLine, 0, len(stock))
	for _, s := range stock {
		item, ok := c.Item(strings.TrimSpace(s.ItemID))
		switch {
		case !ok:
			verr.Add(s.ItemID, "stock references unknown catalog item")
		case s.Quantity < 0:
			verr.Add(s.ItemID, fmt.Sprintf("negative stock quantity %d", s.Quantity))
		case s.Quantity > 0:
			lines = append(lines, models.StockLine{Item: item, Quantity: s.Quantity})
		}
	}
	if !verr.Empty() {
		return nil, verr
	}
	return lines, nil
}
