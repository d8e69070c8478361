package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

// FoodRow is one line of a bulk catalog edit for a single category.
type FoodRow struct {
	Name             string
	PointsPerServing decimal.Decimal
}

// Catalog holds foods keyed by name. Names are unique across all categories.
type Catalog struct {
	categories *Registry
	order      []string
	byName     map[string]model.Food
}

func NewCatalog(categories *Registry) *Catalog {
	return &Catalog{categories: categories, byName: map[string]model.Food{}}
}

func (c *Catalog) Lookup(name string) (model.Food, error) {
	f, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return model.Food{}, fmt.Errorf("%w: %q", ErrFoodNotFound, name)
	}
	return f, nil
}

func (c *Catalog) All() []model.Food {
	out := make([]model.Food, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// InCategory returns the foods of one category in catalog order.
func (c *Catalog) InCategory(category string) []model.Food {
	out := make([]model.Food, 0)
	for _, name := range c.order {
		if f := c.byName[name]; f.Category == category {
			out = append(out, f)
		}
	}
	return out
}

func (c *Catalog) Add(name, category string, pointsPerServing decimal.Decimal) (model.Food, error) {
	name = strings.TrimSpace(name)
	category = strings.TrimSpace(category)
	if err := validateFood(name, pointsPerServing); err != nil {
		return model.Food{}, err
	}
	if _, err := c.categories.Get(category); err != nil {
		return model.Food{}, err
	}
	if existing, ok := c.byName[name]; ok {
		return model.Food{}, fmt.Errorf("%w: %q is in category %q", ErrDuplicateFood, name, existing.Category)
	}
	f := model.Food{Name: name, Category: category, PointsPerServing: pointsPerServing}
	c.order = append(c.order, name)
	c.byName[name] = f
	return f, nil
}

func (c *Catalog) Remove(name string) error {
	name = strings.TrimSpace(name)
	if _, ok := c.byName[name]; !ok {
		return fmt.Errorf("%w: %q", ErrFoodNotFound, name)
	}
	delete(c.byName, name)
	c.order = slices.DeleteFunc(c.order, func(n string) bool { return n == name })
	return nil
}

// ReplaceCategory drops every food in category and inserts rows in order.
// Nothing changes when a row is invalid or its name belongs to another
// category. A name repeated within rows keeps its last points value.
func (c *Catalog) ReplaceCategory(category string, rows []FoodRow) error {
	category = strings.TrimSpace(category)
	if _, err := c.categories.Get(category); err != nil {
		return err
	}
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if err := validateFood(name, row.PointsPerServing); err != nil {
			return err
		}
		if existing, ok := c.byName[name]; ok && existing.Category != category {
			return fmt.Errorf("%w: %q is in category %q", ErrDuplicateFood, name, existing.Category)
		}
	}

	order := make([]string, 0, len(c.order)+len(rows))
	for _, name := range c.order {
		if c.byName[name].Category == category {
			delete(c.byName, name)
			continue
		}
		order = append(order, name)
	}
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if _, ok := c.byName[name]; !ok {
			order = append(order, name)
		}
		c.byName[name] = model.Food{Name: name, Category: category, PointsPerServing: row.PointsPerServing}
	}
	c.order = order
	return nil
}

func validateFood(name string, pointsPerServing decimal.Decimal) error {
	if name == "" {
		return fmt.Errorf("%w: food name is required", ErrInvalidFood)
	}
	if pointsPerServing.IsNegative() {
		return fmt.Errorf("%w: points per serving for %q must be >= 0", ErrInvalidFood, name)
	}
	return nil
}
