package ledger

import (
	"fmt"
	"strings"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

// Registry holds the categories in insertion order.
type Registry struct {
	order  []string
	byName map[string]model.Category
}

func NewRegistry() *Registry {
	return &Registry{byName: map[string]model.Category{}}
}

func (r *Registry) Get(name string) (model.Category, error) {
	c, ok := r.byName[strings.TrimSpace(name)]
	if !ok {
		return model.Category{}, fmt.Errorf("%w: %q", ErrCategoryNotFound, name)
	}
	return c, nil
}

func (r *Registry) Has(name string) bool {
	_, ok := r.byName[strings.TrimSpace(name)]
	return ok
}

func (r *Registry) All() []model.Category {
	out := make([]model.Category, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}

func (r *Registry) Add(name string, max model.Allowance) (model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Category{}, fmt.Errorf("%w: category name is required", ErrInvalidCategory)
	}
	if !max.Unlimited && max.Points.IsNegative() {
		return model.Category{}, fmt.Errorf("%w: max points for %q must be >= 0", ErrInvalidCategory, name)
	}
	if _, ok := r.byName[name]; ok {
		return model.Category{}, fmt.Errorf("%w: %q", ErrDuplicateCategory, name)
	}
	c := model.Category{Name: name, MaxPoints: max}
	r.order = append(r.order, name)
	r.byName[name] = c
	return c, nil
}
