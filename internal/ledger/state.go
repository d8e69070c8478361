package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

// State owns the registry, the catalog and the ledger of one tracker session.
// It is not safe for concurrent use.
type State struct {
	Categories *Registry
	Foods      *Catalog
	Ledger     *Ledger
}

// DefaultCategories is the seed set used when storage is empty.
func DefaultCategories() []model.Category {
	return []model.Category{
		{Name: "fats", MaxPoints: model.LimitInt(11)},
		{Name: "carbs", MaxPoints: model.LimitInt(24)},
		{Name: "proteins", MaxPoints: model.LimitInt(28)},
		{Name: "vegetables", MaxPoints: model.Unlimited()},
		{Name: "dairy", MaxPoints: model.LimitInt(16)},
		{Name: "fruits", MaxPoints: model.LimitInt(5)},
	}
}

func New(categories []model.Category, today model.Day) (*State, error) {
	reg := NewRegistry()
	for _, c := range categories {
		if _, err := reg.Add(c.Name, c.MaxPoints); err != nil {
			return nil, err
		}
	}
	foods := NewCatalog(reg)
	return &State{Categories: reg, Foods: foods, Ledger: NewLedger(reg, foods, today)}, nil
}

// Restore rebuilds a state from persisted data. Finite categories without a
// stored balance get one computed from the current day's events.
func Restore(snap model.Snapshot) (*State, error) {
	s, err := New(snap.Categories, snap.LastReset)
	if err != nil {
		return nil, fmt.Errorf("restore categories: %w", err)
	}
	for _, f := range snap.Foods {
		if _, err := s.Foods.Add(f.Name, f.Category, f.PointsPerServing); err != nil {
			return nil, fmt.Errorf("restore foods: %w", err)
		}
	}
	for day, events := range snap.History {
		if len(events) == 0 {
			continue
		}
		restored := make([]model.Event, 0, len(events))
		for i, ev := range events {
			if !s.Categories.Has(ev.Category) {
				return nil, fmt.Errorf("restore history %s #%d: %w: %q", day, i, ErrCategoryNotFound, ev.Category)
			}
			ev.Day = day
			ev.FoodName = strings.TrimSpace(ev.FoodName)
			ev.Category = strings.TrimSpace(ev.Category)
			restored = append(restored, ev)
		}
		s.Ledger.history[day] = restored
	}
	s.Ledger.resetBalances()
	for _, c := range s.Categories.All() {
		if c.MaxPoints.Unlimited {
			continue
		}
		if stored, ok := snap.Remaining[c.Name]; ok && !stored.Unlimited {
			s.Ledger.remaining[c.Name] = stored.Points
		}
	}
	return s, nil
}

func (s *State) Snapshot() model.Snapshot {
	history := make(map[model.Day][]model.Event, len(s.Ledger.history))
	for day := range s.Ledger.history {
		history[day] = s.Ledger.Snapshot(day)
	}
	return model.Snapshot{
		Categories: s.Categories.All(),
		Foods:      s.Foods.All(),
		History:    history,
		Remaining:  s.Ledger.Remaining(),
		LastReset:  s.Ledger.Today(),
	}
}

// AddCategory registers a category and opens its balance for today.
func (s *State) AddCategory(name string, max model.Allowance) (model.Category, error) {
	c, err := s.Categories.Add(name, max)
	if err != nil {
		return model.Category{}, err
	}
	if !c.MaxPoints.Unlimited {
		s.Ledger.remaining[c.Name] = c.MaxPoints.Points.Sub(s.Ledger.spentToday(c.Name))
	}
	return c, nil
}

// Discrepancy is a finite category whose stored balance disagrees with its
// ceiling minus today's consumption.
type Discrepancy struct {
	Category string
	Stored   decimal.Decimal
	Expected decimal.Decimal
}

// Verify checks the budget invariant for every finite category.
func (s *State) Verify() []Discrepancy {
	out := make([]Discrepancy, 0)
	for _, c := range s.Categories.All() {
		if c.MaxPoints.Unlimited {
			continue
		}
		expected := c.MaxPoints.Points.Sub(s.Ledger.spentToday(c.Name))
		stored := s.Ledger.remaining[c.Name]
		if !stored.Equal(expected) {
			out = append(out, Discrepancy{Category: c.Name, Stored: stored, Expected: expected})
		}
	}
	return out
}

// Reconcile rewrites every balance from today's events and returns what was
// wrong before.
func (s *State) Reconcile() []Discrepancy {
	found := s.Verify()
	s.Ledger.resetBalances()
	return found
}
