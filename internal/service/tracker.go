// Package service exposes the tracker session used by the CLI: every entry
// point rolls the day over first and mutations are written through to the
// store.
package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DorNorimberg/Food-Tracker/internal/ledger"
	"github.com/DorNorimberg/Food-Tracker/internal/model"
	"github.com/DorNorimberg/Food-Tracker/internal/store"
)

type Option func(*Tracker)

func WithLogger(log *slog.Logger) Option {
	return func(t *Tracker) {
		if log != nil {
			t.log = log
		}
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLocation sets the zone used to decide the calendar day.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) {
		if loc != nil {
			t.loc = loc
		}
	}
}

// Tracker owns one ledger state and its store. It is not safe for concurrent
// use.
type Tracker struct {
	store store.Store
	state *ledger.State
	log   *slog.Logger
	now   func() time.Time
	loc   *time.Location
}

// Open loads the stored state, seeding the default categories when the store
// is empty, and rolls the day over.
func Open(s store.Store, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		store: s,
		log:   slog.New(slog.DiscardHandler),
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(t)
	}

	snap, ok, err := s.Load()
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if !ok {
		t.state, err = ledger.New(ledger.DefaultCategories(), t.today())
		if err != nil {
			return nil, err
		}
		t.log.Info("seeded default categories", "count", len(t.state.Categories.All()))
		if err := t.save(); err != nil {
			return nil, err
		}
		return t, nil
	}

	if t.state, err = ledger.Restore(snap); err != nil {
		return nil, err
	}
	if err := t.rollover(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Tracker) today() model.Day {
	return model.DayOf(t.now().In(t.loc))
}

func (t *Tracker) rollover() error {
	previous := t.state.Ledger.Today()
	if !t.state.Ledger.Rollover(t.today()) {
		return nil
	}
	t.log.Info("day rollover", "from", previous.String(), "to", t.state.Ledger.Today().String())
	return t.save()
}

func (t *Tracker) save() error {
	if err := t.store.Save(t.state.Snapshot()); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// mutate runs fn against the rolled-over state and saves afterwards. A failed
// save leaves the in-memory change in place.
func (t *Tracker) mutate(op string, fn func(*ledger.State) error, attrs ...any) error {
	if err := t.rollover(); err != nil {
		return err
	}
	if err := fn(t.state); err != nil {
		return err
	}
	t.log.Debug(op, attrs...)
	return t.save()
}

// day defaults a zero day to today.
func (t *Tracker) day(d model.Day) model.Day {
	if d.IsZero() {
		return t.state.Ledger.Today()
	}
	return d
}

func (t *Tracker) AddCategory(name string, max model.Allowance) (model.Category, error) {
	var c model.Category
	err := t.mutate("add category", func(s *ledger.State) error {
		var err error
		c, err = s.AddCategory(name, max)
		return err
	}, "category", name, "max_points", max.String())
	return c, err
}

func (t *Tracker) AddFood(name, category string, pointsPerServing decimal.Decimal) (model.Food, error) {
	var f model.Food
	err := t.mutate("add food", func(s *ledger.State) error {
		var err error
		f, err = s.Foods.Add(name, category, pointsPerServing)
		return err
	}, "food", name, "category", category)
	return f, err
}

// ReplaceCategoryFoods replaces the foods of one category with rows. Rows
// with a blank name are dropped.
func (t *Tracker) ReplaceCategoryFoods(category string, rows []ledger.FoodRow) error {
	valid := make([]ledger.FoodRow, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			continue
		}
		valid = append(valid, row)
	}
	return t.mutate("replace category foods", func(s *ledger.State) error {
		return s.Foods.ReplaceCategory(category, valid)
	}, "category", category, "rows", len(valid))
}

func (t *Tracker) RemoveFood(name string) error {
	return t.mutate("remove food", func(s *ledger.State) error {
		return s.Foods.Remove(name)
	}, "food", name)
}

// Record logs servings of a food for today.
func (t *Tracker) Record(foodName string, servings decimal.Decimal) (model.Event, error) {
	return t.RecordOn(foodName, servings, model.Day{})
}

// RecordOn logs servings of a food on day; the zero day means today.
func (t *Tracker) RecordOn(foodName string, servings decimal.Decimal, day model.Day) (model.Event, error) {
	var ev model.Event
	err := t.mutate("record", func(s *ledger.State) error {
		var err error
		ev, err = s.Ledger.Record(foodName, servings, t.day(day))
		return err
	}, "food", foodName, "servings", servings.String(), "day", day.String())
	return ev, err
}

func (t *Tracker) EditServings(day model.Day, index int, servings decimal.Decimal) (model.Event, error) {
	var ev model.Event
	err := t.mutate("edit servings", func(s *ledger.State) error {
		var err error
		ev, err = s.Ledger.EditServings(t.day(day), index, servings)
		return err
	}, "day", day.String(), "index", index, "servings", servings.String())
	return ev, err
}

func (t *Tracker) DeleteEvent(day model.Day, index int) (model.Event, error) {
	var ev model.Event
	err := t.mutate("delete event", func(s *ledger.State) error {
		var err error
		ev, err = s.Ledger.Delete(t.day(day), index)
		return err
	}, "day", day.String(), "index", index)
	return ev, err
}

func (t *Tracker) ReplaceDay(day model.Day, events []model.Event) error {
	return t.mutate("replace day", func(s *ledger.State) error {
		return s.Ledger.ReplaceDay(t.day(day), events)
	}, "day", day.String(), "events", len(events))
}

// Reconcile rewrites balances from today's events. It saves only when
// something was wrong.
func (t *Tracker) Reconcile() ([]ledger.Discrepancy, error) {
	if err := t.rollover(); err != nil {
		return nil, err
	}
	found := t.state.Reconcile()
	if len(found) == 0 {
		return found, nil
	}
	for _, d := range found {
		t.log.Warn("balance reconciled", "category", d.Category, "stored", d.Stored.String(), "expected", d.Expected.String())
	}
	return found, t.save()
}

// Import replaces the whole state with snap and rolls it over to today.
func (t *Tracker) Import(snap model.Snapshot) error {
	if len(snap.Categories) == 0 {
		return fmt.Errorf("import: %w: snapshot has no categories", ledger.ErrInvalidCategory)
	}
	state, err := ledger.Restore(snap)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	t.state = state
	t.log.Info("imported state", "categories", len(snap.Categories), "foods", len(snap.Foods), "days", len(snap.History))
	if t.state.Ledger.Rollover(t.today()) {
		t.log.Info("day rollover", "to", t.state.Ledger.Today().String())
	}
	return t.save()
}

func (t *Tracker) Categories() ([]model.Category, error) {
	if err := t.rollover(); err != nil {
		return nil, err
	}
	return t.state.Categories.All(), nil
}

// Foods lists the catalog, or one category of it when category is not empty.
func (t *Tracker) Foods(category string) ([]model.Food, error) {
	if err := t.rollover(); err != nil {
		return nil, err
	}
	if category = strings.TrimSpace(category); category != "" {
		if _, err := t.state.Categories.Get(category); err != nil {
			return nil, err
		}
		return t.state.Foods.InCategory(category), nil
	}
	return t.state.Foods.All(), nil
}

func (t *Tracker) Food(name string) (model.Food, error) {
	if err := t.rollover(); err != nil {
		return model.Food{}, err
	}
	return t.state.Foods.Lookup(name)
}

func (t *Tracker) Remaining() (map[string]model.Allowance, error) {
	if err := t.rollover(); err != nil {
		return nil, err
	}
	return t.state.Ledger.Remaining(), nil
}

// Snapshot returns the events of day; the zero day means today.
func (t *Tracker) Snapshot(day model.Day) ([]model.Event, error) {
	if err := t.rollover(); err != nil {
		return nil, err
	}
	return t.state.Ledger.Snapshot(t.day(day)), nil
}

func (t *Tracker) Days() ([]model.Day, error) {
	if err := t.rollover(); err != nil {
		return nil, err
	}
	return t.state.Ledger.Days(), nil
}

func (t *Tracker) Today() (model.Day, error) {
	if err := t.rollover(); err != nil {
		return model.Day{}, err
	}
	return t.state.Ledger.Today(), nil
}

func (t *Tracker) Verify() ([]ledger.Discrepancy, error) {
	if err := t.rollover(); err != nil {
		return nil, err
	}
	return t.state.Verify(), nil
}

// Export returns the full state, as saved.
func (t *Tracker) Export() (model.Snapshot, error) {
	if err := t.rollover(); err != nil {
		return model.Snapshot{}, err
	}
	return t.state.Snapshot(), nil
}
