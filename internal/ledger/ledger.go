package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

// Ledger keeps the per-day consumption history and the remaining balance of
// every finite category for the current day. The current day is the last day
// balances were reset for. Events on any other day are kept for history but
// never move a balance.
type Ledger struct {
	categories *Registry
	foods      *Catalog
	history    map[model.Day][]model.Event
	remaining  map[string]decimal.Decimal
	lastReset  model.Day
}

func NewLedger(categories *Registry, foods *Catalog, today model.Day) *Ledger {
	l := &Ledger{
		categories: categories,
		foods:      foods,
		history:    map[model.Day][]model.Event{},
		lastReset:  today,
	}
	l.resetBalances()
	return l
}

// Today is the day the balances currently describe.
func (l *Ledger) Today() model.Day {
	return l.lastReset
}

func (l *Ledger) Record(foodName string, servings decimal.Decimal, day model.Day) (model.Event, error) {
	if !servings.IsPositive() {
		return model.Event{}, fmt.Errorf("%w: servings must be > 0", ErrInvalidFood)
	}
	if err := l.checkDay(day); err != nil {
		return model.Event{}, err
	}
	food, err := l.foods.Lookup(foodName)
	if err != nil {
		return model.Event{}, err
	}
	ev := model.Event{
		Day:      day,
		FoodName: food.Name,
		Category: food.Category,
		Servings: servings,
		Points:   food.PointsPerServing.Mul(servings),
	}
	l.history[day] = append(l.history[day], ev)
	l.adjust(ev.Category, day, ev.Points.Neg())
	return ev, nil
}

// EditServings rescales an event at the rate implied by its stored points,
// so later catalog changes do not leak into past records.
func (l *Ledger) EditServings(day model.Day, index int, servings decimal.Decimal) (model.Event, error) {
	events := l.history[day]
	if index < 0 || index >= len(events) {
		return model.Event{}, fmt.Errorf("%w: %s #%d", ErrEventNotFound, day, index)
	}
	if !servings.IsPositive() {
		return model.Event{}, fmt.Errorf("%w: servings must be > 0", ErrInvalidFood)
	}
	ev := &events[index]
	if !ev.Servings.IsPositive() {
		return model.Event{}, fmt.Errorf("%w: stored servings for %s #%d are not positive", ErrInvalidFood, day, index)
	}
	points := ev.Points.Mul(servings).Div(ev.Servings)
	l.adjust(ev.Category, day, ev.Points.Sub(points))
	ev.Servings = servings
	ev.Points = points
	return *ev, nil
}

func (l *Ledger) Delete(day model.Day, index int) (model.Event, error) {
	events := l.history[day]
	if index < 0 || index >= len(events) {
		return model.Event{}, fmt.Errorf("%w: %s #%d", ErrEventNotFound, day, index)
	}
	ev := events[index]
	l.adjust(ev.Category, day, ev.Points)
	events = slices.Delete(events, index, index+1)
	if len(events) == 0 {
		delete(l.history, day)
	} else {
		l.history[day] = events
	}
	return ev, nil
}

// ReplaceDay swaps the whole event list of a day, as a table editor would.
// The new events are validated before anything changes.
func (l *Ledger) ReplaceDay(day model.Day, events []model.Event) error {
	if err := l.checkDay(day); err != nil {
		return err
	}
	next := make([]model.Event, 0, len(events))
	for i, ev := range events {
		ev.Day = day
		ev.FoodName = strings.TrimSpace(ev.FoodName)
		ev.Category = strings.TrimSpace(ev.Category)
		if ev.FoodName == "" {
			return fmt.Errorf("%w: row %d: food name is required", ErrInvalidFood, i)
		}
		if _, err := l.categories.Get(ev.Category); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if !ev.Servings.IsPositive() {
			return fmt.Errorf("%w: row %d: servings must be > 0", ErrInvalidFood, i)
		}
		if ev.Points.IsNegative() {
			return fmt.Errorf("%w: row %d: points must be >= 0", ErrInvalidFood, i)
		}
		next = append(next, ev)
	}

	delta := map[string]decimal.Decimal{}
	for _, ev := range l.history[day] {
		delta[ev.Category] = delta[ev.Category].Add(ev.Points)
	}
	for _, ev := range next {
		delta[ev.Category] = delta[ev.Category].Sub(ev.Points)
	}
	for category, d := range delta {
		l.adjust(category, day, d)
	}

	if len(next) == 0 {
		delete(l.history, day)
		return nil
	}
	l.history[day] = next
	return nil
}

// Snapshot returns a copy of the events recorded on day, empty but never nil
// when nothing was recorded.
func (l *Ledger) Snapshot(day model.Day) []model.Event {
	return append([]model.Event{}, l.history[day]...)
}

// Days lists every day with at least one event, oldest first.
func (l *Ledger) Days() []model.Day {
	days := make([]model.Day, 0, len(l.history))
	for d := range l.history {
		days = append(days, d)
	}
	slices.SortFunc(days, model.Day.Compare)
	return days
}

// Remaining reports the balance of every category; unlimited categories
// always report Unlimited.
func (l *Ledger) Remaining() map[string]model.Allowance {
	out := make(map[string]model.Allowance, len(l.remaining))
	for _, c := range l.categories.All() {
		if c.MaxPoints.Unlimited {
			out[c.Name] = model.Unlimited()
			continue
		}
		out[c.Name] = model.Limit(l.remaining[c.Name])
	}
	return out
}

func (l *Ledger) adjust(category string, day model.Day, delta decimal.Decimal) {
	if day != l.lastReset {
		return
	}
	c, err := l.categories.Get(category)
	if err != nil || c.MaxPoints.Unlimited {
		return
	}
	l.remaining[c.Name] = l.remaining[c.Name].Add(delta)
}

// checkDay rejects days after the current one; rollover must open them first.
func (l *Ledger) checkDay(day model.Day) error {
	if day.IsZero() {
		return fmt.Errorf("%w: day is required", ErrInvalidDay)
	}
	if day.After(l.lastReset) {
		return fmt.Errorf("%w: %s is after today (%s)", ErrInvalidDay, day, l.lastReset)
	}
	return nil
}

func (l *Ledger) spentToday(category string) decimal.Decimal {
	total := decimal.Zero
	for _, ev := range l.history[l.lastReset] {
		if ev.Category == category {
			total = total.Add(ev.Points)
		}
	}
	return total
}
