package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

// Rollover opens today when it is later than the last reset: every balance
// goes back to its category ceiling less whatever is already booked on the
// new day (normally nothing). History is left untouched. It reports
// whether a reset happened and is a no-op for the same or an earlier day.
func (l *Ledger) Rollover(today model.Day) bool {
	if !today.After(l.lastReset) {
		return false
	}
	l.lastReset = today
	l.resetBalances()
	return true
}

func (l *Ledger) resetBalances() {
	l.remaining = map[string]decimal.Decimal{}
	for _, c := range l.categories.All() {
		if c.MaxPoints.Unlimited {
			continue
		}
		l.remaining[c.Name] = c.MaxPoints.Points.Sub(l.spentToday(c.Name))
	}
}
