package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// UnlimitedLabel is the persisted spelling of an unlimited allowance.
const UnlimitedLabel = "unlimited"

// Allowance is a point amount that may be unlimited. It is used both for a
// category's ceiling and for its remaining balance.
type Allowance struct {
	Points    decimal.Decimal
	Unlimited bool
}

func Unlimited() Allowance {
	return Allowance{Unlimited: true}
}

func Limit(points decimal.Decimal) Allowance {
	return Allowance{Points: points}
}

func LimitInt(points int64) Allowance {
	return Allowance{Points: decimal.NewFromInt(points)}
}

func (a Allowance) Equal(b Allowance) bool {
	if a.Unlimited || b.Unlimited {
		return a.Unlimited == b.Unlimited
	}
	return a.Points.Equal(b.Points)
}

// String returns the persisted form: a decimal or "unlimited".
func (a Allowance) String() string {
	if a.Unlimited {
		return UnlimitedLabel
	}
	return a.Points.String()
}

func (a Allowance) MarshalJSON() ([]byte, error) {
	if a.Unlimited {
		return json.Marshal(UnlimitedLabel)
	}
	return a.Points.MarshalJSON()
}

func (a *Allowance) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err == nil && strings.EqualFold(label, UnlimitedLabel) {
		*a = Unlimited()
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid points value %s", data)
	}
	*a = Limit(d)
	return nil
}

func ParseAllowance(value string) (Allowance, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, UnlimitedLabel) {
		return Unlimited(), nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Allowance{}, fmt.Errorf("invalid points value %q", value)
	}
	return Limit(d), nil
}

type Category struct {
	Name      string
	MaxPoints Allowance
}

type Food struct {
	Name             string
	Category         string
	PointsPerServing decimal.Decimal
}

// Event is one recorded consumption. Points is the cost at the time of
// recording and does not follow later catalog changes.
type Event struct {
	Day      Day
	FoodName string
	Category string
	Servings decimal.Decimal
	Points   decimal.Decimal
}

// Snapshot is the full persisted state of a tracker.
type Snapshot struct {
	Categories []Category
	Foods      []Food
	History    map[Day][]Event
	Remaining  map[string]Allowance
	LastReset  Day
}

const dayLayout = "2006-01-02"

// Day is a calendar date without time of day. The zero value is the zero day
// and sorts before every real date.
type Day struct {
	Year  int
	Month time.Month
	Dom   int
}

func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Dom: d}
}

func ParseDay(value string) (Day, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(value))
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return DayOf(t), nil
}

func (d Day) IsZero() bool {
	return d == Day{}
}

func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Dom, 0, 0, 0, 0, loc)
}

func (d Day) AddDays(n int) Day {
	return DayOf(d.Time(time.UTC).AddDate(0, 0, n))
}

func (d Day) Compare(o Day) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Dom, o.Dom)
	}
}

func (d Day) Before(o Day) bool { return d.Compare(o) < 0 }
func (d Day) After(o Day) bool  { return d.Compare(o) > 0 }

// String formats the day as ISO 8601 (YYYY-MM-DD).
func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time(time.UTC).Format(dayLayout)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
