package service_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DorNorimberg/Food-Tracker/internal/ledger"
	"github.com/DorNorimberg/Food-Tracker/internal/model"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
	"github.com/DorNorimberg/Food-Tracker/internal/store"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) advance(days int) { c.now = c.now.AddDate(0, 0, days) }

func newClock() *clock {
	return &clock{now: time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)}
}

func newSQLiteStore(t *testing.T) (*store.SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "foodtracker.db")
	s, err := store.OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func openTracker(t *testing.T, s store.Store, c *clock) *service.Tracker {
	t.Helper()
	tr, err := service.Open(s, service.WithClock(c.Now), service.WithLocation(time.UTC))
	require.NoError(t, err)
	return tr
}

func remaining(t *testing.T, tr *service.Tracker, category string) decimal.Decimal {
	t.Helper()
	balances, err := tr.Remaining()
	require.NoError(t, err)
	a, ok := balances[category]
	require.True(t, ok, "category %s missing", category)
	require.False(t, a.Unlimited, "category %s is unlimited", category)
	return a.Points
}

func TestOpenSeedsDefaultCategories(t *testing.T) {
	s, _ := newSQLiteStore(t)
	tr := openTracker(t, s, newClock())

	categories, err := tr.Categories()
	require.NoError(t, err)
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"fats", "carbs", "proteins", "vegetables", "dairy", "fruits"}, names)

	today, err := tr.Today()
	require.NoError(t, err)
	assert.Equal(t, model.Day{Year: 2026, Month: 2, Dom: 20}, today)

	snap, ok, err := s.Load()
	require.NoError(t, err)
	require.True(t, ok, "seeded state should be saved")
	assert.Len(t, snap.Categories, 6)
	assert.Equal(t, today, snap.LastReset)
}

func TestCheeseScenarioPersists(t *testing.T) {
	s, _ := newSQLiteStore(t)
	c := newClock()
	tr := openTracker(t, s, c)

	_, err := tr.AddCategory("Fat", model.LimitInt(11))
	require.NoError(t, err)
	_, err = tr.AddFood("Cheese", "Fat", d("3"))
	require.NoError(t, err)

	ev, err := tr.Record("Cheese", d("2"))
	require.NoError(t, err)
	assert.True(t, ev.Points.Equal(d("6")))
	assert.True(t, remaining(t, tr, "Fat").Equal(d("5")))

	_, err = tr.EditServings(model.Day{}, 0, d("1"))
	require.NoError(t, err)
	assert.True(t, remaining(t, tr, "Fat").Equal(d("8")))

	reopened := openTracker(t, s, c)
	assert.True(t, remaining(t, reopened, "Fat").Equal(d("8")))

	_, err = reopened.DeleteEvent(model.Day{}, 0)
	require.NoError(t, err)
	assert.True(t, remaining(t, reopened, "Fat").Equal(d("11")))

	days, err := reopened.Days()
	require.NoError(t, err)
	assert.Empty(t, days)
}

func TestUnlimitedCategoryThroughTracker(t *testing.T) {
	s, _ := newSQLiteStore(t)
	tr := openTracker(t, s, newClock())

	_, err := tr.AddCategory("Veg", model.Unlimited())
	require.NoError(t, err)
	_, err = tr.AddFood("Lettuce", "Veg", d("0"))
	require.NoError(t, err)
	_, err = tr.Record("Lettuce", d("5"))
	require.NoError(t, err)

	balances, err := tr.Remaining()
	require.NoError(t, err)
	assert.True(t, balances["Veg"].Unlimited)

	events, err := tr.Snapshot(model.Day{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Servings.Equal(d("5")))
}

func TestRolloverOnNextDayKeepsHistory(t *testing.T) {
	s, _ := newSQLiteStore(t)
	c := newClock()
	tr := openTracker(t, s, c)

	_, err := tr.AddCategory("Fat", model.LimitInt(11))
	require.NoError(t, err)
	_, err = tr.AddFood("Cheese", "Fat", d("3"))
	require.NoError(t, err)
	_, err = tr.Record("Cheese", d("2"))
	require.NoError(t, err)
	yesterday, err := tr.Today()
	require.NoError(t, err)

	c.advance(1)
	assert.True(t, remaining(t, tr, "Fat").Equal(d("11")))

	past, err := tr.Snapshot(yesterday)
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, "Cheese", past[0].FoodName)

	today, err := tr.Today()
	require.NoError(t, err)
	assert.Equal(t, yesterday.AddDays(1), today)

	snap, _, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, today, snap.LastReset, "rollover should be persisted")
	assert.True(t, snap.Remaining["Fat"].Equal(model.LimitInt(11)))
}

func TestOpenRollsOverStaleState(t *testing.T) {
	s, _ := newSQLiteStore(t)
	c := newClock()
	tr := openTracker(t, s, c)
	_, err := tr.AddFood("butter", "fats", d("4"))
	require.NoError(t, err)
	_, err = tr.Record("butter", d("2"))
	require.NoError(t, err)
	assert.True(t, remaining(t, tr, "fats").Equal(d("3")))

	c.advance(3)
	reopened := openTracker(t, s, c)
	assert.True(t, remaining(t, reopened, "fats").Equal(d("11")))
}

func TestClockGoingBackwardsDoesNotReset(t *testing.T) {
	s, _ := newSQLiteStore(t)
	c := newClock()
	tr := openTracker(t, s, c)
	_, err := tr.AddFood("butter", "fats", d("4"))
	require.NoError(t, err)
	_, err = tr.Record("butter", d("1"))
	require.NoError(t, err)

	c.advance(-1)
	assert.True(t, remaining(t, tr, "fats").Equal(d("7")))
	_, err = tr.Record("butter", d("1"))
	require.NoError(t, err)
	assert.True(t, remaining(t, tr, "fats").Equal(d("3")))
}

func TestRecordOnPastDayAndFutureDay(t *testing.T) {
	s, _ := newSQLiteStore(t)
	tr := openTracker(t, s, newClock())
	today, err := tr.Today()
	require.NoError(t, err)
	_, err = tr.AddFood("butter", "fats", d("4"))
	require.NoError(t, err)

	ev, err := tr.RecordOn("butter", d("1"), today.AddDays(-2))
	require.NoError(t, err)
	assert.Equal(t, today.AddDays(-2), ev.Day)
	assert.True(t, remaining(t, tr, "fats").Equal(d("11")))

	_, err = tr.RecordOn("butter", d("1"), today.AddDays(1))
	assert.ErrorIs(t, err, ledger.ErrInvalidDay)
}

func TestReplaceCategoryFoodsDropsBlankRows(t *testing.T) {
	s, _ := newSQLiteStore(t)
	tr := openTracker(t, s, newClock())

	err := tr.ReplaceCategoryFoods("fruits", []ledger.FoodRow{
		{Name: "apple", PointsPerServing: d("1")},
		{Name: "  ", PointsPerServing: d("9")},
		{Name: "banana", PointsPerServing: d("1.5")},
	})
	require.NoError(t, err)

	foods, err := tr.Foods("fruits")
	require.NoError(t, err)
	require.Len(t, foods, 2)
	assert.Equal(t, "banana", foods[1].Name)

	_, err = tr.Foods("sweets")
	assert.ErrorIs(t, err, ledger.ErrCategoryNotFound)

	require.NoError(t, tr.RemoveFood("apple"))
	_, err = tr.Food("apple")
	assert.ErrorIs(t, err, ledger.ErrFoodNotFound)
}

func TestReplaceDayThroughTracker(t *testing.T) {
	s, _ := newSQLiteStore(t)
	tr := openTracker(t, s, newClock())
	_, err := tr.AddFood("butter", "fats", d("4"))
	require.NoError(t, err)
	_, err = tr.Record("butter", d("2"))
	require.NoError(t, err)

	err = tr.ReplaceDay(model.Day{}, []model.Event{
		{FoodName: "butter", Category: "fats", Servings: d("0.5"), Points: d("2")},
		{FoodName: "rice", Category: "carbs", Servings: d("1"), Points: d("6")},
	})
	require.NoError(t, err)
	assert.True(t, remaining(t, tr, "fats").Equal(d("9")))
	assert.True(t, remaining(t, tr, "carbs").Equal(d("18")))

	found, err := tr.Verify()
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestImportReplacesState(t *testing.T) {
	s, _ := newSQLiteStore(t)
	c := newClock()
	tr := openTracker(t, s, c)
	today, err := tr.Today()
	require.NoError(t, err)

	err = tr.Import(model.Snapshot{
		Categories: []model.Category{{Name: "Fat", MaxPoints: model.LimitInt(11)}},
		Foods:      []model.Food{{Name: "Cheese", Category: "Fat", PointsPerServing: d("3")}},
		History: map[model.Day][]model.Event{
			today.AddDays(-1): {{FoodName: "Cheese", Category: "Fat", Servings: d("1"), Points: d("3")}},
		},
		Remaining: map[string]model.Allowance{"Fat": model.LimitInt(8)},
		LastReset: today.AddDays(-1),
	})
	require.NoError(t, err)

	categories, err := tr.Categories()
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.True(t, remaining(t, tr, "Fat").Equal(d("11")))

	reopened := openTracker(t, s, c)
	days, err := reopened.Days()
	require.NoError(t, err)
	assert.Equal(t, []model.Day{today.AddDays(-1)}, days)
}

func TestImportRejectsSnapshotWithoutCategories(t *testing.T) {
	s, _ := newSQLiteStore(t)
	c := newClock()
	tr := openTracker(t, s, c)
	_, err := tr.AddFood("butter", "fats", d("4"))
	require.NoError(t, err)

	err = tr.Import(model.Snapshot{})
	assert.ErrorIs(t, err, ledger.ErrInvalidCategory)

	categories, err := tr.Categories()
	require.NoError(t, err)
	assert.Len(t, categories, len(ledger.DefaultCategories()))

	reopened := openTracker(t, s, c)
	food, err := reopened.Food("butter")
	require.NoError(t, err)
	assert.Equal(t, "fats", food.Category)
}

type failingStore struct {
	snap  model.Snapshot
	fail  bool
	saves int
}

var errDiskFull = errors.New("disk full")

func (f *failingStore) Load() (model.Snapshot, bool, error) {
	return f.snap, len(f.snap.Categories) > 0, nil
}

func (f *failingStore) Save(snap model.Snapshot) error {
	if f.fail {
		return errDiskFull
	}
	f.saves++
	f.snap = snap
	return nil
}

func TestSaveFailureKeepsInMemoryChange(t *testing.T) {
	fs := &failingStore{}
	tr := openTracker(t, fs, newClock())
	assert.Equal(t, 1, fs.saves)

	_, err := tr.AddFood("butter", "fats", d("4"))
	require.NoError(t, err)
	assert.Equal(t, 2, fs.saves)

	fs.fail = true
	_, err = tr.Record("butter", d("1"))
	require.ErrorIs(t, err, errDiskFull)
	assert.True(t, remaining(t, tr, "fats").Equal(d("7")))
	assert.Empty(t, fs.snap.History)
}

func TestErrorsDoNotSave(t *testing.T) {
	fs := &failingStore{}
	tr := openTracker(t, fs, newClock())
	saves := fs.saves

	_, err := tr.Record("pizza", d("1"))
	assert.ErrorIs(t, err, ledger.ErrNotFound)
	_, err = tr.AddCategory("fats", model.LimitInt(1))
	assert.ErrorIs(t, err, ledger.ErrDuplicateCategory)
	assert.Equal(t, saves, fs.saves)
}

func TestJSONFileStoreTracker(t *testing.T) {
	s := store.JSONFile{Path: filepath.Join(t.TempDir(), "state.json")}
	c := newClock()
	tr := openTracker(t, s, c)
	_, err := tr.AddFood("yogurt", "dairy", d("2.5"))
	require.NoError(t, err)
	_, err = tr.Record("yogurt", d("2"))
	require.NoError(t, err)

	reopened := openTracker(t, s, c)
	assert.True(t, remaining(t, reopened, "dairy").Equal(d("11")))
}
