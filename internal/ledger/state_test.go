package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DorNorimberg/Food-Tracker/internal/ledger"
	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

func TestRolloverResetsOncePerDay(t *testing.T) {
	s := newState(t)
	_, err := s.Ledger.Record("Cheese", d("3"), today)
	require.NoError(t, err)
	assert.True(t, remaining(t, s, "Fat").Equal(d("2")))

	assert.False(t, s.Ledger.Rollover(today))
	assert.True(t, remaining(t, s, "Fat").Equal(d("2")))

	tomorrow := today.AddDays(1)
	assert.True(t, s.Ledger.Rollover(tomorrow))
	assert.Equal(t, tomorrow, s.Ledger.Today())
	assert.True(t, remaining(t, s, "Fat").Equal(d("11")))
	assert.True(t, remaining(t, s, "Carbs").Equal(d("24")))
	assert.True(t, s.Ledger.Remaining()["Veg"].Unlimited)

	yesterday := s.Ledger.Snapshot(today)
	require.Len(t, yesterday, 1)
	assert.Equal(t, "Cheese", yesterday[0].FoodName)

	_, err = s.Ledger.Record("Cheese", d("1"), tomorrow)
	require.NoError(t, err)
	assert.False(t, s.Ledger.Rollover(tomorrow))
	assert.True(t, remaining(t, s, "Fat").Equal(d("8")))
	requireInvariant(t, s)
}

func TestRolloverIgnoresEarlierDay(t *testing.T) {
	s := newState(t)
	_, err := s.Ledger.Record("Cheese", d("1"), today)
	require.NoError(t, err)

	assert.False(t, s.Ledger.Rollover(today.AddDays(-1)))
	assert.Equal(t, today, s.Ledger.Today())
	assert.True(t, remaining(t, s, "Fat").Equal(d("8")))
}

func TestRegistryAndCatalogErrors(t *testing.T) {
	s := newState(t)

	_, err := s.AddCategory("Fat", model.LimitInt(3))
	assert.ErrorIs(t, err, ledger.ErrDuplicateCategory)
	_, err = s.AddCategory(" ", model.LimitInt(3))
	assert.ErrorIs(t, err, ledger.ErrInvalidCategory)
	_, err = s.AddCategory("Sweets", model.LimitInt(-1))
	assert.ErrorIs(t, err, ledger.ErrInvalidCategory)
	_, err = s.Categories.Get("Sweets")
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	_, err = s.Foods.Add("Cheese", "Carbs", d("1"))
	assert.ErrorIs(t, err, ledger.ErrDuplicateFood)
	_, err = s.Foods.Add("", "Carbs", d("1"))
	assert.ErrorIs(t, err, ledger.ErrInvalidFood)
	_, err = s.Foods.Add("Candy", "Sweets", d("1"))
	assert.ErrorIs(t, err, ledger.ErrCategoryNotFound)
	_, err = s.Foods.Lookup("Candy")
	assert.ErrorIs(t, err, ledger.ErrFoodNotFound)
}

func TestAddCategoryOpensBalance(t *testing.T) {
	s := newState(t)
	c, err := s.AddCategory("Sweets", model.LimitInt(4))
	require.NoError(t, err)
	assert.Equal(t, "Sweets", c.Name)

	_, err = s.Foods.Add("Candy", "Sweets", d("1.5"))
	require.NoError(t, err)
	_, err = s.Ledger.Record("Candy", d("2"), today)
	require.NoError(t, err)

	assert.True(t, remaining(t, s, "Sweets").Equal(d("1")))
	names := make([]string, 0)
	for _, c := range s.Categories.All() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Fat", "Veg", "Carbs", "Sweets"}, names)
}

func TestReplaceCategory(t *testing.T) {
	s := newState(t)
	_, err := s.Foods.Add("Butter", "Fat", d("4"))
	require.NoError(t, err)

	err = s.Foods.ReplaceCategory("Fat", []ledger.FoodRow{
		{Name: "Olive oil", PointsPerServing: d("1")},
		{Name: "Cheese", PointsPerServing: d("2")},
	})
	require.NoError(t, err)

	fat := s.Foods.InCategory("Fat")
	require.Len(t, fat, 2)
	assert.Equal(t, "Olive oil", fat[0].Name)
	assert.True(t, fat[1].PointsPerServing.Equal(d("2")))
	_, err = s.Foods.Lookup("Butter")
	assert.ErrorIs(t, err, ledger.ErrFoodNotFound)
	_, err = s.Foods.Lookup("Bread")
	assert.NoError(t, err)

	err = s.Foods.ReplaceCategory("Fat", []ledger.FoodRow{{Name: "Bread", PointsPerServing: d("1")}})
	assert.ErrorIs(t, err, ledger.ErrDuplicateFood)
	assert.Len(t, s.Foods.InCategory("Fat"), 2)

	require.NoError(t, s.Foods.ReplaceCategory("Fat", nil))
	assert.Empty(t, s.Foods.InCategory("Fat"))
	assert.Len(t, s.Foods.All(), 2)
}

func TestRemoveFood(t *testing.T) {
	s := newState(t)
	require.NoError(t, s.Foods.Remove("Cheese"))
	assert.ErrorIs(t, s.Foods.Remove("Cheese"), ledger.ErrFoodNotFound)
	_, err := s.Foods.Add("Cheese", "Carbs", d("1"))
	assert.NoError(t, err)
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := newState(t)
	_, err := s.Ledger.Record("Cheese", d("2"), today)
	require.NoError(t, err)
	_, err = s.Ledger.Record("Lettuce", d("1"), today.AddDays(-2))
	require.NoError(t, err)

	restored, err := ledger.Restore(s.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, today, restored.Ledger.Today())
	assert.Equal(t, s.Ledger.Days(), restored.Ledger.Days())
	assert.True(t, remaining(t, restored, "Fat").Equal(d("5")))
	assert.Equal(t, s.Foods.All(), restored.Foods.All())
	requireInvariant(t, restored)
}

func TestRestoreRejectsUnknownCategory(t *testing.T) {
	snap := model.Snapshot{
		Categories: []model.Category{{Name: "Fat", MaxPoints: model.LimitInt(11)}},
		History: map[model.Day][]model.Event{
			today: {{FoodName: "Soup", Category: "Soups", Servings: d("1"), Points: d("1")}},
		},
		LastReset: today,
	}
	_, err := ledger.Restore(snap)
	assert.ErrorIs(t, err, ledger.ErrCategoryNotFound)
}

func TestRestoreTrimsEventNames(t *testing.T) {
	snap := model.Snapshot{
		Categories: []model.Category{{Name: "Fat", MaxPoints: model.LimitInt(11)}},
		Foods:      []model.Food{{Name: "Cheese", Category: "Fat", PointsPerServing: d("3")}},
		History: map[model.Day][]model.Event{
			today: {{FoodName: " Cheese ", Category: " Fat", Servings: d("1"), Points: d("3")}},
		},
		LastReset: today,
	}
	s, err := ledger.Restore(snap)
	require.NoError(t, err)
	assert.True(t, s.Categories.Has(" Fat "))

	events := s.Ledger.Snapshot(today)
	require.Len(t, events, 1)
	assert.Equal(t, "Fat", events[0].Category)
	assert.Equal(t, "Cheese", events[0].FoodName)
	assert.True(t, remaining(t, s, "Fat").Equal(d("8")))

	_, err = s.Ledger.Delete(today, 0)
	require.NoError(t, err)
	assert.True(t, remaining(t, s, "Fat").Equal(d("11")))
	requireInvariant(t, s)
}

func TestVerifyAndReconcile(t *testing.T) {
	snap := model.Snapshot{
		Categories: []model.Category{
			{Name: "Fat", MaxPoints: model.LimitInt(11)},
			{Name: "Veg", MaxPoints: model.Unlimited()},
		},
		History: map[model.Day][]model.Event{
			today: {{FoodName: "Cheese", Category: "Fat", Servings: d("1"), Points: d("3")}},
		},
		Remaining: map[string]model.Allowance{"Fat": model.LimitInt(2), "Veg": model.LimitInt(7)},
		LastReset: today,
	}
	s, err := ledger.Restore(snap)
	require.NoError(t, err)
	assert.True(t, s.Ledger.Remaining()["Veg"].Unlimited)

	found := s.Verify()
	require.Len(t, found, 1)
	assert.Equal(t, "Fat", found[0].Category)
	assert.True(t, found[0].Expected.Equal(d("8")))

	fixed := s.Reconcile()
	assert.Len(t, fixed, 1)
	assert.Empty(t, s.Verify())
	assert.True(t, remaining(t, s, "Fat").Equal(d("8")))
}

func TestDefaultCategories(t *testing.T) {
	s, err := ledger.New(ledger.DefaultCategories(), today)
	require.NoError(t, err)
	balances := s.Ledger.Remaining()
	assert.Len(t, balances, 6)
	assert.True(t, balances["vegetables"].Unlimited)
	assert.True(t, balances["fats"].Points.Equal(d("11")))
	assert.True(t, balances["fruits"].Points.Equal(d("5")))
}
