package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

func TestFormatPoints(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"3", "3"},
		{"2.50", "2.5"},
		{"1.126", "1.13"},
		{"-4", "-4"},
		{"0.001", "0"},
		{"10.00", "10"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatPoints(decimal.RequireFromString(tt.in)), "FormatPoints(%s)", tt.in)
	}
}

func TestFormatAllowance(t *testing.T) {
	assert.Equal(t, Infinity, FormatAllowance(model.Unlimited()))
	assert.Equal(t, "11", FormatAllowance(model.LimitInt(11)))
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Remaining",
		Headers: []string{"Category", "Points"},
		Rows: [][]string{
			{"fats", "5"},
			{"vegetables", Infinity},
		},
	})
	for _, want := range []string{"Remaining", "Category", "vegetables", "∞", "╭", "╯"} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 7, strings.Count(out, "\n"), out)
	assert.Empty(t, RenderTable(Table{}))
}

func TestPadUsesDisplayWidth(t *testing.T) {
	assert.Equal(t, "   ∞ ", pad(Infinity, 3, false))
	assert.Equal(t, " ab  ", pad("ab", 3, true))
}

func TestRenderBudgetBar(t *testing.T) {
	assert.Contains(t, RenderBudgetBar(model.Unlimited(), model.Unlimited(), 10), Infinity)

	half := RenderBudgetBar(model.LimitInt(5), model.LimitInt(10), 10)
	assert.Equal(t, 5, strings.Count(half, "█"), half)
	assert.Equal(t, 5, strings.Count(half, "░"), half)

	over := RenderBudgetBar(model.LimitInt(-3), model.LimitInt(10), 4)
	assert.Equal(t, 4, strings.Count(over, "░"), over)
}
