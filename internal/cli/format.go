// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"github.com/shopspring/decimal"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

// Infinity is how an unlimited allowance is displayed.
const Infinity = "∞"

// FormatPoints rounds to two places and drops trailing zeros.
// e.g., 3 -> "3", 2.50 -> "2.5", 1.126 -> "1.13"
func FormatPoints(d decimal.Decimal) string {
	return d.Round(2).String()
}

// FormatAllowance formats a budget or balance, showing Infinity when
// unlimited.
func FormatAllowance(a model.Allowance) string {
	if a.Unlimited {
		return Infinity
	}
	return FormatPoints(a.Points)
}
