package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	okStyle = lipgloss.NewStyle().
		Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	overStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	// LeftAlign lists columns rendered left-aligned; the first column always is.
	LeftAlign []int
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	left := map[int]bool{0: true}
	for _, i := range t.LeftAlign {
		left[i] = true
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	border := func(l, mid, r string) {
		b.WriteString(dimStyle.Render(l))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(r))
		b.WriteString("\n")
	}

	border("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(pad(h, widths[i], true)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		border("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(pad(cell, widths[i], left[i])))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}
	border("╰", "┴", "╯")

	return b.String()
}

// pad pads by display width; fmt's %*s counts bytes, which breaks on "∞".
func pad(s string, width int, left bool) string {
	fill := strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
	if left {
		return " " + s + fill + " "
	}
	return " " + fill + s + " "
}

// RenderBudgetBar renders how much of a category budget is left.
func RenderBudgetBar(remaining, budget model.Allowance, width int) string {
	if budget.Unlimited || remaining.Unlimited {
		return mutedStyle.Render(Infinity)
	}
	if !budget.Points.IsPositive() {
		return ""
	}

	ratio := remaining.Points.Div(budget.Points)
	if ratio.IsNegative() {
		ratio = decimal.Zero
	}
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		ratio = decimal.NewFromInt(1)
	}
	filled := int(ratio.Mul(decimal.NewFromInt(int64(width))).IntPart())

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	style := okStyle
	switch {
	case remaining.Points.IsNegative():
		style = overStyle
	case ratio.LessThan(decimal.RequireFromString("0.25")):
		style = warnStyle
	}
	return fmt.Sprintf("[%s]", style.Render(bar))
}
