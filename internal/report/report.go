// Package report turns per-day consumption snapshots into spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

const (
	historySheet   = "History"
	remainingSheet = "Remaining"
)

var historyHeader = []string{"Date", "Food", "Category", "Servings", "Points"}

// Reader is the read side of a tracker session.
type Reader interface {
	Days() ([]model.Day, error)
	Snapshot(day model.Day) ([]model.Event, error)
}

type DayReport struct {
	Day    model.Day
	Events []model.Event
	Totals map[string]decimal.Decimal
	Total  decimal.Decimal
}

// Build collects every day with events between from and to, inclusive. A
// zero bound leaves that side open.
func Build(r Reader, from, to model.Day) ([]DayReport, error) {
	days, err := r.Days()
	if err != nil {
		return nil, fmt.Errorf("list days: %w", err)
	}
	out := make([]DayReport, 0, len(days))
	for _, day := range days {
		if !from.IsZero() && day.Before(from) {
			continue
		}
		if !to.IsZero() && day.After(to) {
			continue
		}
		events, err := r.Snapshot(day)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", day, err)
		}
		rep := DayReport{Day: day, Events: events, Totals: map[string]decimal.Decimal{}, Total: decimal.Zero}
		for _, ev := range events {
			rep.Totals[ev.Category] = rep.Totals[ev.Category].Add(ev.Points)
			rep.Total = rep.Total.Add(ev.Points)
		}
		out = append(out, rep)
	}
	return out, nil
}

// WriteXLSX writes a workbook with one History row per event and a
// Remaining sheet with the current balances.
func WriteXLSX(w io.Writer, rows []DayReport, remaining map[string]model.Allowance) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for i, h := range historyHeader {
		if err := setCell(f, historySheet, i+1, 1, h); err != nil {
			return err
		}
	}
	row := 2
	for _, rep := range rows {
		for _, ev := range rep.Events {
			values := []any{
				rep.Day.String(),
				ev.FoodName,
				ev.Category,
				ev.Servings.InexactFloat64(),
				ev.Points.InexactFloat64(),
			}
			for col, v := range values {
				if err := setCell(f, historySheet, col+1, row, v); err != nil {
					return err
				}
			}
			row++
		}
	}
	_ = f.SetColWidth(historySheet, "A", "A", 12)
	_ = f.SetColWidth(historySheet, "B", "B", 24)
	_ = f.SetColWidth(historySheet, "C", "C", 16)
	_ = f.SetColWidth(historySheet, "D", "E", 10)

	if _, err := f.NewSheet(remainingSheet); err != nil {
		return fmt.Errorf("create %s sheet: %w", remainingSheet, err)
	}
	if err := setCell(f, remainingSheet, 1, 1, "Category"); err != nil {
		return err
	}
	if err := setCell(f, remainingSheet, 2, 1, "Remaining"); err != nil {
		return err
	}
	names := make([]string, 0, len(remaining))
	for name := range remaining {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		var v any = remaining[name].Points.InexactFloat64()
		if remaining[name].Unlimited {
			v = model.UnlimitedLabel
		}
		if err := setCell(f, remainingSheet, 1, i+2, name); err != nil {
			return err
		}
		if err := setCell(f, remainingSheet, 2, i+2, v); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(remainingSheet, "A", "B", 16)
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setCell(f *excelize.File, sheet string, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("set %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// WriteCSV writes one line per event, prefixed with a UTF-8 BOM so
// spreadsheet tools detect the encoding.
func WriteCSV(w io.Writer, rows []DayReport) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(historyHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rep := range rows {
		for _, ev := range rep.Events {
			if err := cw.Write([]string{rep.Day.String(), ev.FoodName, ev.Category, ev.Servings.String(), ev.Points.String()}); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
