package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

type Document struct {
	Categories []DocumentCategory         `json:"categories"`
	Foods      []DocumentFood             `json:"foods"`
	History    map[string][]DocumentEvent `json:"history"`
	Meta       DocumentMeta               `json:"meta"`
}

type DocumentCategory struct {
	Name      string          `json:"name"`
	MaxPoints model.Allowance `json:"max_points"`
}

type DocumentFood struct {
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	PointsPerServing decimal.Decimal `json:"points_per_serving"`
}

type DocumentEvent struct {
	FoodName string          `json:"food_name"`
	Category string          `json:"category"`
	Servings decimal.Decimal `json:"servings"`
	Points   decimal.Decimal `json:"points"`
}

type DocumentMeta struct {
	RemainingPoints map[string]model.Allowance `json:"remaining_points"`
	LastResetDate   string                     `json:"last_reset_date"`
}

func NewDocument(snap model.Snapshot) Document {
	doc := Document{
		Categories: make([]DocumentCategory, 0, len(snap.Categories)),
		Foods:      make([]DocumentFood, 0, len(snap.Foods)),
		History:    make(map[string][]DocumentEvent, len(snap.History)),
		Meta: DocumentMeta{
			RemainingPoints: make(map[string]model.Allowance, len(snap.Remaining)),
			LastResetDate:   snap.LastReset.String(),
		},
	}
	for _, c := range snap.Categories {
		doc.Categories = append(doc.Categories, DocumentCategory{Name: c.Name, MaxPoints: c.MaxPoints})
	}
	for _, f := range snap.Foods {
		doc.Foods = append(doc.Foods, DocumentFood{Name: f.Name, Category: f.Category, PointsPerServing: f.PointsPerServing})
	}
	for day, events := range snap.History {
		if len(events) == 0 {
			continue
		}
		rows := make([]DocumentEvent, 0, len(events))
		for _, ev := range events {
			rows = append(rows, DocumentEvent{FoodName: ev.FoodName, Category: ev.Category, Servings: ev.Servings, Points: ev.Points})
		}
		doc.History[day.String()] = rows
	}
	for name, a := range snap.Remaining {
		doc.Meta.RemainingPoints[name] = a
	}
	return doc
}

func (doc Document) Snapshot() (model.Snapshot, error) {
	snap := model.Snapshot{
		Categories: make([]model.Category, 0, len(doc.Categories)),
		Foods:      make([]model.Food, 0, len(doc.Foods)),
		History:    make(map[model.Day][]model.Event, len(doc.History)),
		Remaining:  make(map[string]model.Allowance, len(doc.Meta.RemainingPoints)),
	}
	for _, c := range doc.Categories {
		snap.Categories = append(snap.Categories, model.Category{Name: c.Name, MaxPoints: c.MaxPoints})
	}
	for _, f := range doc.Foods {
		snap.Foods = append(snap.Foods, model.Food{Name: f.Name, Category: f.Category, PointsPerServing: f.PointsPerServing})
	}
	keys := make([]string, 0, len(doc.History))
	for k := range doc.History {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		day, err := model.ParseDay(k)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("history: %w", err)
		}
		events := make([]model.Event, 0, len(doc.History[k]))
		for _, ev := range doc.History[k] {
			events = append(events, model.Event{Day: day, FoodName: ev.FoodName, Category: ev.Category, Servings: ev.Servings, Points: ev.Points})
		}
		snap.History[day] = events
	}
	for name, a := range doc.Meta.RemainingPoints {
		snap.Remaining[name] = a
	}
	if doc.Meta.LastResetDate != "" {
		day, err := model.ParseDay(doc.Meta.LastResetDate)
		if err != nil {
			return model.Snapshot{}, fmt.Errorf("last_reset_date: %w", err)
		}
		snap.LastReset = day
	}
	return snap, nil
}

func EncodeJSON(w io.Writer, snap model.Snapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(snap)); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

func DecodeJSON(r io.Reader) (model.Snapshot, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return model.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return doc.Snapshot()
}

// JSONFile keeps the snapshot in a single JSON document on disk.
type JSONFile struct {
	Path string
}

func (f JSONFile) Load() (model.Snapshot, bool, error) {
	file, err := os.Open(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return model.Snapshot{}, false, nil
	}
	if err != nil {
		return model.Snapshot{}, false, fmt.Errorf("open snapshot file: %w", err)
	}
	defer file.Close()
	snap, err := DecodeJSON(file)
	if err != nil {
		return model.Snapshot{}, false, err
	}
	return snap, len(snap.Categories) > 0, nil
}

// Save writes to a temporary file and renames it over the old snapshot.
func (f JSONFile) Save(snap model.Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.Path), ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := EncodeJSON(tmp, snap); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.Path); err != nil {
		return fmt.Errorf("replace snapshot file: %w", err)
	}
	return nil
}
