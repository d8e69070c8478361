package store

import (
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/DorNorimberg/Food-Tracker/internal/db"
	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

const metaLastResetDate = "last_reset_date"

// SQLite stores snapshots in the tables created by the db migrations.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite migrates the database at path and opens it.
func OpenSQLite(path string) (*SQLite, error) {
	if err := db.ApplyMigrations(path); err != nil {
		return nil, err
	}
	sqldb, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	return &SQLite{db: sqldb}, nil
}

// NewSQLite wraps an already migrated database.
func NewSQLite(sqldb *sql.DB) *SQLite {
	return &SQLite{db: sqldb}
}

func (s *SQLite) DB() *sql.DB {
	return s.db
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Load() (model.Snapshot, bool, error) {
	snap := model.Snapshot{
		History:   map[model.Day][]model.Event{},
		Remaining: map[string]model.Allowance{},
	}

	categories, err := s.loadCategories()
	if err != nil {
		return snap, false, err
	}
	if len(categories) == 0 {
		return snap, false, nil
	}
	snap.Categories = categories

	if snap.Foods, err = s.loadFoods(); err != nil {
		return snap, false, err
	}
	if err := s.loadHistory(snap.History); err != nil {
		return snap, false, err
	}
	if err := s.loadRemaining(snap.Remaining); err != nil {
		return snap, false, err
	}

	var lastReset string
	err = s.db.QueryRow(`SELECT value FROM ledger_meta WHERE key = ?`, metaLastResetDate).Scan(&lastReset)
	if err != nil && err != sql.ErrNoRows {
		return snap, false, fmt.Errorf("load last reset date: %w", err)
	}
	if lastReset != "" {
		day, err := model.ParseDay(lastReset)
		if err != nil {
			return snap, false, fmt.Errorf("load last reset date: %w", err)
		}
		snap.LastReset = day
	}
	return snap, true, nil
}

func (s *SQLite) loadCategories() ([]model.Category, error) {
	rows, err := s.db.Query(`SELECT name, max_points FROM categories ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0)
	for rows.Next() {
		var c model.Category
		var raw string
		if err := rows.Scan(&c.Name, &raw); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if c.MaxPoints, err = model.ParseAllowance(raw); err != nil {
			return nil, fmt.Errorf("category %q: %w", c.Name, err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (s *SQLite) loadFoods() ([]model.Food, error) {
	rows, err := s.db.Query(`SELECT name, category, points_per_serving FROM foods ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load foods: %w", err)
	}
	defer rows.Close()

	foods := make([]model.Food, 0)
	for rows.Next() {
		var f model.Food
		var raw string
		if err := rows.Scan(&f.Name, &f.Category, &raw); err != nil {
			return nil, fmt.Errorf("scan food: %w", err)
		}
		if f.PointsPerServing, err = decimal.NewFromString(raw); err != nil {
			return nil, fmt.Errorf("food %q points: %w", f.Name, err)
		}
		foods = append(foods, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foods: %w", err)
	}
	return foods, nil
}

func (s *SQLite) loadHistory(history map[model.Day][]model.Event) error {
	rows, err := s.db.Query(`SELECT day, food_name, category, servings, points FROM consumption_events ORDER BY day, position`)
	if err != nil {
		return fmt.Errorf("load consumption events: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ev model.Event
		var dayRaw, servingsRaw, pointsRaw string
		if err := rows.Scan(&dayRaw, &ev.FoodName, &ev.Category, &servingsRaw, &pointsRaw); err != nil {
			return fmt.Errorf("scan consumption event: %w", err)
		}
		if ev.Day, err = model.ParseDay(dayRaw); err != nil {
			return fmt.Errorf("consumption event: %w", err)
		}
		if ev.Servings, err = decimal.NewFromString(servingsRaw); err != nil {
			return fmt.Errorf("consumption event %s servings: %w", dayRaw, err)
		}
		if ev.Points, err = decimal.NewFromString(pointsRaw); err != nil {
			return fmt.Errorf("consumption event %s points: %w", dayRaw, err)
		}
		history[ev.Day] = append(history[ev.Day], ev)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate consumption events: %w", err)
	}
	return nil
}

func (s *SQLite) loadRemaining(remaining map[string]model.Allowance) error {
	rows, err := s.db.Query(`SELECT category, points FROM remaining_points`)
	if err != nil {
		return fmt.Errorf("load remaining points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var category, raw string
		if err := rows.Scan(&category, &raw); err != nil {
			return fmt.Errorf("scan remaining points: %w", err)
		}
		a, err := model.ParseAllowance(raw)
		if err != nil {
			return fmt.Errorf("remaining points for %q: %w", category, err)
		}
		remaining[category] = a
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate remaining points: %w", err)
	}
	return nil
}

// Save replaces every stored row with the snapshot in one transaction.
func (s *SQLite) Save(snap model.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	if err := saveTx(tx, snap); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

func saveTx(tx *sql.Tx, snap model.Snapshot) error {
	for _, table := range []string{"remaining_points", "consumption_events", "foods", "categories", "ledger_meta"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for i, c := range snap.Categories {
		if _, err := tx.Exec(`INSERT INTO categories(position, name, max_points) VALUES(?, ?, ?)`, i, c.Name, c.MaxPoints.String()); err != nil {
			return fmt.Errorf("save category %q: %w", c.Name, err)
		}
	}
	for i, f := range snap.Foods {
		if _, err := tx.Exec(`INSERT INTO foods(position, name, category, points_per_serving) VALUES(?, ?, ?, ?)`, i, f.Name, f.Category, f.PointsPerServing.String()); err != nil {
			return fmt.Errorf("save food %q: %w", f.Name, err)
		}
	}
	for day, events := range snap.History {
		for i, ev := range events {
			if _, err := tx.Exec(`
INSERT INTO consumption_events(day, position, food_name, category, servings, points)
VALUES(?, ?, ?, ?, ?, ?)
`, day.String(), i, ev.FoodName, ev.Category, ev.Servings.String(), ev.Points.String()); err != nil {
				return fmt.Errorf("save consumption event %s #%d: %w", day, i, err)
			}
		}
	}
	for category, a := range snap.Remaining {
		if _, err := tx.Exec(`INSERT INTO remaining_points(category, points) VALUES(?, ?)`, category, a.String()); err != nil {
			return fmt.Errorf("save remaining points for %q: %w", category, err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO ledger_meta(key, value) VALUES(?, ?)`, metaLastResetDate, snap.LastReset.String()); err != nil {
		return fmt.Errorf("save last reset date: %w", err)
	}
	return nil
}
