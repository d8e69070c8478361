// Package store persists full tracker snapshots.
package store

import "github.com/DorNorimberg/Food-Tracker/internal/model"

// Store loads and saves the whole tracker state. Save overwrites everything
// previously stored. Load reports false when nothing has been stored yet.
type Store interface {
	Load() (model.Snapshot, bool, error)
	Save(model.Snapshot) error
}
