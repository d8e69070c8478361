package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DorNorimberg/Food-Tracker/internal/config"
)

func TestDefaultStatePathFollowsStorage(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")

	db, err := DefaultStatePath(config.StorageSQLite)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data", "foodtracker", "foodtracker.db"), db)

	js, err := DefaultStatePath(config.StorageJSON)
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(js))

	assert.Equal(t, filepath.Join("/data", "foodtracker", "backups"), DefaultBackupDir(db))
}
