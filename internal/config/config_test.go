package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DorNorimberg/Food-Tracker/internal/config"
)

var envKeys = []string{"FOODTRACKER_DB", "FOODTRACKER_STORAGE", "FOODTRACKER_TZ", "FOODTRACKER_LOG_LEVEL"}

// unsetEnv removes the tracker variables for the duration of the test.
func unsetEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		prev, had := os.LookupEnv(key)
		require.NoError(t, os.Unsetenv(key))
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}
}

func writeDotEnv(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o644))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	unsetEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.StorageSQLite, cfg.General.Storage)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestSaveLoadAndEnvOverride(t *testing.T) {
	unsetEnv(t)
	t.Chdir(t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Set("general.timezone", "Asia/Jerusalem"))
	require.NoError(t, cfg.Set("general.db_path", "/tmp/points.db"))
	require.NoError(t, config.Save(path, cfg))

	t.Setenv("FOODTRACKER_TZ", "UTC")
	loaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/points.db", loaded.General.DBPath)
	assert.Equal(t, "UTC", loaded.General.Timezone)

	loc, err := loaded.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestDotEnvFileIsApplied(t *testing.T) {
	unsetEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	writeDotEnv(t, dir, "FOODTRACKER_DB=/data/from-env.db\nFOODTRACKER_STORAGE=json\n")

	cfg, err := config.Load(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "/data/from-env.db", cfg.General.DBPath)
	assert.Equal(t, config.StorageJSON, cfg.General.Storage)
}

func TestDotEnvFillsEmptyExportedVariable(t *testing.T) {
	unsetEnv(t)
	t.Setenv("FOODTRACKER_DB", "")
	dir := t.TempDir()
	t.Chdir(dir)
	writeDotEnv(t, dir, "FOODTRACKER_DB=/data/from-env.db\n")

	cfg, err := config.Load(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "/data/from-env.db", cfg.General.DBPath)
}

func TestProcessEnvWinsOverDotEnv(t *testing.T) {
	unsetEnv(t)
	t.Setenv("FOODTRACKER_DB", "/data/from-process.db")
	dir := t.TempDir()
	t.Chdir(dir)
	writeDotEnv(t, dir, "FOODTRACKER_DB=/data/from-env.db\n")

	cfg, err := config.Load(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, "/data/from-process.db", cfg.General.DBPath)
}

func TestSetRejectsInvalidValues(t *testing.T) {
	for _, tc := range []struct{ key, value string }{
		{"general.storage", "csv"},
		{"general.timezone", "Mars/Olympus"},
		{"logging.level", "loud"},
		{"nope", "x"},
	} {
		cfg := config.DefaultConfig()
		assert.Error(t, cfg.Set(tc.key, tc.value), "%s=%s", tc.key, tc.value)
	}
}
