package foodtracker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/app"
	"github.com/DorNorimberg/Food-Tracker/internal/config"
	"github.com/DorNorimberg/Food-Tracker/internal/model"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
	"github.com/DorNorimberg/Food-Tracker/internal/store"
)

// settings is the resolved configuration of one command run.
type settings struct {
	cfg       config.Config
	statePath string
	storage   string
	loc       *time.Location
	log       *slog.Logger
}

func loadSettings(cmd *cobra.Command) (settings, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return settings{}, err
	}
	if logLevel != "" {
		cfg.Logging.Level = strings.ToLower(logLevel)
	}
	if logFormat != "" {
		cfg.Logging.Format = strings.ToLower(logFormat)
	}
	if err := cfg.Validate(); err != nil {
		return settings{}, err
	}

	s := settings{cfg: cfg, storage: cfg.General.Storage}
	if s.log, err = newLogger(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return settings{}, err
	}
	slog.SetDefault(s.log)
	if s.loc, err = cfg.Location(); err != nil {
		return settings{}, err
	}

	s.statePath = dbPath
	if s.statePath == "" {
		s.statePath = cfg.General.DBPath
	}
	if s.statePath == "" {
		if s.statePath, err = app.DefaultStatePath(s.storage); err != nil {
			return settings{}, err
		}
	}
	if strings.EqualFold(filepath.Ext(s.statePath), ".json") {
		s.storage = config.StorageJSON
	}
	return s, nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var slogLevel slog.Level
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	opts := &slog.HandlerOptions{Level: slogLevel}
	switch format {
	case "console":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
}

// withTracker opens the configured store, loads the tracker session and
// hands it to run.
func withTracker(cmd *cobra.Command, run func(*service.Tracker, settings) error) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	if err := app.EnsureDBDir(s.statePath); err != nil {
		return err
	}

	var st store.Store
	switch s.storage {
	case config.StorageJSON:
		st = store.JSONFile{Path: s.statePath}
	default:
		sqlite, err := store.OpenSQLite(s.statePath)
		if err != nil {
			return err
		}
		defer sqlite.Close()
		st = sqlite
	}

	tr, err := service.Open(st, service.WithLogger(s.log), service.WithLocation(s.loc))
	if err != nil {
		return err
	}
	return run(tr, s)
}

func parseDecimalArg(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", name, value)
	}
	return d, nil
}

func parsePositiveDecimalArg(name, value string) (decimal.Decimal, error) {
	d, err := parseDecimalArg(name, value)
	if err != nil {
		return d, err
	}
	if !d.IsPositive() {
		return d, fmt.Errorf("%s must be > 0", name)
	}
	return d, nil
}

func parseIndexArg(value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid index %q", value)
	}
	if v < 1 {
		return 0, errors.New("index must be >= 1")
	}
	return v - 1, nil
}

// parseDayFlag parses an optional --date flag; empty means today.
func parseDayFlag(value string) (model.Day, error) {
	if strings.TrimSpace(value) == "" {
		return model.Day{}, nil
	}
	day, err := model.ParseDay(value)
	if err != nil {
		return model.Day{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", value)
	}
	return day, nil
}
