package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/DorNorimberg/Food-Tracker/internal/ledger"
	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

type BackupInfo struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	CreatedAt time.Time `json:"created_at"`
	SizeBytes int64     `json:"size_bytes"`
}

// DoctorReport summarizes a consistency check of the loaded state.
type DoctorReport struct {
	Today         model.Day
	Days          int
	Events        int
	FutureDays    []model.Day
	Discrepancies []ledger.Discrepancy
	Fixed         int
}

func (r DoctorReport) OK() bool {
	return len(r.Discrepancies) == 0 && len(r.FutureDays) == 0
}

// BackupName is the default file name for a backup of statePath taken at t.
func BackupName(statePath string, t time.Time) string {
	ext := filepath.Ext(statePath)
	if ext == "" {
		ext = ".db"
	}
	return "foodtracker-" + t.Format("20060102-150405") + ext
}

// CreateBackup copies the state file to outPath and writes a .sha256
// sidecar next to it.
func CreateBackup(statePath, outPath string) (BackupInfo, error) {
	if strings.TrimSpace(statePath) == "" {
		return BackupInfo{}, fmt.Errorf("state path is required")
	}
	if strings.TrimSpace(outPath) == "" {
		return BackupInfo{}, fmt.Errorf("backup output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return BackupInfo{}, fmt.Errorf("create backup directory: %w", err)
	}
	if err := copyFile(statePath, outPath); err != nil {
		return BackupInfo{}, err
	}
	checksum, err := fileSHA256(outPath)
	if err != nil {
		return BackupInfo{}, err
	}
	if err := os.WriteFile(outPath+".sha256", []byte(checksum+"\n"), 0o644); err != nil {
		return BackupInfo{}, fmt.Errorf("write checksum file: %w", err)
	}
	st, err := os.Stat(outPath)
	if err != nil {
		return BackupInfo{}, fmt.Errorf("stat backup: %w", err)
	}
	return BackupInfo{Path: outPath, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()}, nil
}

// RestoreBackup copies a backup over statePath. The checksum sidecar is
// verified when present.
func RestoreBackup(backupPath, statePath string, force bool) error {
	if strings.TrimSpace(backupPath) == "" || strings.TrimSpace(statePath) == "" {
		return fmt.Errorf("backup path and state path are required")
	}
	if !force {
		if _, err := os.Stat(statePath); err == nil {
			return fmt.Errorf("target %s already exists; use --force to overwrite", statePath)
		}
	}
	if expected, err := os.ReadFile(backupPath + ".sha256"); err == nil {
		actual, err := fileSHA256(backupPath)
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(expected)) != actual {
			return fmt.Errorf("backup checksum mismatch for %s", backupPath)
		}
	}
	if err := os.MkdirAll(filepath.Dir(statePath), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	return copyFile(backupPath, statePath)
}

// ListBackups returns the .db and .json backups in dir, newest first.
func ListBackups(dir string) ([]BackupInfo, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	out := make([]BackupInfo, 0)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if ext := filepath.Ext(f.Name()); ext != ".db" && ext != ".json" {
			continue
		}
		full := filepath.Join(dir, f.Name())
		st, err := os.Stat(full)
		if err != nil {
			continue
		}
		checksum := ""
		if b, err := os.ReadFile(full + ".sha256"); err == nil {
			checksum = strings.TrimSpace(string(b))
		}
		out = append(out, BackupInfo{Path: full, Checksum: checksum, CreatedAt: st.ModTime(), SizeBytes: st.Size()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Path > out[j].Path
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// RunDoctor checks the budget invariant and looks for days recorded after
// today. With fix set, balances are rebuilt from today's events.
func RunDoctor(t *Tracker, fix bool) (DoctorReport, error) {
	report := DoctorReport{}
	var err error
	if report.Today, err = t.Today(); err != nil {
		return report, err
	}

	days, err := t.Days()
	if err != nil {
		return report, err
	}
	report.Days = len(days)
	for _, day := range days {
		report.Events += len(t.state.Ledger.Snapshot(day))
		if day.After(report.Today) {
			report.FutureDays = append(report.FutureDays, day)
		}
	}

	if !fix {
		report.Discrepancies, err = t.Verify()
		return report, err
	}
	report.Discrepancies, err = t.Reconcile()
	if err != nil {
		return report, fmt.Errorf("doctor fix balances: %w", err)
	}
	report.Fixed = len(report.Discrepancies)
	return report, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source file: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	if err := out.Sync(); err != nil {
		return fmt.Errorf("sync destination file: %w", err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for checksum: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
