package foodtracker

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/report"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
	"github.com/DorNorimberg/Food-Tracker/internal/store"
)

var (
	exportOut  string
	exportFrom string
	exportTo   string
	importFile string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export history and state",
}

var exportXLSXCmd = &cobra.Command{
	Use:   "xlsx",
	Short: "Export history and today's balances as an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(tr *service.Tracker, s settings) error {
			rows, err := buildReport(tr)
			if err != nil {
				return err
			}
			balances, err := tr.Remaining()
			if err != nil {
				return err
			}
			out := exportOut
			if out == "" {
				today, err := tr.Today()
				if err != nil {
					return err
				}
				out = filepath.Join(s.cfg.Report.Dir, fmt.Sprintf("foodtracker-%s.xlsx", today))
			}
			return writeOutput(cmd, out, func(w io.Writer) error {
				return report.WriteXLSX(w, rows, balances)
			})
		})
	},
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export history as CSV (stdout unless --out is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			rows, err := buildReport(tr)
			if err != nil {
				return err
			}
			return writeOutput(cmd, exportOut, func(w io.Writer) error {
				return report.WriteCSV(w, rows)
			})
		})
	},
}

var exportJSONCmd = &cobra.Command{
	Use:   "json",
	Short: "Export the full state as JSON (stdout unless --out is set)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			snap, err := tr.Export()
			if err != nil {
				return err
			}
			return writeOutput(cmd, exportOut, func(w io.Writer) error {
				return store.EncodeJSON(w, snap)
			})
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import state",
}

var importJSONCmd = &cobra.Command{
	Use:   "json",
	Short: "Replace the whole state with a JSON export",
	RunE: func(cmd *cobra.Command, args []string) error {
		if importFile == "" {
			return fmt.Errorf("--file is required")
		}
		f, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open import file: %w", err)
		}
		defer f.Close()
		snap, err := store.DecodeJSON(f)
		if err != nil {
			return err
		}
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			if err := tr.Import(snap); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d categories, %d foods and %d days\n", len(snap.Categories), len(snap.Foods), len(snap.History))
			return nil
		})
	},
}

func buildReport(tr *service.Tracker) ([]report.DayReport, error) {
	from, err := parseDayFlag(exportFrom)
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	to, err := parseDayFlag(exportTo)
	if err != nil {
		return nil, fmt.Errorf("--to: %w", err)
	}
	return report.Build(tr, from, to)
}

// writeOutput writes to path, or to the command's stdout when path is empty
// or "-".
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" || path == "-" {
		return write(cmd.OutOrStdout())
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd, importCmd)
	exportCmd.AddCommand(exportXLSXCmd, exportCSVCmd, exportJSONCmd)
	importCmd.AddCommand(importJSONCmd)

	exportCmd.PersistentFlags().StringVar(&exportOut, "out", "", "Output file path")
	exportCmd.PersistentFlags().StringVar(&exportFrom, "from", "", "First day to export (YYYY-MM-DD)")
	exportCmd.PersistentFlags().StringVar(&exportTo, "to", "", "Last day to export (YYYY-MM-DD)")
	importJSONCmd.Flags().StringVar(&importFile, "file", "", "JSON file produced by export json")
}
