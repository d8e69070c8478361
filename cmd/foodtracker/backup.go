package foodtracker

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/app"
	"github.com/DorNorimberg/Food-Tracker/internal/cli"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage state backups",
}

var (
	backupOut    string
	backupDir    string
	restoreFile  string
	restoreForce bool
)

var backupCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a backup of the state file",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		out := backupOut
		if out == "" {
			dir := backupDir
			if dir == "" {
				dir = app.DefaultBackupDir(s.statePath)
			}
			out = filepath.Join(dir, service.BackupName(s.statePath, time.Now()))
		}
		info, err := service.CreateBackup(s.statePath, out)
		if err != nil {
			return err
		}
		s.log.Info("backup created", "path", info.Path, "bytes", info.SizeBytes)
		fmt.Fprintf(cmd.OutOrStdout(), "Created backup: %s\n", info.Path)
		fmt.Fprintf(cmd.OutOrStdout(), "Checksum: %s\n", info.Checksum)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		dir := backupDir
		if dir == "" {
			dir = app.DefaultBackupDir(s.statePath)
		}
		items, err := service.ListBackups(dir)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No backups in %s\n", dir)
			return nil
		}
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			rows = append(rows, []string{filepath.Base(it.Path), strconv.FormatInt(it.SizeBytes, 10), it.CreatedAt.Format(time.RFC3339), it.Checksum})
		}
		fmt.Fprint(cmd.OutOrStdout(), cli.RenderTable(cli.Table{
			Title:     dir,
			Headers:   []string{"File", "Size", "Created", "Checksum"},
			Rows:      rows,
			LeftAlign: []int{3},
		}))
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Restore the state file from a backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		if restoreFile == "" {
			return fmt.Errorf("--file is required")
		}
		s, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if err := service.RestoreBackup(restoreFile, s.statePath, restoreForce); err != nil {
			return err
		}
		s.log.Info("backup restored", "from", restoreFile, "to", s.statePath)
		fmt.Fprintf(cmd.OutOrStdout(), "Restored backup from %s\n", restoreFile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd, backupListCmd, backupRestoreCmd)

	backupCreateCmd.Flags().StringVar(&backupOut, "out", "", "Backup output file path")
	backupCreateCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (used when --out is empty)")
	backupListCmd.Flags().StringVar(&backupDir, "dir", "", "Backup directory (default: alongside the state file under backups/)")
	backupRestoreCmd.Flags().StringVar(&restoreFile, "file", "", "Backup file path")
	backupRestoreCmd.Flags().BoolVar(&restoreForce, "force", false, "Overwrite the state file if present")
}
