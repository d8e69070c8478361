package foodtracker

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/config"
	"github.com/DorNorimberg/Food-Tracker/internal/db"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the local foodtracker state",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(tr *service.Tracker, s settings) error {
			categories, err := tr.Categories()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized foodtracker state at %s\n", s.statePath)
			if s.storage == config.StorageSQLite {
				version, _, err := db.SchemaVersion(s.statePath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d\n", version)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Categories: %d\n", len(categories))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
