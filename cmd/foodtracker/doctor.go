package foodtracker

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/cli"
	"github.com/DorNorimberg/Food-Tracker/internal/config"
	"github.com/DorNorimberg/Food-Tracker/internal/db"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that balances match today's records",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(tr *service.Tracker, s settings) error {
			if s.storage == config.StorageSQLite {
				version, dirty, err := db.SchemaVersion(s.statePath)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Schema version: %d (dirty: %t)\n", version, dirty)
			}

			report, err := service.RunDoctor(tr, doctorFix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Today: %s\n", report.Today)
			fmt.Fprintf(cmd.OutOrStdout(), "Days with records: %d (%d records)\n", report.Days, report.Events)
			for _, d := range report.FutureDays {
				fmt.Fprintf(cmd.OutOrStdout(), "Records dated after today: %s\n", d)
			}
			for _, d := range report.Discrepancies {
				fmt.Fprintf(cmd.OutOrStdout(), "Balance mismatch in %s: stored %s, expected %s\n", d.Category, cli.FormatPoints(d.Stored), cli.FormatPoints(d.Expected))
			}
			if doctorFix {
				fmt.Fprintf(cmd.OutOrStdout(), "Fixed balances: %d\n", report.Fixed)
				// Re-check after fixes so exit status reflects final state.
				if report, err = service.RunDoctor(tr, false); err != nil {
					return err
				}
			}
			if !report.OK() {
				return fmt.Errorf("doctor found integrity issues")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "No issues found")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Rebuild balances from today's records")
}
