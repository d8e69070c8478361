package foodtracker

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/cli"
	"github.com/DorNorimberg/Food-Tracker/internal/model"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
)

var (
	historyDate     string
	historyFile     string
	historyServings string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the foods recorded on a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDayFlag(historyDate)
		if err != nil {
			return err
		}
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			if day.IsZero() {
				if day, err = tr.Today(); err != nil {
					return err
				}
			}
			events, err := tr.Snapshot(day)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "Nothing recorded on %s\n", day)
				return nil
			}
			total := decimal.Zero
			rows := make([][]string, 0, len(events))
			for i, ev := range events {
				total = total.Add(ev.Points)
				rows = append(rows, []string{strconv.Itoa(i + 1), ev.FoodName, ev.Category, cli.FormatPoints(ev.Servings), cli.FormatPoints(ev.Points)})
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderTable(cli.Table{
				Title:     "History for " + day.String(),
				Headers:   []string{"#", "Food", "Category", "Servings", "Points"},
				Rows:      rows,
				LeftAlign: []int{1, 2},
			}))
			fmt.Fprintf(cmd.OutOrStdout(), "Total points: %s\n", cli.FormatPoints(total))
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <index>",
	Short: "Change the servings of a recorded food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndexArg(args[0])
		if err != nil {
			return err
		}
		if historyServings == "" {
			return fmt.Errorf("--servings is required")
		}
		servings, err := parsePositiveDecimalArg("servings", historyServings)
		if err != nil {
			return err
		}
		day, err := parseDayFlag(historyDate)
		if err != nil {
			return err
		}
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			ev, err := tr.EditServings(day, index, servings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated #%d %s: %s servings, %s points\n", index+1, ev.FoodName, cli.FormatPoints(ev.Servings), cli.FormatPoints(ev.Points))
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <index>",
	Short: "Delete a recorded food and refund its points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := parseIndexArg(args[0])
		if err != nil {
			return err
		}
		day, err := parseDayFlag(historyDate)
		if err != nil {
			return err
		}
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			ev, err := tr.DeleteEvent(day, index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted #%d %s (%s points)\n", index+1, ev.FoodName, cli.FormatPoints(ev.Points))
			return nil
		})
	},
}

var historyReplaceCmd = &cobra.Command{
	Use:   "replace",
	Short: "Replace a day's records from a food,category,servings,points CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if historyFile == "" {
			return fmt.Errorf("--file is required")
		}
		day, err := parseDayFlag(historyDate)
		if err != nil {
			return err
		}
		events, err := readDayEvents(historyFile)
		if err != nil {
			return err
		}
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			if err := tr.ReplaceDay(day, events); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replaced history with %d records\n", len(events))
			return nil
		})
	},
}

// readDayEvents reads food,category,servings,points rows, skipping a header.
func readDayEvents(path string) ([]model.Event, error) {
	records, err := readCSV(path, 4)
	if err != nil {
		return nil, err
	}
	events := make([]model.Event, 0, len(records))
	for i, rec := range records {
		servings, err := parseDecimalArg("servings", rec[2])
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		points, err := parseDecimalArg("points", rec[3])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, i+1, err)
		}
		events = append(events, model.Event{FoodName: rec[0], Category: rec[1], Servings: servings, Points: points})
	}
	return events, nil
}

func init() {
	rootCmd.AddCommand(historyCmd, editCmd, deleteCmd)
	historyCmd.AddCommand(historyReplaceCmd)

	historyCmd.Flags().StringVar(&historyDate, "date", "", "Day to show (YYYY-MM-DD, default today)")
	historyReplaceCmd.Flags().StringVar(&historyDate, "date", "", "Day to replace (YYYY-MM-DD, default today)")
	historyReplaceCmd.Flags().StringVar(&historyFile, "file", "", "CSV file with food,category,servings,points rows")
	editCmd.Flags().StringVar(&historyDate, "date", "", "Day of the record (YYYY-MM-DD, default today)")
	editCmd.Flags().StringVar(&historyServings, "servings", "", "New number of servings")
	deleteCmd.Flags().StringVar(&historyDate, "date", "", "Day of the record (YYYY-MM-DD, default today)")
}
