package foodtracker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/cli"
	"github.com/DorNorimberg/Food-Tracker/internal/ledger"
	"github.com/DorNorimberg/Food-Tracker/internal/model"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
)

var (
	eatServings string
	eatDate     string
	eatCategory string
	eatPoints   string
)

var eatCmd = &cobra.Command{
	Use:   "eat <food>",
	Short: "Record servings of a food",
	Long:  "Record servings of a food against its category budget. An unknown food is added first when --category and --points are given, or after a prompt on a terminal.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		servings, err := parsePositiveDecimalArg("servings", eatServings)
		if err != nil {
			return err
		}
		day, err := parseDayFlag(eatDate)
		if err != nil {
			return err
		}
		name := strings.Join(args, " ")

		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			if err := ensureFood(cmd, tr, name); err != nil {
				return err
			}
			ev, err := tr.RecordOn(name, servings, day)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s x %s on %s (%s points, %s)\n",
				cli.FormatPoints(ev.Servings), ev.FoodName, ev.Day, cli.FormatPoints(ev.Points), ev.Category)

			balances, err := tr.Remaining()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Remaining %s: %s\n", ev.Category, cli.FormatAllowance(balances[ev.Category]))
			return nil
		})
	},
}

// ensureFood adds name to the catalog when it is missing, from flags or an
// interactive prompt.
func ensureFood(cmd *cobra.Command, tr *service.Tracker, name string) error {
	_, err := tr.Food(name)
	if !errors.Is(err, ledger.ErrFoodNotFound) {
		return err
	}

	category, points := eatCategory, eatPoints
	if category == "" || points == "" {
		if !interactive(cmd) {
			return fmt.Errorf("%w (pass --category and --points to add it)", err)
		}
		categories, err := tr.Categories()
		if err != nil {
			return err
		}
		if category, points, err = promptNewFood(name, categories); err != nil {
			return err
		}
	}

	pps, err := parseDecimalArg("points", points)
	if err != nil {
		return err
	}
	f, err := tr.AddFood(name, category, pps)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added food %q to %s (%s points per serving)\n", f.Name, f.Category, cli.FormatPoints(f.PointsPerServing))
	return nil
}

func categoryNames(categories []model.Category) []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}

func init() {
	rootCmd.AddCommand(eatCmd)
	eatCmd.Flags().StringVar(&eatServings, "servings", "1", "Number of servings")
	eatCmd.Flags().StringVar(&eatDate, "date", "", "Day eaten (YYYY-MM-DD, default today)")
	eatCmd.Flags().StringVar(&eatCategory, "category", "", "Category for a food not yet in the catalog")
	eatCmd.Flags().StringVar(&eatPoints, "points", "", "Points per serving for a food not yet in the catalog")
}
