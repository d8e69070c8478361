package foodtracker

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/cli"
	"github.com/DorNorimberg/Food-Tracker/internal/ledger"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Manage the food catalog",
}

var (
	foodCategory string
	foodPoints   string
	foodFile     string
)

var foodAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a food with its points per serving",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if foodCategory == "" || foodPoints == "" {
			return fmt.Errorf("--category and --points are required")
		}
		points, err := parseDecimalArg("points", foodPoints)
		if err != nil {
			return err
		}
		name := strings.Join(args, " ")
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			f, err := tr.AddFood(name, foodCategory, points)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added food %q to %s (%s points per serving)\n", f.Name, f.Category, cli.FormatPoints(f.PointsPerServing))
			return nil
		})
	},
}

var foodListCmd = &cobra.Command{
	Use:   "list",
	Short: "List foods",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			foods, err := tr.Foods(foodCategory)
			if err != nil {
				return err
			}
			if len(foods) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No foods")
				return nil
			}
			rows := make([][]string, 0, len(foods))
			for _, f := range foods {
				rows = append(rows, []string{f.Name, f.Category, cli.FormatPoints(f.PointsPerServing)})
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderTable(cli.Table{
				Headers:   []string{"Food", "Category", "Points"},
				Rows:      rows,
				LeftAlign: []int{1},
			}))
			return nil
		})
	},
}

var foodRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a food from the catalog",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.Join(args, " ")
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			if err := tr.RemoveFood(name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed food %q\n", name)
			return nil
		})
	},
}

var foodReplaceCmd = &cobra.Command{
	Use:   "replace <category>",
	Short: "Replace every food of a category from a name,points CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if foodFile == "" {
			return fmt.Errorf("--file is required")
		}
		rows, err := readFoodRows(foodFile)
		if err != nil {
			return err
		}
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			if err := tr.ReplaceCategoryFoods(args[0], rows); err != nil {
				return err
			}
			foods, err := tr.Foods(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replaced foods in %s (%d foods)\n", args[0], len(foods))
			return nil
		})
	},
}

// readFoodRows reads name,points rows. A first row whose points column is
// not a number is taken as a header.
func readFoodRows(path string) ([]ledger.FoodRow, error) {
	records, err := readCSV(path, 2)
	if err != nil {
		return nil, err
	}
	rows := make([]ledger.FoodRow, 0, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec[0]) == "" {
			continue
		}
		points, err := parseDecimalArg("points", rec[1])
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("%s line %d: %w", path, i+1, err)
		}
		rows = append(rows, ledger.FoodRow{Name: rec[0], PointsPerServing: points})
	}
	return rows, nil
}

func readCSV(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	out := make([][]string, 0)
	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		if len(rec) < fields {
			return nil, fmt.Errorf("%s line %d: expected %d columns, got %d", path, line, fields, len(rec))
		}
		if line == 1 {
			rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
		}
		out = append(out, rec)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodAddCmd, foodListCmd, foodRemoveCmd, foodReplaceCmd)

	foodAddCmd.Flags().StringVar(&foodCategory, "category", "", "Category the food belongs to")
	foodAddCmd.Flags().StringVar(&foodPoints, "points", "", "Points per serving")
	foodListCmd.Flags().StringVar(&foodCategory, "category", "", "Only list foods in this category")
	foodReplaceCmd.Flags().StringVar(&foodFile, "file", "", "CSV file with name,points rows")
}
