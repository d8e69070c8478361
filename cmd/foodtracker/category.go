package foodtracker

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/cli"
	"github.com/DorNorimberg/Food-Tracker/internal/model"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage point categories",
}

var (
	categoryMax       string
	categoryUnlimited bool
)

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category with a daily point budget",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var budget model.Allowance
		switch {
		case categoryUnlimited && cmd.Flags().Changed("max"):
			return fmt.Errorf("use either --max or --unlimited")
		case categoryUnlimited:
			budget = model.Unlimited()
		case categoryMax == "":
			return fmt.Errorf("--max or --unlimited is required")
		default:
			points, err := parseDecimalArg("max", categoryMax)
			if err != nil {
				return err
			}
			budget = model.Limit(points)
		}

		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			c, err := tr.AddCategory(args[0], budget)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %q (budget %s)\n", c.Name, cli.FormatAllowance(c.MaxPoints))
			return nil
		})
	},
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories with today's balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			categories, err := tr.Categories()
			if err != nil {
				return err
			}
			balances, err := tr.Remaining()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(categories))
			for _, c := range categories {
				rows = append(rows, []string{c.Name, cli.FormatAllowance(c.MaxPoints), cli.FormatAllowance(balances[c.Name])})
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderTable(cli.Table{
				Headers: []string{"Category", "Budget", "Remaining"},
				Rows:    rows,
			}))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryAddCmd, categoryListCmd)
	categoryAddCmd.Flags().StringVar(&categoryMax, "max", "", "Daily point budget")
	categoryAddCmd.Flags().BoolVar(&categoryUnlimited, "unlimited", false, "No daily limit")
}
