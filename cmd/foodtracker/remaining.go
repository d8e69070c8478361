package foodtracker

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/cli"
	"github.com/DorNorimberg/Food-Tracker/internal/service"
)

var remainingCmd = &cobra.Command{
	Use:   "remaining",
	Short: "Show today's remaining points per category",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withTracker(cmd, func(tr *service.Tracker, _ settings) error {
			today, err := tr.Today()
			if err != nil {
				return err
			}
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
				left := balances[c.Name]
				rows = append(rows, []string{
					c.Name,
					cli.FormatAllowance(left),
					cli.FormatAllowance(c.MaxPoints),
					cli.RenderBudgetBar(left, c.MaxPoints, 12),
				})
			}
			fmt.Fprint(cmd.OutOrStdout(), cli.RenderTable(cli.Table{
				Title:     "Remaining points for " + today.String(),
				Headers:   []string{"Category", "Remaining", "Budget", ""},
				Rows:      rows,
				LeftAlign: []int{3},
			}))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(remainingCmd)
}
