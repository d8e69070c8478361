package foodtracker

import (
	"os"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/DorNorimberg/Food-Tracker/internal/model"
)

// interactive reports whether the command talks to a real terminal.
func interactive(cmd *cobra.Command) bool {
	if cmd.InOrStdin() != os.Stdin {
		return false
	}
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func promptNewFood(name string, categories []model.Category) (string, string, error) {
	var category, points string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("New food").
				Description(name+" is not in the catalog yet."),
			huh.NewSelect[string]().
				Title("Category").
				Options(huh.NewOptions(categoryNames(categories)...)...).
				Value(&category),
			huh.NewInput().
				Title("Points per serving").
				Value(&points).
				Validate(func(s string) error {
					_, err := parseDecimalArg("points", s)
					return err
				}),
		),
	)
	if err := form.Run(); err != nil {
		return "", "", err
	}
	return category, points, nil
}
