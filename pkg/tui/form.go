package tui

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// PromptFixturePath runs a small huh form asking for a fixture path when the
// caller didn't pass one on the command line.
func PromptFixturePath() (string, error) {
	var path string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Fixture path").
				Description("JSON file describing the probabilistic DAG").
				Value(&path).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("a fixture path is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return "", err
	}
	return path, nil
}
