package ui

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))
)

// PrintTitle prints a section header.
func PrintTitle(s string) {
	fmt.Println(titleStyle.Render(s))
}

// PrintSuccess prints a green confirmation line.
func PrintSuccess(format string, args ...any) {
	fmt.Println(successStyle.Render("✓ " + fmt.Sprintf(format, args...)))
}

// PrintDetail prints a dimmed key/value line.
func PrintDetail(key, value string) {
	fmt.Println(subtleStyle.Render(fmt.Sprintf("  %-10s %s", key+":", value)))
}

// PrintError prints a red error line.
func PrintError(msg string) {
	fmt.Println(errorStyle.Render("✗ " + msg))
}

// Confirm asks a yes/no question and reports the answer.
func Confirm(title, description string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeCatppuccin())

	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}
