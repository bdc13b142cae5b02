package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/azdo/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// azdoHuhTheme returns a huh theme matching the formatter palette.
func azdoHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.MultiSelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.SelectedPrefix = lipgloss.NewStyle().Foreground(formatter.ColorGreen).SetString("● ")
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.UnselectedPrefix = lipgloss.NewStyle().Foreground(formatter.ColorDim).SetString("○ ")
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// NewFeatureSelector returns a Selector backed by a huh multi-select, used
// to narrow the registered features before listing work items.
func NewFeatureSelector() Selector {
	return SelectorFunc(func(prompt string, lines []string) ([]string, error) {
		var picked []string
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewMultiSelect[string]().
					Title(prompt).
					Options(huh.NewOptions(lines...)...).
					Height(min(len(lines)+2, 15)).
					Value(&picked),
			),
		).WithTheme(azdoHuhTheme())

		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil, nil
			}
			return nil, fmt.Errorf("feature selection: %w", err)
		}
		return inDisplayOrder(lines, picked), nil
	})
}

// HuhPrompt asks a single free-text question. An aborted prompt yields an
// empty answer.
func HuhPrompt(title string) (string, error) {
	var answer string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Value(&answer),
		),
	).WithTheme(azdoHuhTheme()).WithShowHelp(false)

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", nil
		}
		return "", err
	}
	return answer, nil
}

// inDisplayOrder returns the members of picked in the order they appear in
// lines.
func inDisplayOrder(lines, picked []string) []string {
	want := make(map[string]int, len(picked))
	for _, p := range picked {
		want[p]++
	}
	var out []string
	for _, l := range lines {
		if want[l] > 0 {
			want[l]--
			out = append(out, l)
		}
	}
	return out
}
