package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

// Predefined lipgloss styles.
var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// TypeStyle colors a work-item type.
func TypeStyle(itemType string) lipgloss.Style {
	switch itemType {
	case domain.TypeFeature:
		return StylePurple
	case domain.TypeUserStory:
		return StyleBlue
	case domain.TypeBug:
		return StyleRed
	case domain.TypeTask:
		return StyleFg
	default:
		return StyleDim
	}
}

// StateStyle colors a work-item state: finished states are dim, states that
// signal ongoing work are amber, everything else is plain.
func StateStyle(state string) lipgloss.Style {
	switch {
	case domain.IsDoneState(state):
		return StyleDim
	case strings.EqualFold(state, "Active"), strings.EqualFold(state, "Committed"), strings.EqualFold(state, "In Progress"):
		return StyleYellow
	case strings.EqualFold(state, "New"), strings.EqualFold(state, "Proposed"):
		return StyleBlue
	default:
		return StyleFg
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

// Dim renders text in the muted/dim color.
func Dim(text string) string {
	return StyleDim.Render(text)
}

// Bold renders text in bold with the foreground color.
func Bold(text string) string {
	return StyleBold.Render(text)
}
