package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/mediastats/internal/models"
)

// Brand colors shared by both themes.
const (
	primary   = "#E5A00D"
	secondary = "#2E9DD5"
	danger    = "#F44336"
	success   = "#4CAF50"
)

// Colors is the raw color set of a theme.
type Colors struct {
	Primary    string
	Secondary  string
	Background string
	Paper      string
	Text       string
	Muted      string
}

// ThemeColors returns the colors for theme.
func ThemeColors(theme models.Theme) Colors {
	if theme == models.ThemeDark {
		return Colors{
			Primary:    primary,
			Secondary:  secondary,
			Background: "#000000",
			Paper:      "#121212",
			Text:       "#FFFFFF",
			Muted:      "#9E9E9E",
		}
	}
	return Colors{
		Primary:    primary,
		Secondary:  secondary,
		Background: "#F5F5F5",
		Paper:      "#FFFFFF",
		Text:       "#212121",
		Muted:      "#757575",
	}
}

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	colors Colors

	chrome lipgloss.Style
	title  lipgloss.Style
	card   lipgloss.Style
	label  lipgloss.Style
	value  lipgloss.Style
	accent lipgloss.Style
	ok     lipgloss.Style
	err    lipgloss.Style
	help   lipgloss.Style
	body   lipgloss.Style
}

// NewPalette builds the stylesheet for theme.
func NewPalette(theme models.Theme) *Palette {
	c := ThemeColors(theme)

	return &Palette{
		colors: c,
		chrome: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color(c.Primary)).
			Padding(0, 1),
		title: NewBold(c.Primary).MarginBottom(1),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(c.Secondary)).
			Background(lipgloss.Color(c.Paper)).
			Foreground(lipgloss.Color(c.Text)).
			Padding(0, 1),
		label:  NewStyle(c.Muted),
		value:  NewBold(c.Text),
		accent: NewBold(c.Secondary),
		ok:     NewBold(success),
		err:    NewBold(danger),
		help:   NewEm(c.Muted),
		body: lipgloss.NewStyle().
			Foreground(lipgloss.Color(c.Text)).
			Background(lipgloss.Color(c.Background)),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
