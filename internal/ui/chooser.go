package ui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/mediastats/internal/models"
	"github.com/desertthunder/mediastats/internal/shared"
)

// Chooser is a list model for picking one discovered server.
type Chooser struct {
	list      list.Model
	keys      keyMap
	palette   *Palette
	selected  *models.ServerChoice
	cancelled bool
}

// NewChooser creates a chooser over choices.
func NewChooser(choices []models.ServerChoice, theme models.Theme) *Chooser {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = serverItem{choice: c}
	}

	palette := NewPalette(theme)
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color(palette.colors.Primary)).
		BorderLeftForeground(lipgloss.Color(palette.colors.Primary))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(lipgloss.Color(palette.colors.Secondary)).
		BorderLeftForeground(lipgloss.Color(palette.colors.Primary))

	l := list.New(items, delegate, 60, 14)
	l.Title = "Select a Plex server"
	l.Styles.Title = palette.chrome
	l.SetFilteringEnabled(false)
	l.SetShowStatusBar(false)

	return &Chooser{list: l, keys: newKeyMap(), palette: palette}
}

// Selected returns the chosen server, if any.
func (c *Chooser) Selected() (models.ServerChoice, bool) {
	if c.selected == nil {
		return models.ServerChoice{}, false
	}
	return *c.selected, true
}

// Cancelled reports whether the user dismissed the chooser.
func (c *Chooser) Cancelled() bool { return c.cancelled }

func (c *Chooser) Init() tea.Cmd { return nil }

func (c *Chooser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.list.SetSize(msg.Width, msg.Height-2)
		return c, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, c.keys.quit), key.Matches(msg, c.keys.back):
			c.cancelled = true
			return c, tea.Quit
		case key.Matches(msg, c.keys.enter):
			if item, ok := c.list.SelectedItem().(serverItem); ok {
				choice := item.choice
				c.selected = &choice
				return c, tea.Quit
			}
			return c, nil
		}
	}

	var cmd tea.Cmd
	c.list, cmd = c.list.Update(msg)
	return c, cmd
}

func (c *Chooser) View() string {
	if c.selected != nil {
		return c.palette.ok.Render(fmt.Sprintf("Selected %s (%s)", c.selected.Name, c.selected.Connection.URL())) + "\n"
	}
	return c.list.View()
}

// ChooseServer runs a [Chooser] until the user picks a server or cancels.
//
// Cancellation, including ctx ending, returns [shared.ErrSelectionCancelled].
func ChooseServer(ctx context.Context, choices []models.ServerChoice, theme models.Theme, in io.Reader, out io.Writer) (models.ServerChoice, error) {
	if len(choices) == 0 {
		return models.ServerChoice{}, shared.ErrNoServers
	}

	chooser := NewChooser(choices, theme)
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if in != nil {
		opts = append(opts, tea.WithInput(in))
	}
	if out != nil {
		opts = append(opts, tea.WithOutput(out))
	}

	if _, err := tea.NewProgram(chooser, opts...).Run(); err != nil && ctx.Err() == nil {
		return models.ServerChoice{}, fmt.Errorf("server chooser failed: %w", err)
	}

	choice, ok := chooser.Selected()
	if !ok {
		return models.ServerChoice{}, shared.ErrSelectionCancelled
	}
	return choice, nil
}
