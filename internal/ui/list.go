package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/mediastats/internal/models"
)

var _ list.Item = serverItem{}

// serverItem wraps [models.ServerChoice] to implement [list.Item].
type serverItem struct {
	choice models.ServerChoice
}

func (i serverItem) FilterValue() string { return i.choice.Name }
func (i serverItem) Title() string       { return i.choice.Name }
func (i serverItem) Description() string {
	return fmt.Sprintf("%s • %s", i.choice.Connection.URL(), i.choice.Connection.Kind())
}
