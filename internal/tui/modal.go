package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/yiblet/freewrite/internal/history"
	"github.com/yiblet/freewrite/internal/store"
)

// ModalMsg represents messages that the modal component handles
type ModalMsg interface {
	isModalMsg()
}

type ShowModalMsg struct {
	Title   string
	Content string
	Options string
}

func (ShowModalMsg) isModalMsg() {}

type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel holds the state for modal dialogs
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
	Width   int
	Height  int
}

// NewModalModel creates a new modal model
func NewModalModel() ModalModel {
	return ModalModel{
		Width:  56,
		Height: 9,
	}
}

// Update handles modal messages
func (m *ModalModel) Update(msg ModalMsg) {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.Active = true
		m.Title = msg.Title
		m.Content = msg.Content
		m.Options = msg.Options
	case HideModalMsg:
		m.Active = false
		m.Title = ""
		m.Content = ""
		m.Options = ""
	}
}

// ModalView renders the modal centered over backgroundView
func ModalView(model ModalModel, backgroundView string, windowWidth, windowHeight int) string {
	if !model.Active {
		return backgroundView
	}

	modalContent := lipgloss.NewStyle().Bold(true).Render(model.Title)
	if model.Content != "" {
		modalContent += "\n\n" + model.Content
	}
	if model.Options != "" {
		modalContent += "\n\n" + model.Options
	}

	modalWidth := max(min(model.Width, windowWidth-4), 10)
	modalHeight := max(min(model.Height, windowHeight-4), 3)

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(1, 2).
		Width(modalWidth).
		Height(modalHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Render(modalContent)

	backgroundLines := strings.Split(backgroundView, "\n")
	modalLines := strings.Split(modal, "\n")

	modalStartY := max((windowHeight-len(modalLines))/2, 0)
	modalStartX := max((windowWidth-lipgloss.Width(modalLines[0]))/2, 0)

	// Pad short backgrounds so the modal is never clipped
	for len(backgroundLines) < modalStartY+len(modalLines) {
		backgroundLines = append(backgroundLines, "")
	}

	for i, modalLine := range modalLines {
		row := modalStartY + i
		bgLine := backgroundLines[row]
		bgWidth := lipgloss.Width(bgLine)

		before := ansi.Truncate(bgLine, modalStartX, "")
		if pad := modalStartX - lipgloss.Width(before); pad > 0 {
			before += strings.Repeat(" ", pad)
		}

		var after string
		if endX := modalStartX + lipgloss.Width(modalLine); endX < bgWidth {
			after = ansi.TruncateLeft(bgLine, endX, "")
		}

		backgroundLines[row] = before + modalLine + after
	}

	return strings.Join(backgroundLines, "\n")
}

// ShowDeleteConfirmation asks before deleting a single history entry
func ShowDeleteConfirmation(entry store.Entry, index int) ShowModalMsg {
	return ShowModalMsg{
		Title: "Delete Entry?",
		Content: fmt.Sprintf("%d. %s\n%s",
			index, history.FormatDate(entry.Timestamp), history.Preview(entry.Text, 40)),
		Options: "[Y] Yes, delete    [N] No, cancel",
	}
}

// ShowClearConfirmation asks before clearing the whole history
func ShowClearConfirmation(count int) ShowModalMsg {
	return ShowModalMsg{
		Title:   "Clear History?",
		Content: fmt.Sprintf("All %d saved sessions will be removed.", count),
		Options: "[Y] Yes, clear all    [N] No, cancel",
	}
}

// ShowNewSessionConfirmation asks before discarding unsaved text
func ShowNewSessionConfirmation(words int) ShowModalMsg {
	return ShowModalMsg{
		Title:   "Start New Session?",
		Content: fmt.Sprintf("The current text (%d words) will be discarded.\nSave it first with ctrl+s.", words),
		Options: "[Y] Yes, start over    [N] No, keep writing",
	}
}

// ShowErrorModal reports a failure that needs acknowledging
func ShowErrorModal(title string, err error) ShowModalMsg {
	return ShowModalMsg{
		Title:   title,
		Content: err.Error(),
		Options: "Press any key to continue",
	}
}
