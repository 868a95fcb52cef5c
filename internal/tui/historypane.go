package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yiblet/freewrite/internal/history"
	"github.com/yiblet/freewrite/internal/store"
)

// HistoryPaneMsg represents messages that the history pane handles
type HistoryPaneMsg interface {
	isHistoryPaneMsg()
}

type NavigateUpMsg struct{}

func (NavigateUpMsg) isHistoryPaneMsg() {}

type NavigateDownMsg struct {
	MaxIndex int // Maximum valid index for bounds checking
}

func (NavigateDownMsg) isHistoryPaneMsg() {}

type GoToTopMsg struct{}

func (GoToTopMsg) isHistoryPaneMsg() {}

type GoToBottomMsg struct {
	MaxIndex int
}

func (GoToBottomMsg) isHistoryPaneMsg() {}

// ClampCursorMsg keeps the cursor valid after the entry list changed
type ClampCursorMsg struct {
	Count int
}

func (ClampCursorMsg) isHistoryPaneMsg() {}

type ResizeHistoryPaneMsg struct {
	Width  int
	Height int
}

func (ResizeHistoryPaneMsg) isHistoryPaneMsg() {}

// previewLines is how many wrapped preview lines each entry shows
const previewLines = 2

// linesPerEntry is the rendered height of one entry: date, preview and a gap
const linesPerEntry = previewLines + 2

// HistoryPaneModel holds the state for the history list
type HistoryPaneModel struct {
	Cursor int // Selected entry, newest-first index
	Offset int // First visible entry
	Width  int
	Height int
}

// NewHistoryPaneModel creates a history pane with the cursor on the newest entry
func NewHistoryPaneModel(width, height int) HistoryPaneModel {
	return HistoryPaneModel{
		Width:  width,
		Height: height,
	}
}

// Update applies a history pane message
func (h *HistoryPaneModel) Update(msg HistoryPaneMsg) {
	switch m := msg.(type) {
	case NavigateUpMsg:
		if h.Cursor > 0 {
			h.Cursor--
		}
	case NavigateDownMsg:
		if h.Cursor < m.MaxIndex {
			h.Cursor++
		}
	case GoToTopMsg:
		h.Cursor = 0
	case GoToBottomMsg:
		if m.MaxIndex >= 0 {
			h.Cursor = m.MaxIndex
		}
	case ClampCursorMsg:
		h.Cursor = min(h.Cursor, max(m.Count-1, 0))
	case ResizeHistoryPaneMsg:
		h.Width = m.Width
		h.Height = m.Height
	}
	h.scrollToCursor()
}

// visibleEntries is how many entries fit in the pane body
func (h *HistoryPaneModel) visibleEntries() int {
	// Borders and the title take four rows
	return max((h.Height-4)/linesPerEntry, 1)
}

func (h *HistoryPaneModel) scrollToCursor() {
	visible := h.visibleEntries()
	if h.Cursor < h.Offset {
		h.Offset = h.Cursor
	}
	if h.Cursor >= h.Offset+visible {
		h.Offset = h.Cursor - visible + 1
	}
	h.Offset = max(h.Offset, 0)
}

// HistoryPaneView renders the history pane as a pure function
func HistoryPaneView(model HistoryPaneModel, entries []store.Entry, focused bool) string {
	borderColor := "62"
	if focused {
		borderColor = "205"
	}

	innerWidth := max(model.Width-4, 1)
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(model.Width - 2).
		Height(max(model.Height-2, 1))

	var content strings.Builder
	title := fmt.Sprintf("History (%d/%d)", len(entries), store.MaxEntries)
	if focused {
		title = "● " + title
	}
	content.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n")

	if len(entries) == 0 {
		content.WriteString(lipgloss.NewStyle().Faint(true).Render("No saved sessions"))
		return style.Render(content.String())
	}

	end := min(model.Offset+model.visibleEntries(), len(entries))
	for i := model.Offset; i < end; i++ {
		entry := entries[i]
		header := fmt.Sprintf("%d. %s", i, history.FormatDate(entry.Timestamp))
		header = history.Truncate(header, innerWidth)

		headerStyle := lipgloss.NewStyle().Bold(true)
		if i == model.Cursor {
			headerStyle = headerStyle.
				Background(lipgloss.Color("62")).
				Foreground(lipgloss.Color("230")).
				Width(innerWidth)
		}
		content.WriteString(headerStyle.Render(header) + "\n")

		for _, line := range WrapPreview(entry.Text, innerWidth, previewLines) {
			content.WriteString(lipgloss.NewStyle().Faint(true).Render(line) + "\n")
		}
		content.WriteString("\n")
	}

	return style.Render(strings.TrimRight(content.String(), "\n"))
}
