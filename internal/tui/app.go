package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/yiblet/freewrite/internal/clipboard"
	"github.com/yiblet/freewrite/internal/history"
	"github.com/yiblet/freewrite/internal/session"
	"github.com/yiblet/freewrite/internal/store"
)

// UIMode represents the current modal state of the application
type UIMode int

const (
	EditMode UIMode = iota
	HistoryMode
	ConfirmMode
	ErrorMode
)

// ConfirmAction is the operation a confirmation modal guards
type ConfirmAction int

const (
	ConfirmNone ConfirmAction = iota
	ConfirmDelete
	ConfirmClear
	ConfirmNewSession
)

// FlashDuration is how long status notifications stay visible
const FlashDuration = 2 * time.Second

// History is the part of the history manager the UI needs
type History interface {
	List() ([]store.Entry, error)
	Delete(timestamp int64) error
	ClearAll() error
}

type tickMsg struct{}

type flashExpiredMsg struct {
	seq int
}

// AppModel is the root Bubble Tea model
type AppModel struct {
	Width        int
	Height       int
	HistoryWidth int
	CurrentMode  UIMode
	Confirm      ConfirmAction
	ShowHistory  bool

	Session     *session.Session
	History     History
	Clipboard   clipboard.Clipboard
	Editor      textarea.Model
	HistoryPane HistoryPaneModel
	Modal       ModalModel
	Entries     []store.Entry

	// Timestamp of the entry the open delete confirmation refers to
	pendingDelete int64

	FlashMessage string
	FlashIsError bool
	FlashExpiry  time.Time
	flashSeq     int

	logger zerolog.Logger
}

// NewAppModel creates the app around a writing session and its history
func NewAppModel(sess *session.Session, hist History, cb clipboard.Clipboard, logger zerolog.Logger) *AppModel {
	editor := textarea.New()
	editor.Placeholder = sess.Placeholder()
	editor.ShowLineNumbers = false
	editor.Prompt = ""
	editor.CharLimit = 0
	editor.MaxHeight = 0
	editor.SetValue(sess.Text())
	editor.Focus()

	a := &AppModel{
		Width:       80,
		Height:      24,
		CurrentMode: EditMode,
		Session:     sess,
		History:     hist,
		Clipboard:   cb,
		Editor:      editor,
		HistoryPane: NewHistoryPaneModel(30, 24),
		Modal:       NewModalModel(),
		logger:      logger,
	}
	a.layout()
	if err := a.reloadEntries(); err != nil {
		a.setFlashMessage(fmt.Sprintf("Failed to load history: %v", err), true)
	}
	return a
}

// Init starts the cursor blink and the one second timer tick
func (a *AppModel) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, tickCmd())
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// Update handles app-level messages and routes to the sub-models
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.Width = m.Width
		a.Height = m.Height
		a.layout()
		return a, nil
	case tickMsg:
		return a, tea.Batch(tickCmd(), a.handleTick())
	case flashExpiredMsg:
		if m.seq == a.flashSeq {
			a.FlashMessage = ""
			a.FlashIsError = false
			a.FlashExpiry = time.Time{}
		}
		return a, nil
	case tea.KeyMsg:
		return a.handleKeyPress(m)
	}

	// Cursor blink and other editor internals
	var cmd tea.Cmd
	a.Editor, cmd = a.Editor.Update(msg)
	return a, cmd
}

// layout sizes the editor and history pane for the current window
func (a *AppModel) layout() {
	a.Width = max(a.Width, 30)
	a.Height = max(a.Height, 8)

	a.HistoryWidth = 0
	if a.ShowHistory {
		a.HistoryWidth = max(min(36, a.Width/3), 20)
	}

	// One row for the status line
	bodyHeight := a.Height - 1
	a.HistoryPane.Update(ResizeHistoryPaneMsg{Width: a.HistoryWidth, Height: bodyHeight})

	editorWidth := a.Width - a.HistoryWidth - 2
	a.Editor.SetWidth(max(editorWidth, 10))
	a.Editor.SetHeight(max(bodyHeight-1, 1))
}

// handleTick advances the session timer and reports expiry
func (a *AppModel) handleTick() tea.Cmd {
	a.syncText()

	switch a.Session.Tick() {
	case session.AutoSaved:
		cmd := a.flashAfterReload("Time's up! Session saved to history")
		if a.Confirm == ConfirmClear {
			// An open clear confirmation shows the current count
			a.Modal.Update(ShowClearConfirmation(len(a.Entries)))
		}
		return cmd
	case session.AutoSaveFailed:
		a.logger.Error().Err(a.Session.LastError()).Msg("autosave failed")
		return a.setFlashMessage(fmt.Sprintf("Time's up! Autosave failed: %v", a.Session.LastError()), true)
	case session.Expired:
		return a.setFlashMessage("Time's up!", false)
	}
	return nil
}

// handleKeyPress dispatches on the current mode first
func (a *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch key {
	case "ctrl+c", "ctrl+q":
		return a, tea.Quit
	}

	switch a.CurrentMode {
	case ConfirmMode:
		return a.handleConfirmModeKeys(key)
	case ErrorMode:
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = a.returnMode()
		return a, nil
	case HistoryMode:
		return a.handleHistoryModeKeys(key)
	default:
		return a.handleEditModeKeys(msg)
	}
}

// handleEditModeKeys processes keys while the editor has focus
func (a *AppModel) handleEditModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+s":
		return a, a.save()
	case "ctrl+n":
		return a, a.newSession()
	case "ctrl+t":
		a.Session.Toggle()
		return a, nil
	case "ctrl+r":
		a.Session.Reset()
		return a, a.setFlashMessage("Timer reset to "+a.Session.FormatRemaining(), false)
	case "ctrl+o":
		return a, a.openHistory()
	case "ctrl+y":
		a.syncText()
		return a, a.copyText(a.Session.Text())
	}

	var cmd tea.Cmd
	a.Editor, cmd = a.Editor.Update(msg)
	return a, cmd
}

// handleHistoryModeKeys processes keys while the history pane has focus
func (a *AppModel) handleHistoryModeKeys(key string) (tea.Model, tea.Cmd) {
	maxIndex := len(a.Entries) - 1

	switch key {
	case "esc", "ctrl+o", "tab":
		a.closeHistory()
	case "up", "k":
		a.HistoryPane.Update(NavigateUpMsg{})
	case "down", "j":
		a.HistoryPane.Update(NavigateDownMsg{MaxIndex: maxIndex})
	case "g", "home":
		a.HistoryPane.Update(GoToTopMsg{})
	case "G", "end":
		a.HistoryPane.Update(GoToBottomMsg{MaxIndex: maxIndex})
	case "enter":
		entry, ok := a.selectedEntry()
		if !ok {
			return a, nil
		}
		a.Session.Load(entry)
		a.Editor.SetValue(entry.Text)
		a.closeHistory()
		return a, a.setFlashMessage("Loaded session from "+history.FormatDate(entry.Timestamp), false)
	case "c":
		entry, ok := a.selectedEntry()
		if !ok {
			return a, a.setFlashMessage("No entry selected", true)
		}
		return a, a.copyText(entry.Text)
	case "d":
		if entry, ok := a.selectedEntry(); ok {
			a.pendingDelete = entry.Timestamp
			a.Confirm = ConfirmDelete
			a.CurrentMode = ConfirmMode
			a.Modal.Update(ShowDeleteConfirmation(entry, a.HistoryPane.Cursor))
		}
	case "D":
		if len(a.Entries) > 0 {
			a.Confirm = ConfirmClear
			a.CurrentMode = ConfirmMode
			a.Modal.Update(ShowClearConfirmation(len(a.Entries)))
		}
	case "ctrl+s":
		return a, a.save()
	case "ctrl+t":
		a.Session.Toggle()
	}

	return a, nil
}

// handleConfirmModeKeys resolves the active confirmation modal
func (a *AppModel) handleConfirmModeKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		action := a.Confirm
		a.dismissConfirm()
		return a, a.runConfirmed(action)
	case "n", "N", "esc":
		a.dismissConfirm()
	}
	return a, nil
}

func (a *AppModel) dismissConfirm() {
	a.Modal.Update(HideModalMsg{})
	a.Confirm = ConfirmNone
	a.CurrentMode = a.returnMode()
}

// returnMode is the mode to go back to once a modal closes
func (a *AppModel) returnMode() UIMode {
	if a.ShowHistory {
		return HistoryMode
	}
	return EditMode
}

func (a *AppModel) runConfirmed(action ConfirmAction) tea.Cmd {
	switch action {
	case ConfirmDelete:
		timestamp := a.pendingDelete
		a.pendingDelete = 0
		if timestamp == 0 {
			return nil
		}
		if err := a.History.Delete(timestamp); err != nil {
			a.logger.Error().Err(err).Int64("timestamp", timestamp).Msg("failed to delete entry")
			a.showError("Delete Failed", err)
			return nil
		}
		return a.flashAfterReload("Entry deleted")
	case ConfirmClear:
		if err := a.History.ClearAll(); err != nil {
			a.logger.Error().Err(err).Msg("failed to clear history")
			_ = a.reloadEntries()
			a.showError("Clear Failed", err)
			return nil
		}
		return a.flashAfterReload("History cleared")
	case ConfirmNewSession:
		a.Session.ConfirmNewSession()
		a.resetEditor()
		return a.setFlashMessage("New session started", false)
	}
	return nil
}

func (a *AppModel) showError(title string, err error) {
	a.Modal.Update(ShowErrorModal(title, err))
	a.CurrentMode = ErrorMode
}

// save stores the current buffer as a new history entry
func (a *AppModel) save() tea.Cmd {
	a.syncText()

	entry, err := a.Session.Save()
	switch {
	case errors.Is(err, history.ErrEmptyText):
		return a.setFlashMessage("Nothing to save", true)
	case err != nil:
		a.logger.Error().Err(err).Msg("failed to save session")
		message := fmt.Sprintf("Save failed: %v", err)
		// The mirror may still have taken the entry
		if loadErr := a.reloadEntries(); loadErr != nil {
			message += fmt.Sprintf("; history failed to load: %v", loadErr)
		}
		return a.setFlashMessage(message, true)
	}

	return a.flashAfterReload(fmt.Sprintf("Saved %d words to history", history.WordCount(entry.Text)))
}

// newSession starts over, asking first when there is text to lose
func (a *AppModel) newSession() tea.Cmd {
	a.syncText()

	if a.Session.NewSession() {
		a.Confirm = ConfirmNewSession
		a.CurrentMode = ConfirmMode
		a.Modal.Update(ShowNewSessionConfirmation(history.WordCount(a.Session.Text())))
		return nil
	}

	a.resetEditor()
	return a.setFlashMessage("New session started", false)
}

func (a *AppModel) resetEditor() {
	a.Editor.Reset()
	a.Editor.Placeholder = a.Session.Placeholder()
}

func (a *AppModel) openHistory() tea.Cmd {
	a.ShowHistory = true
	a.CurrentMode = HistoryMode
	a.Editor.Blur()
	a.layout()
	if err := a.reloadEntries(); err != nil {
		return a.setFlashMessage(fmt.Sprintf("Failed to load history: %v", err), true)
	}
	return nil
}

func (a *AppModel) closeHistory() {
	a.ShowHistory = false
	a.CurrentMode = EditMode
	a.Editor.Focus()
	a.layout()
}

// syncText copies the editor buffer into the session
func (a *AppModel) syncText() {
	a.Session.SetText(a.Editor.Value())
}

// reloadEntries re-reads the history log. Errors leave an empty list.
func (a *AppModel) reloadEntries() error {
	entries, err := a.History.List()
	a.Entries = entries
	a.HistoryPane.Update(ClampCursorMsg{Count: len(entries)})
	if err != nil {
		a.logger.Error().Err(err).Msg("failed to load history")
	}
	return err
}

// flashAfterReload re-reads the history and flashes message, or the load
// error alongside it when the history could not be read.
func (a *AppModel) flashAfterReload(message string) tea.Cmd {
	if err := a.reloadEntries(); err != nil {
		return a.setFlashMessage(fmt.Sprintf("%s, but history failed to load: %v", message, err), true)
	}
	return a.setFlashMessage(message, false)
}

func (a *AppModel) selectedEntry() (store.Entry, bool) {
	if a.HistoryPane.Cursor < 0 || a.HistoryPane.Cursor >= len(a.Entries) {
		return store.Entry{}, false
	}
	return a.Entries[a.HistoryPane.Cursor], true
}

// copyText writes text to the clipboard and flashes the outcome
func (a *AppModel) copyText(text string) tea.Cmd {
	if a.Clipboard == nil {
		return a.setFlashMessage("Clipboard not available", true)
	}
	if history.Sanitize(text) == "" {
		return a.setFlashMessage("Nothing to copy", true)
	}

	n, err := clipboard.WriteString(a.Clipboard, text)
	if err != nil {
		a.logger.Warn().Err(err).Msg("clipboard write failed")
		return a.setFlashMessage(fmt.Sprintf("Copy failed: %v", err), true)
	}
	return a.setFlashMessage(fmt.Sprintf("Copied %d bytes to clipboard", n), false)
}

// setFlashMessage shows a status notification for FlashDuration
func (a *AppModel) setFlashMessage(message string, isError bool) tea.Cmd {
	a.flashSeq++
	seq := a.flashSeq
	a.FlashMessage = message
	a.FlashIsError = isError
	a.FlashExpiry = time.Now().Add(FlashDuration)
	return tea.Tick(FlashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

// View renders the whole screen
func (a *AppModel) View() string {
	return AppView(a)
}

// AppView renders the application
func AppView(a *AppModel) string {
	editor := lipgloss.NewStyle().Padding(0, 1).Render(a.Editor.View())

	body := editor
	if a.ShowHistory {
		pane := HistoryPaneView(a.HistoryPane, a.Entries, a.CurrentMode == HistoryMode)
		body = lipgloss.JoinHorizontal(lipgloss.Top, pane, editor)
	}

	view := lipgloss.NewStyle().Height(a.Height-1).MaxHeight(a.Height-1).Render(body) +
		"\n" + renderStatusLine(a)

	if a.Modal.Active {
		return ModalView(a.Modal, view, a.Width, a.Height)
	}
	return view
}

// renderStatusLine renders the timer, word count and either a flash message or key hints
func renderStatusLine(a *AppModel) string {
	state := "paused"
	switch {
	case a.Session.Running():
		state = "running"
	case a.Session.Remaining() == 0:
		state = "time's up"
	}

	timer := lipgloss.NewStyle().Bold(true).Render(a.Session.FormatRemaining())
	left := fmt.Sprintf(" %s %s · %d words ", timer, state, history.WordCount(a.Editor.Value()))

	right := lipgloss.NewStyle().Faint(true).Render(statusHints(a.CurrentMode))
	if a.FlashMessage != "" && time.Now().Before(a.FlashExpiry) {
		color := lipgloss.Color("10")
		if a.FlashIsError {
			color = lipgloss.Color("9")
		}
		right = lipgloss.NewStyle().Foreground(color).Render(a.FlashMessage)
	}

	return lipgloss.NewStyle().Width(a.Width).MaxHeight(1).Render(left + "│ " + right)
}

func statusHints(mode UIMode) string {
	switch mode {
	case HistoryMode:
		return "enter load · d delete · D clear · c copy · esc back"
	case ConfirmMode:
		return "y confirm · n cancel"
	case ErrorMode:
		return "press any key"
	default:
		return "^s save · ^n new · ^t timer · ^r reset · ^o history · ^y copy · ^q quit"
	}
}
