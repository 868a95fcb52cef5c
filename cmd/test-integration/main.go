package main

import (
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/yiblet/freewrite/internal/clipboard/mockboard"
	"github.com/yiblet/freewrite/internal/history"
	"github.com/yiblet/freewrite/internal/session"
	"github.com/yiblet/freewrite/internal/store"
	"github.com/yiblet/freewrite/internal/store/memstore"
	"github.com/yiblet/freewrite/internal/store/mirror"
	"github.com/yiblet/freewrite/internal/tui"
)

const (
	width  = 120
	height = 20
)

func main() {
	fmt.Println("Testing TUI Layout")
	fmt.Println("==================")

	hm := history.NewManager(memstore.NewMemoryStore(), mirror.NewMemory())
	defer hm.Close()

	base := time.Now().Add(-time.Hour).UnixMilli()
	texts := []string{
		"A short entry.",
		"A much longer entry that keeps going well past the width of the history pane so the preview has to wrap onto a second line and then get cut off.",
		"Line one\nLine two\nLine three",
		"Unicode check: café, naïve, 日本語のテキスト",
	}
	for i, text := range texts {
		if err := hm.Append(store.Entry{Text: text, Timestamp: base + int64(i)*60_000}); err != nil {
			log.Fatalf("Error appending entry: %v", err)
		}
	}

	sess := session.New(hm, 15*time.Minute)
	model := tui.NewAppModel(sess, hm, mockboard.New(), zerolog.Nop())
	model.Update(tea.WindowSizeMsg{Width: width, Height: height})
	model.Update(tea.KeyMsg{Type: tea.KeyCtrlO})

	view := model.View()
	lines := strings.Split(view, "\n")

	fmt.Printf("Rendered TUI view (%d lines):\n", len(lines))
	fmt.Println(strings.Repeat("=", width))
	for i, line := range lines {
		fmt.Printf("Line %2d: %s\n", i, line)
	}
	fmt.Println(strings.Repeat("=", width))

	// Every line must fit the window
	overflow := 0
	for i, line := range lines {
		if w := lipgloss.Width(line); w > width {
			fmt.Printf("Line %d is %d columns wide\n", i, w)
			overflow++
		}
	}
	if overflow == 0 {
		fmt.Printf("All %d lines fit within %d columns\n", len(lines), width)
	}

	if len(lines) > height {
		fmt.Printf("View has %d lines, window has %d\n", len(lines), height)
	}

	// Open the delete confirmation over the layout
	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	overlay := model.View()
	if strings.Contains(overlay, "Delete") {
		fmt.Println("Delete confirmation modal is rendered")
	} else {
		fmt.Println("Delete confirmation modal is missing")
	}

	fmt.Println("\nLayout verification complete!")
}
