package main

import (
	"fmt"
	"log"
	"time"

	"github.com/yiblet/freewrite/internal/history"
	"github.com/yiblet/freewrite/internal/store"
	"github.com/yiblet/freewrite/internal/store/memstore"
	"github.com/yiblet/freewrite/internal/store/mirror"
)

func main() {
	fmt.Println("freewrite History Demo")

	// In-memory primary and mirror with a clock that advances a second per entry
	primary := memstore.NewMemoryStore()
	backup := mirror.NewMemory()
	clock := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	hm := history.NewManager(primary, backup, history.WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	defer hm.Close()

	sessions := []string{
		"Morning pages. Slept badly, but the coffee is good.",
		"I keep circling back to the same idea about the garden.",
		"Nothing to say today, so I will describe the window.",
		"A list of things I forgot to do yesterday.",
		"The train was late again. Wrote this on the platform.",
		"Notes on the book: the second chapter drags.",
		"Tried writing without stopping for fifteen minutes.",
		"Grocery list disguised as a poem.",
		"Dreamt about the old apartment.",
		"Planning the week. Too many meetings.",
		"Eleventh entry: this one pushes the first out.",
		"Twelfth entry: and this one pushes the second out.",
	}

	fmt.Printf("Appending %d sessions (history keeps %d):\n", len(sessions), store.MaxEntries)
	for i, text := range sessions {
		entry := store.Entry{Text: text, Timestamp: hm.Now()}
		if err := hm.Append(entry); err != nil {
			log.Printf("Failed to append session %d: %v", i+1, err)
			continue
		}
		fmt.Printf("%2d. %s\n", i+1, history.Preview(text, 50))
	}

	entries, err := hm.List()
	if err != nil {
		log.Fatalf("Failed to list history: %v", err)
	}
	printEntries("History (newest first)", entries)

	// Blank text is rejected before touching storage
	if err := hm.Append(store.Entry{Text: "   ", Timestamp: hm.Now()}); err != nil {
		fmt.Printf("\nBlank session rejected: %v\n", err)
	}

	// Delete the oldest surviving entry
	oldest := entries[len(entries)-1]
	if err := hm.Delete(oldest.Timestamp); err != nil {
		log.Fatalf("Failed to delete entry: %v", err)
	}
	fmt.Printf("\nDeleted entry from %s\n", history.FormatDate(oldest.Timestamp))

	// Simulate the primary store failing: reads come from the mirror
	primary.FailOn(memstore.OpList, nil)
	entries, err = hm.List()
	if err != nil {
		log.Fatalf("Mirror fallback failed: %v", err)
	}
	printEntries("History read from mirror (primary unavailable)", entries)
	primary.Heal()

	if err := hm.ClearAll(); err != nil {
		log.Fatalf("Failed to clear history: %v", err)
	}
	size, err := hm.Size()
	if err != nil {
		log.Fatalf("Failed to count history: %v", err)
	}
	fmt.Printf("\nAfter clear: %d entries, mirror present: %t\n", size, backup.Present())
}

func printEntries(title string, entries []store.Entry) {
	fmt.Printf("\n%s: %d entries\n", title, len(entries))
	for i, entry := range entries {
		fmt.Printf("%d. [%s] %s\n", i, entry.Time().Format("15:04:05"), history.Preview(entry.Text, 50))
	}
}
