package cli

import (
	"fmt"

	"github.com/yiblet/freewrite/internal/config"
	"github.com/yiblet/freewrite/internal/logging"
)

// Args represents the top-level command structure
type Args struct {
	Write   *WriteCmd   `arg:"subcommand:write" help:"Open the writing editor (default)"`
	History *HistoryCmd `arg:"subcommand:history" help:"List, show and delete saved sessions"`
	Save    *SaveCmd    `arg:"subcommand:save" help:"Save stdin, a file or the clipboard as a session"`
	Config  *ConfigCmd  `arg:"subcommand:config" help:"Manage configuration"`

	DataDir    *string `arg:"--data-dir" help:"Directory for the history database, mirror and log"`
	ConfigPath *string `arg:"--config" help:"Path to the config file (default: ~/.config/freewrite/config.yaml)"`
	LogLevel   *string `arg:"--log-level" help:"Log level: debug, info, warn or error"`
}

// WriteCmd represents 'freewrite write'
type WriteCmd struct {
	Minutes *int `arg:"-m,--minutes" help:"Timer length in minutes (default from config)"`
}

// HistoryCmd groups the history subcommands. With none given it lists.
type HistoryCmd struct {
	List   *HistoryListCmd   `arg:"subcommand:list" help:"List saved sessions newest first"`
	Show   *HistoryShowCmd   `arg:"subcommand:show" help:"Print a saved session"`
	Delete *HistoryDeleteCmd `arg:"subcommand:delete" help:"Delete a saved session by timestamp"`
	Clear  *HistoryClearCmd  `arg:"subcommand:clear" help:"Delete every saved session"`
}

type HistoryListCmd struct{}

// HistoryShowCmd represents 'freewrite history show'
type HistoryShowCmd struct {
	Index     int     `arg:"positional,required" help:"Index from 'history list' (0=newest)"`
	Clipboard bool    `arg:"-c,--clipboard" help:"Copy to clipboard instead of printing"`
	Output    *string `arg:"-o,--output" help:"Write to a file instead of printing"`
}

// HistoryDeleteCmd represents 'freewrite history delete'
type HistoryDeleteCmd struct {
	Timestamp int64 `arg:"positional,required" help:"Entry timestamp in milliseconds, as shown by 'history list'"`
}

// HistoryClearCmd represents 'freewrite history clear'
type HistoryClearCmd struct {
	Force bool `arg:"-f,--force" help:"Skip the confirmation prompt"`
}

// SaveCmd represents 'freewrite save'
type SaveCmd struct {
	File      *string `arg:"positional" help:"File to read from (default: stdin)"`
	Clipboard bool    `arg:"-c,--clipboard" help:"Read from clipboard"`
}

// ConfigCmd represents 'freewrite config'
type ConfigCmd struct {
	Get  *ConfigGetCmd  `arg:"subcommand:get" help:"Get a configuration value"`
	Set  *ConfigSetCmd  `arg:"subcommand:set" help:"Set a configuration value"`
	List *ConfigListCmd `arg:"subcommand:list" help:"List all configuration values"`
	DB   *ConfigDBCmd   `arg:"subcommand:db" help:"Show settings stored in the history database"`
}

type ConfigGetCmd struct {
	Key string `arg:"positional,required" help:"Configuration key (timer_minutes, data_dir, log_level)"`
}

type ConfigSetCmd struct {
	Key   string `arg:"positional,required" help:"Configuration key (timer_minutes, data_dir, log_level)"`
	Value string `arg:"positional,required" help:"Configuration value"`
}

type ConfigListCmd struct{}

type ConfigDBCmd struct{}

// Description returns the program description
func (Args) Description() string {
	return "freewrite - distraction-free timed writing in the terminal"
}

// Version returns the program version
func (Args) Version() string {
	return "freewrite 0.1.0"
}

// Epilogue returns additional help text
func (Args) Epilogue() string {
	return `Examples:
  freewrite                          # Start writing with the configured timer
  freewrite write -m 5               # Five minute session
  freewrite history list             # Saved sessions, newest first
  freewrite history show 0 -c        # Copy the newest session to the clipboard
  freewrite history delete 1700000000000
  cat notes.txt | freewrite save     # Save stdin as a session
  freewrite config set timer_minutes 20

Only the 10 most recent sessions are kept.`
}

// Validate performs validation on the parsed arguments
func (args *Args) Validate() error {
	if args.LogLevel != nil {
		if _, err := logging.ParseLevel(*args.LogLevel); err != nil {
			return err
		}
	}

	switch {
	case args.Write != nil:
		return args.Write.Validate()
	case args.History != nil:
		return args.History.Validate()
	case args.Save != nil:
		return args.Save.Validate()
	}
	return nil
}

// Validate validates write command arguments
func (w *WriteCmd) Validate() error {
	if w.Minutes != nil && (*w.Minutes < 1 || *w.Minutes > config.MaxTimerMinutes) {
		return fmt.Errorf("minutes must be between 1 and %d", config.MaxTimerMinutes)
	}
	return nil
}

// Validate validates history command arguments
func (h *HistoryCmd) Validate() error {
	if h.Show != nil {
		if h.Show.Index < 0 {
			return fmt.Errorf("index must be non-negative")
		}
		if h.Show.Clipboard && h.Show.Output != nil {
			return fmt.Errorf("cannot specify both clipboard and file output")
		}
	}
	if h.Delete != nil && h.Delete.Timestamp <= 0 {
		return fmt.Errorf("timestamp must be positive")
	}
	return nil
}

// Validate validates save command arguments
func (s *SaveCmd) Validate() error {
	if s.File != nil && s.Clipboard {
		return fmt.Errorf("cannot specify both file and clipboard input")
	}
	return nil
}
