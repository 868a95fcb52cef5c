package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/yiblet/freewrite/internal/appfs"
	"github.com/yiblet/freewrite/internal/clipboard"
	"github.com/yiblet/freewrite/internal/clipboard/sysboard"
	"github.com/yiblet/freewrite/internal/config"
	"github.com/yiblet/freewrite/internal/history"
	"github.com/yiblet/freewrite/internal/logging"
	"github.com/yiblet/freewrite/internal/session"
	"github.com/yiblet/freewrite/internal/store"
	"github.com/yiblet/freewrite/internal/store/dbstore"
	"github.com/yiblet/freewrite/internal/store/mirror"
	"github.com/yiblet/freewrite/internal/tui"
)

// CLI handles the command-line interface
type CLI struct {
	settings  *config.Config
	configMgr *config.ConfigManager
	fs        *appfs.FS
	db        *dbstore.SQLiteStore
	history   *history.Manager
	clipboard clipboard.Clipboard
	logger    zerolog.Logger
	logCloser io.Closer

	in          io.Reader
	out         io.Writer
	runTUI      func(tea.Model) error
	historyOpts []history.Option
	primary     store.EntryStore
}

// Option customizes a CLI for embedding and tests
type Option func(*CLI)

// WithIO replaces stdin and stdout
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *CLI) {
		c.in = in
		c.out = out
	}
}

// WithClipboard replaces the system clipboard
func WithClipboard(cb clipboard.Clipboard) Option {
	return func(c *CLI) {
		c.clipboard = cb
	}
}

// WithEnvironment replaces the process environment used for FREEWRITE_* overrides
func WithEnvironment(environ map[string]string) Option {
	return func(c *CLI) {
		c.configMgr.WithEnvironment(environ)
	}
}

// WithHistoryOptions passes extra options to the history manager
func WithHistoryOptions(opts ...history.Option) Option {
	return func(c *CLI) {
		c.historyOpts = append(c.historyOpts, opts...)
	}
}

// WithPrimaryStore replaces the sqlite database as the history's primary store.
// The database still backs 'config db'.
func WithPrimaryStore(primary store.EntryStore) Option {
	return func(c *CLI) {
		c.primary = primary
	}
}

// WithTUIRunner replaces the function that runs the Bubble Tea program
func WithTUIRunner(run func(tea.Model) error) Option {
	return func(c *CLI) {
		c.runTUI = run
	}
}

// NewWithArgs creates a CLI configured from flags, environment and config file,
// in that order of precedence.
func NewWithArgs(args *Args, opts ...Option) (*CLI, error) {
	c := &CLI{
		in:     os.Stdin,
		out:    os.Stdout,
		runTUI: runProgram,
	}

	if args.ConfigPath != nil {
		c.configMgr = config.NewConfigManagerWithPath(*args.ConfigPath)
	} else {
		cm, err := config.NewConfigManager()
		if err != nil {
			return nil, err
		}
		c.configMgr = cm
	}

	for _, opt := range opts {
		opt(c)
	}

	settings, err := c.configMgr.Effective()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if args.DataDir != nil {
		settings.DataDir = *args.DataDir
	}
	if args.LogLevel != nil {
		settings.LogLevel = *args.LogLevel
	}
	c.settings = settings

	fsys, err := appfs.NewWithDataDir(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare data directory: %w", err)
	}
	c.fs = fsys

	logger, closer, err := logging.NewFile(fsys.Path(appfs.LogFile), settings.LogLevel)
	if err != nil {
		return nil, err
	}
	c.logger = logger
	c.logCloser = closer

	// An unusable database is not fatal; reads fall back to the mirror
	c.db = dbstore.OpenSQLiteStore(fsys.Path(appfs.DatabaseFile))
	if err := c.db.Init(); err != nil {
		c.logger.Warn().Err(err).Str("path", c.db.Path()).Msg("history database unavailable")
	}

	var primary store.EntryStore = c.db
	if c.primary != nil {
		primary = c.primary
	}

	historyOpts := append([]history.Option{history.WithLogger(c.logger)}, c.historyOpts...)
	c.history = history.NewManager(primary, mirror.NewFile(fsys), historyOpts...)

	if c.clipboard == nil {
		c.clipboard = sysboard.New()
	}

	c.logger.Debug().Str("data_dir", fsys.Root()).Str("log_level", settings.LogLevel).Msg("freewrite started")
	return c, nil
}

// Close releases the history store and the log file
func (c *CLI) Close() error {
	return errors.Join(c.history.Close(), c.logCloser.Close())
}

// DataDir returns the resolved data directory
func (c *CLI) DataDir() string {
	return c.fs.Root()
}

// Settings returns the effective configuration
func (c *CLI) Settings() config.Config {
	return *c.settings
}

// Execute runs the CLI command based on parsed arguments
func (c *CLI) Execute(args *Args) error {
	if err := args.Validate(); err != nil {
		return err
	}

	switch {
	case args.Write != nil:
		return c.executeWrite(args.Write)
	case args.History != nil:
		return c.executeHistory(args.History)
	case args.Save != nil:
		return c.executeSave(args.Save)
	case args.Config != nil:
		return c.executeConfig(args.Config)
	default:
		return c.executeWrite(&WriteCmd{})
	}
}

// executeWrite launches the editor
func (c *CLI) executeWrite(cmd *WriteCmd) error {
	duration := c.settings.TimerDuration()
	if cmd.Minutes != nil {
		duration = time.Duration(*cmd.Minutes) * time.Minute
	}

	sess := session.New(c.history, duration)
	model := tui.NewAppModel(sess, c.history, c.clipboard, c.logger)
	return c.runTUI(model)
}

func runProgram(model tea.Model) error {
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

// executeHistory handles 'freewrite history'
func (c *CLI) executeHistory(cmd *HistoryCmd) error {
	switch {
	case cmd.Show != nil:
		return c.executeHistoryShow(cmd.Show)
	case cmd.Delete != nil:
		return c.executeHistoryDelete(cmd.Delete)
	case cmd.Clear != nil:
		return c.executeHistoryClear(cmd.Clear)
	default:
		return c.executeHistoryList()
	}
}

// executeHistoryList prints index, date, timestamp and preview per entry
func (c *CLI) executeHistoryList() error {
	entries, err := c.history.List()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(c.out, "No saved sessions.")
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, "Start writing with:")
		fmt.Fprintln(c.out, "  freewrite")
		return nil
	}

	for i, e := range entries {
		fmt.Fprintf(c.out, "%d  %s  %d  %s\n",
			i, history.FormatDate(e.Timestamp), e.Timestamp, history.Preview(e.Text, 50))
	}
	return nil
}

// executeHistoryShow prints, copies or writes out one entry
func (c *CLI) executeHistoryShow(cmd *HistoryShowCmd) error {
	entry, err := c.history.Get(cmd.Index)
	if err != nil {
		return fmt.Errorf("failed to get entry at index %d: %w", cmd.Index, err)
	}

	switch {
	case cmd.Clipboard:
		n, err := clipboard.WriteString(c.clipboard, entry.Text)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "Copied %d bytes to clipboard: %s\n", n, history.Preview(entry.Text, 60))
		return nil
	case cmd.Output != nil:
		if err := os.WriteFile(*cmd.Output, []byte(entry.Text), 0644); err != nil {
			return fmt.Errorf("failed to write to file: %w", err)
		}
		fmt.Fprintf(c.out, "Written to %s: %s\n", *cmd.Output, history.Preview(entry.Text, 60))
		return nil
	default:
		text := entry.Text
		if !strings.HasSuffix(text, "\n") {
			text += "\n"
		}
		_, err := io.WriteString(c.out, text)
		return err
	}
}

// executeHistoryDelete removes one entry by timestamp. Presence is judged by
// the primary store's count, since a listing may come from the mirror.
func (c *CLI) executeHistoryDelete(cmd *HistoryDeleteCmd) error {
	before, err := c.history.Size()
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}

	if err := c.history.Delete(cmd.Timestamp); err != nil {
		return err
	}

	after, err := c.history.Size()
	if err != nil {
		return fmt.Errorf("failed to count history: %w", err)
	}

	if after == before {
		fmt.Fprintf(c.out, "No entry with timestamp %d.\n", cmd.Timestamp)
		return nil
	}
	fmt.Fprintf(c.out, "Deleted entry %d.\n", cmd.Timestamp)
	return nil
}

// executeHistoryClear deletes everything after confirmation
func (c *CLI) executeHistoryClear(cmd *HistoryClearCmd) error {
	entries, err := c.history.List()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(c.out, "History is already empty.")
		return nil
	}

	if !cmd.Force {
		fmt.Fprintf(c.out, "This will delete %d session(s) from history. Continue? [y/N]: ", len(entries))
		response, _ := bufio.NewReader(c.in).ReadString('\n')
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(c.out, "Cancelled.")
			return nil
		}
	}

	if err := c.history.ClearAll(); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Cleared %d session(s) from history.\n", len(entries))
	return nil
}

// executeSave appends stdin, a file or the clipboard as a new entry
func (c *CLI) executeSave(cmd *SaveCmd) error {
	var (
		text string
		err  error
	)

	switch {
	case cmd.Clipboard:
		text, err = clipboard.ReadString(c.clipboard)
	case cmd.File != nil:
		var data []byte
		data, err = os.ReadFile(*cmd.File)
		text = string(data)
	default:
		var data []byte
		data, err = io.ReadAll(c.in)
		text = string(data)
	}
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}

	entry := store.Entry{Text: text, Timestamp: c.history.Now()}
	if err := c.history.Append(entry); err != nil {
		if errors.Is(err, history.ErrEmptyText) {
			return err
		}
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintf(c.out, "Saved %d words (timestamp %d): %s\n",
		history.WordCount(text), entry.Timestamp, history.Preview(text, 50))
	return nil
}

// executeConfig handles 'freewrite config'
func (c *CLI) executeConfig(cmd *ConfigCmd) error {
	switch {
	case cmd.Get != nil:
		value, err := c.configMgr.Get(cmd.Get.Key)
		if err != nil {
			return fmt.Errorf("failed to get config value: %w", err)
		}
		fmt.Fprintln(c.out, value)
		return nil
	case cmd.Set != nil:
		if err := c.configMgr.Update(cmd.Set.Key, cmd.Set.Value); err != nil {
			return fmt.Errorf("failed to set config value: %w", err)
		}
		fmt.Fprintf(c.out, "Set %s = %s\n", cmd.Set.Key, cmd.Set.Value)
		return nil
	case cmd.List != nil:
		values, err := c.configMgr.List()
		if err != nil {
			return fmt.Errorf("failed to list config values: %w", err)
		}
		fmt.Fprintf(c.out, "Current configuration (%s):\n", c.configMgr.GetConfigPath())
		for _, key := range config.SortedKeys(values) {
			fmt.Fprintf(c.out, "  %s = %s\n", key, values[key])
		}
		return nil
	case cmd.DB != nil:
		values, err := c.db.Config().List()
		if err != nil {
			return fmt.Errorf("failed to read database settings: %w", err)
		}
		fmt.Fprintf(c.out, "Database settings (%s):\n", c.db.Path())
		for _, key := range config.SortedKeys(values) {
			fmt.Fprintf(c.out, "  %s = %s\n", key, values[key])
		}
		return nil
	default:
		return fmt.Errorf("no config subcommand specified")
	}
}
