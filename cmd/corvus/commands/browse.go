package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alecthomas/kingpin/v2"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zsh-ncursed/corvus/internal/app/browser"
	"github.com/zsh-ncursed/corvus/internal/config"
	"github.com/zsh-ncursed/corvus/internal/model"
	"github.com/zsh-ncursed/corvus/internal/storage/sqlite"
	"github.com/zsh-ncursed/corvus/internal/tui"
)

type BrowseCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	startDir string
}

// NewBrowseCommand returns the browse command, the interactive file browser.
func NewBrowseCommand(rootCmd *RootCommand, app *kingpin.Application) *BrowseCommand {
	c := &BrowseCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("browse", "Open the interactive file browser.").Default()
	c.Cmd.Arg("dir", "Directory to start in.").StringVar(&c.startDir)

	return c
}

func (c BrowseCommand) Name() string { return c.Cmd.FullCommand() }

func (c BrowseCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	startDir := c.startDir
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("could not get working directory: %w", err)
		}
		startDir = wd
	}

	// Load user configuration (missing file falls back to defaults).
	cfg, err := config.Load(c.rootCmd.ConfigPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	// Seed the config file with the defaults on first run so the user has
	// something to edit.
	if _, err := os.Stat(c.rootCmd.ConfigPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(c.rootCmd.ConfigPath), 0755); err != nil {
			logger.Warningf("Could not create config directory: %s", err)
		} else if err := config.Save(c.rootCmd.ConfigPath, *cfg); err != nil {
			logger.Warningf("Could not write default config: %s", err)
		}
	}

	// Initialize session storage (SQLite).
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: c.rootCmd.DBPath,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("could not create repository: %w", err)
	}
	defer repo.Close()

	// Initialize the task engine.
	manager, err := newTaskManager(logger)
	if err != nil {
		return err
	}

	// Create the browser state on top of the engine.
	browserSvc, err := browser.NewService(ctx, browser.ServiceConfig{
		Tasks:      manager,
		Repository: repo,
		StartDir:   startDir,
		Bookmarks:  configBookmarks(*cfg),
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create browser: %w", err)
	}

	tuiModel, err := tui.NewModel(ctx, tui.Config{
		Browser: browserSvc,
		Engine:  manager,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("could not create TUI: %w", err)
	}

	program := tea.NewProgram(tuiModel,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithOutput(c.rootCmd.Stdout),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI failed: %w", err)
	}

	return nil
}

// configBookmarks converts the config bookmark map into a stable list.
func configBookmarks(cfg config.Config) []model.Bookmark {
	names := make([]string, 0, len(cfg.Bookmarks))
	for name := range cfg.Bookmarks {
		names = append(names, name)
	}
	sort.Strings(names)

	bookmarks := make([]model.Bookmark, 0, len(names))
	for _, name := range names {
		bookmarks = append(bookmarks, model.Bookmark{Name: name, Path: cfg.Bookmarks[name]})
	}

	return bookmarks
}
