// Package tui is the interactive front end. It follows Bubble Tea's Elm
// architecture: the draw loop, the pending-task dispatch tick and the task
// event wait all interleave as commands of the same program.
package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zsh-ncursed/corvus/internal/app/browser"
	"github.com/zsh-ncursed/corvus/internal/log"
	"github.com/zsh-ncursed/corvus/internal/model"
	"github.com/zsh-ncursed/corvus/internal/printer"
)

// tickInterval paces the pending-task dispatch scan.
const tickInterval = 100 * time.Millisecond

// Engine is the task engine surface the TUI drives each frame.
type Engine interface {
	ProcessPendingTasks(ctx context.Context)
	WaitForEvent(ctx context.Context) bool
	GetTasks() []model.Task
}

// inputMode says what the input line currently collects.
type inputMode int

const (
	modeNormal inputMode = iota
	modeCreateFile
	modeCreateDir
	modeRename
	modeChmod
	modeChown
	modeArchive
	modeFilter
	modeBookmarkAdd
	modeBookmarkJump
	modeConfirmDelete
	modeConfirmPaste
	modeConfirmUnmount
)

// Messages.
type (
	tickMsg      struct{}
	taskEventMsg struct{ completed bool }
)

// Config is the configuration for the TUI model.
type Config struct {
	Browser *browser.Service
	Engine  Engine
	Logger  log.Logger
}

func (c *Config) defaults() error {
	if c.Browser == nil {
		return fmt.Errorf("browser is required")
	}
	if c.Engine == nil {
		return fmt.Errorf("engine is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "tui"})
	return nil
}

// Model is the Bubble Tea model for the file browser.
type Model struct {
	ctx     context.Context
	browser *browser.Service
	engine  Engine
	logger  log.Logger

	width  int
	height int
	ready  bool

	mode           inputMode
	input          string
	prompt         string
	archiveFormat  string
	status         string
	pendingUnmount string
}

// NewModel creates the TUI model. ctx bounds the background waits, when it
// ends the event arm stops rescheduling itself.
func NewModel(ctx context.Context, cfg Config) (*Model, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Model{
		ctx:           ctx,
		browser:       cfg.Browser,
		engine:        cfg.Engine,
		logger:        cfg.Logger,
		archiveFormat: model.ArchiveFormatZip,
	}, nil
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.waitForEvent())
}

// tick dispatches pending tasks once per interval.
func (m *Model) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// waitForEvent blocks on the progress channel as one arm of the program's
// event multiplexing, a true result means a task completed and the listing
// needs a refresh.
func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return taskEventMsg{completed: m.engine.WaitForEvent(m.ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		m.engine.ProcessPendingTasks(m.ctx)
		return m, m.tick()

	case taskEventMsg:
		if msg.completed {
			m.browser.Refresh()
		}
		if m.ctx.Err() != nil {
			return m, nil
		}
		return m, m.waitForEvent()

	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}

	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		if err := m.browser.SaveSession(m.ctx); err != nil {
			m.logger.Warningf("Could not save session: %s", err)
		}
		return m, tea.Quit

	case "j", "down":
		m.browser.MoveCursor(1)
	case "k", "up":
		m.browser.MoveCursor(-1)
	case "h", "left":
		m.browser.Ascend()
	case "l", "right", "enter":
		m.browser.Descend()

	case " ":
		m.browser.ToggleMark()
		m.browser.MoveCursor(1)
	case ".":
		m.browser.ToggleHidden()

	case "y":
		m.browser.YankSelection()
		m.status = "Yanked selection"
	case "x":
		m.browser.CutSelection()
		m.status = "Cut selection"
	case "p":
		if m.browser.ClipboardEmpty() {
			m.status = "Clipboard is empty"
			return m, nil
		}
		if conflicts := m.browser.PasteConflicts(); len(conflicts) > 0 {
			m.mode = modeConfirmPaste
			m.prompt = "A file with the same name already exists. Overwrite? (y/n)"
			return m, nil
		}
		m.browser.Paste()

	case "d":
		m.mode = modeConfirmDelete
		m.prompt = "Delete selection? (y/n)"

	case "u":
		mp, err := m.browser.CurrentMount()
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.pendingUnmount = mp.Path
		m.mode = modeConfirmUnmount
		m.prompt = fmt.Sprintf("Unmount %s? (y/n)", mp.Path)

	case "n":
		m.startInput(modeCreateFile, "New file name: ")
	case "N":
		m.startInput(modeCreateDir, "New directory name: ")
	case "r":
		m.startInput(modeRename, "Rename to: ")
	case "M":
		m.startInput(modeChmod, "New permissions (octal): ")
	case "O":
		m.startInput(modeChown, "New owner (user[:group]): ")
	case "a":
		m.startInput(modeArchive, fmt.Sprintf("Archive name (%s): ", m.archiveFormat))
	case "f":
		m.cycleArchiveFormat()

	case "/":
		m.startInput(modeFilter, "Filter: ")
	case "i":
		entry, size, err := m.browser.SelectionSize()
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.status = fmt.Sprintf("%s: %s", entry.Name, printer.FormatBytes(size))

	case "t":
		m.browser.NewTab()
	case "T", "tab":
		m.browser.NextTab()
	case "w":
		m.browser.CloseTab()

	case "b":
		m.startInput(modeBookmarkAdd, "Bookmark name: ")
	case "'":
		m.startInput(modeBookmarkJump, "Jump to bookmark: ")
	}

	return m, nil
}

func (m *Model) startInput(mode inputMode, prompt string) {
	m.mode = mode
	m.prompt = prompt
	m.input = ""
	m.status = ""
}

func (m *Model) cycleArchiveFormat() {
	switch m.archiveFormat {
	case model.ArchiveFormatZip:
		m.archiveFormat = model.ArchiveFormatTar
	case model.ArchiveFormatTar:
		m.archiveFormat = model.ArchiveFormatTarGz
	default:
		m.archiveFormat = model.ArchiveFormatZip
	}
	m.status = fmt.Sprintf("Archive format: %s", m.archiveFormat)
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Confirmation prompts are single key.
	switch m.mode {
	case modeConfirmDelete, modeConfirmPaste, modeConfirmUnmount:
		if s := msg.String(); s == "y" || s == "Y" {
			switch m.mode {
			case modeConfirmDelete:
				m.browser.DeleteSelection()
			case modeConfirmPaste:
				m.browser.Paste()
			case modeConfirmUnmount:
				m.browser.Unmount(m.pendingUnmount)
			}
		}
		m.pendingUnmount = ""
		m.resetInput()
		return m, nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.resetInput()
		return m, nil

	case tea.KeyEnter:
		m.commitInput()
		return m, nil

	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
		if msg.Type == tea.KeySpace {
			m.input += " "
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) commitInput() {
	var err error
	switch m.mode {
	case modeCreateFile:
		err = m.browser.CreateFile(m.input)
	case modeCreateDir:
		err = m.browser.CreateDirectory(m.input)
	case modeRename:
		err = m.browser.RenameSelection(m.input)
	case modeChmod:
		err = m.browser.ChmodSelection(m.input)
	case modeChown:
		err = m.browser.ChownSelection(m.input)
	case modeArchive:
		err = m.browser.ArchiveSelection(m.input, m.archiveFormat)
	case modeFilter:
		m.browser.FilterEntries(m.input)
	case modeBookmarkAdd:
		err = m.browser.AddBookmark(m.input)
	case modeBookmarkJump:
		err = m.browser.JumpToBookmark(m.input)
	}

	if err != nil {
		m.status = err.Error()
	}
	m.resetInput()
}

func (m *Model) resetInput() {
	m.mode = modeNormal
	m.prompt = ""
	m.input = ""
}
