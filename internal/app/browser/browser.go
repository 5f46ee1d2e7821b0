// Package browser holds the interactive application state: tabs, listings,
// marks, bookmarks and the operations that turn user intent into background
// tasks.
package browser

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zsh-ncursed/corvus/internal/clipboard"
	"github.com/zsh-ncursed/corvus/internal/fsinfo"
	"github.com/zsh-ncursed/corvus/internal/log"
	"github.com/zsh-ncursed/corvus/internal/model"
	"github.com/zsh-ncursed/corvus/internal/storage"
)

// TaskManager is the boundary the browser submits filesystem mutations to.
type TaskManager interface {
	AddTask(kind model.TaskKind, description string) string
	GetTasks() []model.Task
}

// Tab is one independent browsing location.
type Tab struct {
	ID         int
	CurrentDir string
	Entries    []model.Entry
	Cursor     int
	Marked     map[string]bool
	// Filter narrows Entries to names containing it, case insensitive.
	Filter string
}

// ServiceConfig is the configuration for the browser service.
type ServiceConfig struct {
	Tasks      TaskManager
	Repository storage.Repository
	Clipboard  *clipboard.Clipboard
	// StartDir is the initial directory when no session is restored.
	StartDir string
	// Bookmarks are seeded from the config file, session bookmarks with the
	// same name win.
	Bookmarks []model.Bookmark
	Logger    log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Tasks == nil {
		return fmt.Errorf("task manager is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Clipboard == nil {
		c.Clipboard = clipboard.New()
	}
	if c.StartDir == "" {
		return fmt.Errorf("start directory is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Browser"})
	return nil
}

// Service is the browser application state. All accessors return copies, the
// internal state only changes through its methods.
type Service struct {
	mu         sync.Mutex
	tabs       []*Tab
	activeTab  int
	nextTabID  int
	showTabs   bool
	showHidden bool
	bookmarks  []model.Bookmark

	tasks     TaskManager
	repo      storage.Repository
	clipboard *clipboard.Clipboard
	logger    log.Logger
}

// NewService creates the browser, restoring the saved session when there is
// one.
func NewService(ctx context.Context, cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Service{
		tasks:     cfg.Tasks,
		repo:      cfg.Repository,
		clipboard: cfg.Clipboard,
		logger:    cfg.Logger,
	}

	session, err := cfg.Repository.GetSession(ctx)
	switch {
	case errors.Is(err, model.ErrNotFound):
		s.tabs = []*Tab{{ID: 0, CurrentDir: cfg.StartDir, Marked: map[string]bool{}}}
		s.nextTabID = 1
	case err != nil:
		return nil, fmt.Errorf("could not load session: %w", err)
	default:
		if verr := session.Validate(); verr != nil {
			s.logger.Warningf("Ignoring invalid saved session: %s", verr)
			s.tabs = []*Tab{{ID: 0, CurrentDir: cfg.StartDir, Marked: map[string]bool{}}}
			s.nextTabID = 1
		} else {
			s.applySession(*session)
		}
	}

	for _, b := range cfg.Bookmarks {
		if !s.hasBookmark(b.Name) {
			s.bookmarks = append(s.bookmarks, b)
		}
	}

	for _, t := range s.tabs {
		s.refreshTab(t)
	}

	return s, nil
}

func (s *Service) applySession(session model.SessionState) {
	s.tabs = make([]*Tab, 0, len(session.Tabs))
	for _, t := range session.Tabs {
		s.tabs = append(s.tabs, &Tab{ID: t.ID, CurrentDir: t.CurrentDir, Marked: map[string]bool{}})
		if t.ID >= s.nextTabID {
			s.nextTabID = t.ID + 1
		}
	}
	s.activeTab = session.ActiveTabIndex
	if s.activeTab >= len(s.tabs) {
		s.activeTab = len(s.tabs) - 1
	}
	s.showTabs = session.ShowTabs
	s.showHidden = session.ShowHiddenFiles
	s.bookmarks = append([]model.Bookmark(nil), session.Bookmarks...)
}

func (s *Service) hasBookmark(name string) bool {
	for _, b := range s.bookmarks {
		if b.Name == name {
			return true
		}
	}
	return false
}

// SaveSession persists the current browsing state.
func (s *Service) SaveSession(ctx context.Context) error {
	s.mu.Lock()
	session := model.SessionState{
		ActiveTabIndex:  s.activeTab,
		ShowTabs:        s.showTabs,
		ShowHiddenFiles: s.showHidden,
		Bookmarks:       append([]model.Bookmark(nil), s.bookmarks...),
	}
	for _, t := range s.tabs {
		session.Tabs = append(session.Tabs, model.TabState{ID: t.ID, CurrentDir: t.CurrentDir})
	}
	s.mu.Unlock()

	if err := s.repo.SaveSession(ctx, session); err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}

	return nil
}

// refreshTab re-reads the tab's directory listing. A listing failure leaves
// the entries empty rather than failing the tab.
func (s *Service) refreshTab(t *Tab) {
	entries, err := fsinfo.ReadEntries(t.CurrentDir, s.showHidden)
	if err != nil {
		s.logger.Warningf("Could not list %s: %s", t.CurrentDir, err)
		t.Entries = nil
		t.Cursor = 0
		return
	}

	if t.Filter != "" {
		filter := strings.ToLower(t.Filter)
		filtered := entries[:0]
		for _, e := range entries {
			if strings.Contains(strings.ToLower(e.Name), filter) {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	t.Entries = entries
	if t.Cursor >= len(entries) {
		t.Cursor = max(0, len(entries)-1)
	}
}

// FilterEntries narrows the active tab's listing to entries whose name
// contains query, case insensitive. An empty query restores the full listing.
// The filter survives refreshes and clears on navigation.
func (s *Service) FilterEntries(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tabs[s.activeTab]
	t.Filter = query
	t.Cursor = 0
	s.refreshTab(t)
}

// Refresh re-reads the active tab's listing. Called after a task completes.
func (s *Service) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTab(s.tabs[s.activeTab])
}

// Tabs returns copies of all tabs.
func (s *Service) Tabs() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()

	tabs := make([]Tab, 0, len(s.tabs))
	for _, t := range s.tabs {
		tabs = append(tabs, s.copyTab(t))
	}
	return tabs
}

// ActiveTab returns a copy of the active tab.
func (s *Service) ActiveTab() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyTab(s.tabs[s.activeTab])
}

// ActiveTabIndex returns the index of the active tab.
func (s *Service) ActiveTabIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTab
}

func (s *Service) copyTab(t *Tab) Tab {
	tabCopy := *t
	tabCopy.Entries = append([]model.Entry(nil), t.Entries...)
	tabCopy.Marked = make(map[string]bool, len(t.Marked))
	for k, v := range t.Marked {
		tabCopy.Marked[k] = v
	}
	return tabCopy
}

// Navigate points the active tab at dir and reloads its listing.
func (s *Service) Navigate(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tabs[s.activeTab]
	t.CurrentDir = dir
	t.Cursor = 0
	t.Marked = map[string]bool{}
	t.Filter = ""
	s.refreshTab(t)
}

// Ascend moves the active tab to its parent directory.
func (s *Service) Ascend() {
	s.mu.Lock()
	parent := filepath.Dir(s.tabs[s.activeTab].CurrentDir)
	s.mu.Unlock()
	s.Navigate(parent)
}

// Descend enters the selected entry when it is a directory.
func (s *Service) Descend() {
	entry, ok := s.selectedEntry()
	if !ok || !entry.IsDir {
		return
	}
	s.Navigate(entry.Path)
}

// MoveCursor moves the selection by delta, clamped to the listing.
func (s *Service) MoveCursor(delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tabs[s.activeTab]
	t.Cursor += delta
	if t.Cursor < 0 {
		t.Cursor = 0
	}
	if t.Cursor >= len(t.Entries) {
		t.Cursor = max(0, len(t.Entries)-1)
	}
}

// ToggleMark marks or unmarks the selected entry.
func (s *Service) ToggleMark() {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tabs[s.activeTab]
	if t.Cursor >= len(t.Entries) {
		return
	}
	path := t.Entries[t.Cursor].Path
	if t.Marked[path] {
		delete(t.Marked, path)
	} else {
		t.Marked[path] = true
	}
}

// ToggleHidden flips hidden file visibility and reloads every tab.
func (s *Service) ToggleHidden() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.showHidden = !s.showHidden
	for _, t := range s.tabs {
		s.refreshTab(t)
	}
}

// ShowHidden reports whether hidden files are visible.
func (s *Service) ShowHidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showHidden
}

// NewTab opens a tab at the active tab's directory and switches to it.
func (s *Service) NewTab() {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &Tab{
		ID:         s.nextTabID,
		CurrentDir: s.tabs[s.activeTab].CurrentDir,
		Marked:     map[string]bool{},
	}
	s.nextTabID++
	s.refreshTab(t)
	s.tabs = append(s.tabs, t)
	s.activeTab = len(s.tabs) - 1
	s.showTabs = true
}

// CloseTab closes the active tab. The last tab never closes.
func (s *Service) CloseTab() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.tabs) == 1 {
		return
	}
	s.tabs = append(s.tabs[:s.activeTab], s.tabs[s.activeTab+1:]...)
	if s.activeTab >= len(s.tabs) {
		s.activeTab = len(s.tabs) - 1
	}
}

// NextTab cycles forward through tabs.
func (s *Service) NextTab() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTab = (s.activeTab + 1) % len(s.tabs)
}

// PrevTab cycles backward through tabs.
func (s *Service) PrevTab() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTab = (s.activeTab - 1 + len(s.tabs)) % len(s.tabs)
}

// Bookmarks returns a copy of the bookmarks.
func (s *Service) Bookmarks() []model.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Bookmark(nil), s.bookmarks...)
}

// AddBookmark bookmarks the active tab's directory.
func (s *Service) AddBookmark(name string) error {
	if name == "" {
		return fmt.Errorf("bookmark name is required: %w", model.ErrNotValid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.bookmarks {
		if b.Name == name {
			return fmt.Errorf("bookmark %q: %w", name, model.ErrAlreadyExists)
		}
	}
	s.bookmarks = append(s.bookmarks, model.Bookmark{Name: name, Path: s.tabs[s.activeTab].CurrentDir})

	return nil
}

// RemoveBookmark deletes a bookmark by name.
func (s *Service) RemoveBookmark(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.bookmarks {
		if b.Name == name {
			s.bookmarks = append(s.bookmarks[:i], s.bookmarks[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("bookmark %q: %w", name, model.ErrNotFound)
}

// JumpToBookmark navigates the active tab to a bookmark.
func (s *Service) JumpToBookmark(name string) error {
	s.mu.Lock()
	var target string
	for _, b := range s.bookmarks {
		if b.Name == name {
			target = b.Path
			break
		}
	}
	s.mu.Unlock()

	if target == "" {
		return fmt.Errorf("bookmark %q: %w", name, model.ErrNotFound)
	}
	s.Navigate(target)

	return nil
}

// selectedEntry returns the entry under the cursor.
func (s *Service) selectedEntry() (model.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tabs[s.activeTab]
	if t.Cursor >= len(t.Entries) {
		return model.Entry{}, false
	}
	return t.Entries[t.Cursor], true
}

// targetPaths returns the marked paths, or the selected entry's path when
// nothing is marked. Marks are cleared by the operations that consume them.
func (s *Service) targetPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.tabs[s.activeTab]
	if len(t.Marked) > 0 {
		// Keep listing order, map iteration order is random.
		paths := make([]string, 0, len(t.Marked))
		for _, e := range t.Entries {
			if t.Marked[e.Path] {
				paths = append(paths, e.Path)
			}
		}
		return paths
	}

	if t.Cursor < len(t.Entries) {
		return []string{t.Entries[t.Cursor].Path}
	}

	return nil
}

func (s *Service) clearMarks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[s.activeTab].Marked = map[string]bool{}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
