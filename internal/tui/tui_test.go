package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsh-ncursed/corvus/internal/app/browser"
	"github.com/zsh-ncursed/corvus/internal/model"
	"github.com/zsh-ncursed/corvus/internal/storage/memory"
)

// stubEngine satisfies Engine without a real task loop.
type stubEngine struct {
	tasks []model.Task
}

func (e *stubEngine) ProcessPendingTasks(ctx context.Context) {}
func (e *stubEngine) WaitForEvent(ctx context.Context) bool   { return false }
func (e *stubEngine) GetTasks() []model.Task                  { return e.tasks }

// stubTasks records task submissions for the browser.
type stubTasks struct {
	tasks []model.Task
}

func (s *stubTasks) AddTask(kind model.TaskKind, description string) string {
	id := fmt.Sprintf("t%d", len(s.tasks))
	s.tasks = append(s.tasks, model.Task{ID: id, Kind: kind, Description: description})
	return id
}

func (s *stubTasks) GetTasks() []model.Task { return append([]model.Task(nil), s.tasks...) }

func newTestModel(t *testing.T, ctx context.Context, dir string) *Model {
	t.Helper()

	repo, err := memory.NewRepository(memory.RepositoryConfig{})
	require.NoError(t, err)

	svc, err := browser.NewService(ctx, browser.ServiceConfig{
		Tasks:      &stubTasks{},
		Repository: repo,
		StartDir:   dir,
	})
	require.NoError(t, err)

	m, err := NewModel(ctx, Config{Browser: svc, Engine: &stubEngine{}})
	require.NoError(t, err)

	return m
}

func makeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestTaskEventRefresh(t *testing.T) {
	tests := map[string]struct {
		completed  bool
		expEntries int
	}{
		"A completed task refreshes the listing":         {completed: true, expEntries: 2},
		"A progress-only event leaves the listing alone": {completed: false, expEntries: 1},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			makeFiles(t, dir, "a")

			m := newTestModel(t, context.Background(), dir)
			require.Len(t, m.browser.ActiveTab().Entries, 1)

			// The directory changes behind the browser's back, only a
			// refresh picks it up.
			makeFiles(t, dir, "b")

			updated, cmd := m.Update(taskEventMsg{completed: tt.completed})

			assert.Len(t, updated.(*Model).browser.ActiveTab().Entries, tt.expEntries)
			assert.NotNil(t, cmd, "the event arm should reschedule itself")
		})
	}
}

func TestTaskEventStopsAfterContextEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := newTestModel(t, ctx, t.TempDir())
	cancel()

	_, cmd := m.Update(taskEventMsg{completed: false})
	assert.Nil(t, cmd)
}

func TestFilterBinding(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, "alpha.txt", "beta.log")

	m := newTestModel(t, context.Background(), dir)

	var updated tea.Model = m
	for _, msg := range []tea.Msg{keyRunes("/"), keyRunes("log"), tea.KeyMsg{Type: tea.KeyEnter}} {
		updated, _ = updated.Update(msg)
	}

	tab := updated.(*Model).browser.ActiveTab()
	require.Len(t, tab.Entries, 1)
	assert.Equal(t, "beta.log", tab.Entries[0].Name)
}

func TestPasteWithEmptyClipboard(t *testing.T) {
	dir := t.TempDir()
	makeFiles(t, dir, "a")

	m := newTestModel(t, context.Background(), dir)

	updated, _ := m.Update(keyRunes("p"))
	assert.Equal(t, "Clipboard is empty", updated.(*Model).status)
}

func TestSelectionInfoBinding(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plain"), []byte("1234"), 0644))

	m := newTestModel(t, context.Background(), dir)

	updated, _ := m.Update(keyRunes("i"))
	assert.Equal(t, "plain: 4B", updated.(*Model).status)
}
