// Package clipboard holds the path set a paste operation acts on.
package clipboard

import "sync"

// Mode says what a paste does with the clipboard contents.
type Mode string

const (
	// ModeCopy pastes by copying.
	ModeCopy Mode = "copy"
	// ModeMove pastes by moving.
	ModeMove Mode = "move"
	// ModeNone means the clipboard is empty.
	ModeNone Mode = ""
)

// Clipboard is a yank/cut buffer over absolute paths.
type Clipboard struct {
	mu    sync.Mutex
	paths []string
	mode  Mode
}

// New creates an empty clipboard.
func New() *Clipboard {
	return &Clipboard{}
}

// Yank stores paths for a copying paste.
func (c *Clipboard) Yank(paths []string) {
	c.set(paths, ModeCopy)
}

// Cut stores paths for a moving paste.
func (c *Clipboard) Cut(paths []string) {
	c.set(paths, ModeMove)
}

func (c *Clipboard) set(paths []string, mode Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paths = append([]string(nil), paths...)
	c.mode = mode
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.paths = nil
	c.mode = ModeNone
}

// Contents returns a copy of the stored paths and the active mode.
func (c *Clipboard) Contents() ([]string, Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.paths...), c.mode
}

// Empty reports whether there is nothing to paste.
func (c *Clipboard) Empty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.paths) == 0 || c.mode == ModeNone
}
