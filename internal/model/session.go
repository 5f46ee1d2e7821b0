package model

import "fmt"

// TabState is the persisted position of a single browser tab.
type TabState struct {
	ID         int
	CurrentDir string
}

// Bookmark is a named jump target in the file tree.
type Bookmark struct {
	Name string
	Path string
}

// SessionState is the browser state saved between runs. The task registry is
// deliberately not part of it, task history dies with the process.
type SessionState struct {
	Tabs            []TabState
	ActiveTabIndex  int
	ShowTabs        bool
	ShowHiddenFiles bool
	Bookmarks       []Bookmark
}

// Validate validates the session state.
func (s *SessionState) Validate() error {
	if len(s.Tabs) == 0 {
		return fmt.Errorf("at least one tab is required: %w", ErrNotValid)
	}
	if s.ActiveTabIndex < 0 || s.ActiveTabIndex >= len(s.Tabs) {
		return fmt.Errorf("active tab index out of range: %w", ErrNotValid)
	}
	for _, b := range s.Bookmarks {
		if b.Name == "" || b.Path == "" {
			return fmt.Errorf("bookmark name and path are required: %w", ErrNotValid)
		}
	}

	return nil
}
