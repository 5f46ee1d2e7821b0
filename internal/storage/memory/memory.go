package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/zsh-ncursed/corvus/internal/log"
	"github.com/zsh-ncursed/corvus/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

// Repository is an in-memory implementation of storage.Repository. Useful
// for tests and for running without a state directory.
type Repository struct {
	session *model.SessionState
	mu      sync.RWMutex
	logger  log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{logger: cfg.Logger}, nil
}

// GetSession retrieves the saved session.
func (r *Repository) GetSession(ctx context.Context) (*model.SessionState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.session == nil {
		return nil, fmt.Errorf("session: %w", model.ErrNotFound)
	}

	// Return a copy.
	sessionCopy := *r.session
	sessionCopy.Tabs = append([]model.TabState(nil), r.session.Tabs...)
	sessionCopy.Bookmarks = append([]model.Bookmark(nil), r.session.Bookmarks...)

	return &sessionCopy, nil
}

// SaveSession stores the session, replacing any previous one.
func (r *Repository) SaveSession(ctx context.Context, s model.SessionState) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sessionCopy := s
	sessionCopy.Tabs = append([]model.TabState(nil), s.Tabs...)
	sessionCopy.Bookmarks = append([]model.Bookmark(nil), s.Bookmarks...)
	r.session = &sessionCopy

	r.logger.Debugf("Saved session with %d tabs", len(s.Tabs))

	return nil
}
