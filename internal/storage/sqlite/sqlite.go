package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zsh-ncursed/corvus/internal/log"
	"github.com/zsh-ncursed/corvus/internal/model"
	"github.com/zsh-ncursed/corvus/internal/storage/sqlite/migrations"
)

// RepositoryConfig is the configuration for the SQLite repository.
type RepositoryConfig struct {
	DBPath string
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.SQLite"})
	return nil
}

// Repository is a SQLite implementation of storage.Repository.
type Repository struct {
	db     *sql.DB
	logger log.Logger
}

// NewRepository creates a new SQLite repository.
func NewRepository(ctx context.Context, cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	dir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("could not create db directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", cfg.DBPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}

	if err := migrations.Up(db, cfg.Logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not run migrations: %w", err)
	}

	cfg.Logger.Debugf("SQLite repository initialized at %s", cfg.DBPath)

	return &Repository{db: db, logger: cfg.Logger}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error { return r.db.Close() }

// GetSession retrieves the saved session.
func (r *Repository) GetSession(ctx context.Context) (*model.SessionState, error) {
	var s model.SessionState
	var showTabs, showHidden int

	row := r.db.QueryRowContext(ctx, `
		SELECT active_tab_index, show_tabs, show_hidden_files
		FROM session WHERE id = 1
	`)
	err := row.Scan(&s.ActiveTabIndex, &showTabs, &showHidden)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session: %w", model.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read session: %w", err)
	}
	s.ShowTabs = showTabs != 0
	s.ShowHiddenFiles = showHidden != 0

	rows, err := r.db.QueryContext(ctx, `
		SELECT tab_id, current_dir FROM session_tabs ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("could not read session tabs: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var t model.TabState
		if err := rows.Scan(&t.ID, &t.CurrentDir); err != nil {
			return nil, fmt.Errorf("could not scan session tab: %w", err)
		}
		s.Tabs = append(s.Tabs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read session tabs: %w", err)
	}

	bRows, err := r.db.QueryContext(ctx, `
		SELECT name, path FROM bookmarks ORDER BY name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("could not read bookmarks: %w", err)
	}
	defer bRows.Close()
	for bRows.Next() {
		var b model.Bookmark
		if err := bRows.Scan(&b.Name, &b.Path); err != nil {
			return nil, fmt.Errorf("could not scan bookmark: %w", err)
		}
		s.Bookmarks = append(s.Bookmarks, b)
	}
	if err := bRows.Err(); err != nil {
		return nil, fmt.Errorf("could not read bookmarks: %w", err)
	}

	return &s, nil
}

// SaveSession stores the session, replacing any previous one.
func (r *Repository) SaveSession(ctx context.Context, s model.SessionState) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid session: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	boolInt := func(b bool) int {
		if b {
			return 1
		}
		return 0
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO session (id, active_tab_index, show_tabs, show_hidden_files, updated_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			active_tab_index = excluded.active_tab_index,
			show_tabs = excluded.show_tabs,
			show_hidden_files = excluded.show_hidden_files,
			updated_at = excluded.updated_at
	`, s.ActiveTabIndex, boolInt(s.ShowTabs), boolInt(s.ShowHiddenFiles), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("could not save session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_tabs`); err != nil {
		return fmt.Errorf("could not clear session tabs: %w", err)
	}
	for i, t := range s.Tabs {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO session_tabs (position, tab_id, current_dir) VALUES (?, ?, ?)
		`, i, t.ID, t.CurrentDir)
		if err != nil {
			return fmt.Errorf("could not save session tab: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM bookmarks`); err != nil {
		return fmt.Errorf("could not clear bookmarks: %w", err)
	}
	for _, b := range s.Bookmarks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO bookmarks (name, path) VALUES (?, ?)
		`, b.Name, b.Path)
		if err != nil {
			return fmt.Errorf("could not save bookmark: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit session: %w", err)
	}

	r.logger.Debugf("Saved session with %d tabs", len(s.Tabs))

	return nil
}
