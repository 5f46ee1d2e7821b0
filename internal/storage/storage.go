package storage

import (
	"context"

	"github.com/zsh-ncursed/corvus/internal/model"
)

// Repository persists the browser session between runs. Task history is
// never part of it, the task registry lives and dies with the process.
type Repository interface {
	// GetSession returns the saved session, or model.ErrNotFound when no
	// session has been saved yet.
	GetSession(ctx context.Context) (*model.SessionState, error)

	// SaveSession stores the session, replacing any previous one.
	SaveSession(ctx context.Context, s model.SessionState) error
}

//go:generate mockery --case underscore --output storagemock --outpkg storagemock --name Repository
