// Package store persists the OAuth credential record between runs.
package store

import (
	"context"
	"fmt"

	"github.com/ticktui/ticktui/internal/config"
	"github.com/ticktui/ticktui/internal/logging"
	"github.com/ticktui/ticktui/internal/models"
)

// Store holds at most one credential record.
//
// Load never fails: an unreadable, corrupt or invalid record is reported as
// absent so the caller falls through to a fresh authorization. Save failures
// are returned as *errors.ErrCredentialWrite and end the current operation.
type Store interface {
	Load(ctx context.Context) (*models.Credential, bool)
	Save(ctx context.Context, cred *models.Credential) error
	Clear(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by cfg.
func Open(cfg config.CredentialsConfig, logger *logging.Logger) (Store, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	switch cfg.Backend {
	case "", "file":
		return NewFileStore(cfg.Path, logger), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path, logger)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown credential backend %q", cfg.Backend)
	}
}
