package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ticktui/ticktui/internal/errors"
	"github.com/ticktui/ticktui/internal/logging"
	"github.com/ticktui/ticktui/internal/models"
)

// FileStore keeps the credential as a single JSON object on disk.
type FileStore struct {
	path   string
	logger *logging.Logger
}

// NewFileStore creates a FileStore for path. The file does not need to exist.
func NewFileStore(path string, logger *logging.Logger) *FileStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the record. Missing, unreadable and corrupt files all yield absent.
func (s *FileStore) Load(ctx context.Context) (*models.Credential, bool) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WarnWithContext(ctx, "credential file unreadable, treating as absent",
				"path", s.path, "error", &errors.ErrFileRead{Path: s.path, Err: err})
		}
		return nil, false
	}

	var cred models.Credential
	if err := json.Unmarshal(content, &cred); err != nil {
		s.logger.WarnWithContext(ctx, "credential file corrupt, treating as absent", "path", s.path, "error", err)
		return nil, false
	}
	if err := cred.Validate(); err != nil {
		s.logger.WarnWithContext(ctx, "credential record invalid, treating as absent", "path", s.path, "error", err)
		return nil, false
	}
	return &cred, true
}

// Save writes to a temp file first, then renames it over the target so a
// reader never sees a partial record.
func (s *FileStore) Save(ctx context.Context, cred *models.Credential) error {
	if err := cred.Validate(); err != nil {
		return &errors.ErrCredentialWrite{Backend: "file", Err: err}
	}

	content, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return &errors.ErrCredentialWrite{Backend: "file", Err: fmt.Errorf("marshal credential: %w", err)}
	}

	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return &errors.ErrCredentialWrite{Backend: "file", Err: &errors.ErrDirectoryCreate{Path: dir, Err: err}}
		}
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
		return &errors.ErrCredentialWrite{Backend: "file", Err: fmt.Errorf("write temp file: %w", err)}
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return &errors.ErrCredentialWrite{Backend: "file", Err: fmt.Errorf("rename temp file: %w", err)}
	}

	s.logger.DebugWithContext(ctx, "credential saved", "path", s.path)
	return nil
}

// Clear removes the file. A missing file is not an error.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}

// Close is a no-op.
func (s *FileStore) Close() error {
	return nil
}
