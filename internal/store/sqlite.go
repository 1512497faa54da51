package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"

	"github.com/ticktui/ticktui/internal/errors"
	"github.com/ticktui/ticktui/internal/logging"
	"github.com/ticktui/ticktui/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the credential in a single-row table of a WAL-mode
// SQLite database.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	path   string
	logger *logging.Logger
}

// NewSQLiteStore opens (and migrates) the database at dbPath.
func NewSQLiteStore(dbPath string, logger *logging.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = logging.Discard()
	}

	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, &errors.ErrDirectoryCreate{Path: dir, Err: err}
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, &errors.ErrDatabaseOpen{Path: dbPath, Err: err}
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, &errors.ErrDatabaseOpen{Path: dbPath, Err: err}
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db, path: dbPath, logger: logger}, nil
}

func runMigrations(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return &errors.ErrDatabaseQuery{Operation: "create migrations table", Err: err}
	}

	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return &errors.ErrDatabaseQuery{Operation: "get current migration version", Err: err}
	}

	migrations := []struct {
		version int
		up      string
	}{
		{
			version: 1,
			up: `
				CREATE TABLE IF NOT EXISTS credentials (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					access_token TEXT NOT NULL,
					refresh_token TEXT NOT NULL DEFAULT '',
					token_type TEXT NOT NULL DEFAULT '',
					expires_in INTEGER,
					obtained_at REAL,
					scope TEXT NOT NULL DEFAULT '',
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				);
			`,
		},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return &errors.ErrDatabaseQuery{Operation: "begin migration", Err: err}
		}
		if _, err := tx.Exec(m.up); err != nil {
			_ = tx.Rollback()
			return &errors.ErrDatabaseQuery{Operation: "apply migration", Err: err}
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			_ = tx.Rollback()
			return &errors.ErrDatabaseQuery{Operation: "record migration", Err: err}
		}
		if err := tx.Commit(); err != nil {
			return &errors.ErrDatabaseQuery{Operation: "commit migration", Err: err}
		}
	}
	return nil
}

// Load reads the single credential row.
func (s *SQLiteStore) Load(ctx context.Context) (*models.Credential, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		cred       models.Credential
		expiresIn  sql.NullInt64
		obtainedAt sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT access_token, refresh_token, token_type, expires_in, obtained_at, scope
		FROM credentials WHERE id = 1
	`).Scan(&cred.AccessToken, &cred.RefreshToken, &cred.TokenType, &expiresIn, &obtainedAt, &cred.Scope)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		s.logger.WarnWithContext(ctx, "credential row unreadable, treating as absent",
			"path", s.path, "error", &errors.ErrDatabaseQuery{Operation: "load_credential", Err: err})
		return nil, false
	}

	if expiresIn.Valid {
		cred.ExpiresIn = models.Ptr(expiresIn.Int64)
	}
	if obtainedAt.Valid {
		cred.ObtainedAt = models.Ptr(obtainedAt.Float64)
	}
	if err := cred.Validate(); err != nil {
		s.logger.WarnWithContext(ctx, "credential record invalid, treating as absent", "path", s.path, "error", err)
		return nil, false
	}
	return &cred, true
}

// Save upserts the credential row inside a transaction.
func (s *SQLiteStore) Save(ctx context.Context, cred *models.Credential) error {
	if err := cred.Validate(); err != nil {
		return &errors.ErrCredentialWrite{Backend: "sqlite", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresIn sql.NullInt64
	if cred.ExpiresIn != nil {
		expiresIn = sql.NullInt64{Int64: *cred.ExpiresIn, Valid: true}
	}
	var obtainedAt sql.NullFloat64
	if cred.ObtainedAt != nil {
		obtainedAt = sql.NullFloat64{Float64: *cred.ObtainedAt, Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &errors.ErrCredentialWrite{Backend: "sqlite", Err: &errors.ErrDatabaseQuery{Operation: "begin", Err: err}}
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (id, access_token, refresh_token, token_type, expires_in, obtained_at, scope, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_type = excluded.token_type,
			expires_in = excluded.expires_in,
			obtained_at = excluded.obtained_at,
			scope = excluded.scope,
			updated_at = CURRENT_TIMESTAMP
	`, cred.AccessToken, cred.RefreshToken, cred.TokenType, expiresIn, obtainedAt, cred.Scope)
	if err != nil {
		_ = tx.Rollback()
		return &errors.ErrCredentialWrite{Backend: "sqlite", Err: &errors.ErrDatabaseQuery{Operation: "save_credential", Err: err}}
	}
	if err := tx.Commit(); err != nil {
		return &errors.ErrCredentialWrite{Backend: "sqlite", Err: &errors.ErrDatabaseQuery{Operation: "commit", Err: err}}
	}
	return nil
}

// Clear deletes the credential row.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM credentials WHERE id = 1"); err != nil {
		return &errors.ErrDatabaseQuery{Operation: "clear_credential", Err: err}
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
