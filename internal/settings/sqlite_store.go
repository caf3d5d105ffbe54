package settings

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	appErrors "vercheck/internal/errors"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS settings (
	node  TEXT NOT NULL,
	field TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (node, field)
)`

// SQLiteStore keeps settings in an embedded SQLite database, one row per
// field. Rows belonging to other nodes are left alone.
type SQLiteStore struct {
	path   string
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, appErrors.New(appErrors.CodeConfigurationError, "sqlite settings store requires a path", nil)
	}
	//nolint:gosec // G301: user config directory needs standard permissions
	if err := os.MkdirAll(filepath.Dir(trimmed), 0755); err != nil {
		return nil, appErrors.New(appErrors.CodeSettingsIO, "create settings directory", err)
	}

	db, err := sql.Open("sqlite", buildSettingsDSN(trimmed))
	if err != nil {
		return nil, appErrors.New(appErrors.CodeSettingsIO, "open settings db", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, appErrors.New(appErrors.CodeSettingsIO, "ping settings db", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, appErrors.New(appErrors.CodeSettingsIO, "create settings schema", err)
	}

	o := applyOptions(opts)
	return &SQLiteStore{path: trimmed, db: db, logger: o.logger}, nil
}

// buildSettingsDSN creates a read-write WAL DSN for the given path.
func buildSettingsDSN(dbPath string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(dbPath),
	}
	q := url.Values{}
	q.Add("_pragma", "busy_timeout(3000)")
	q.Add("_pragma", "journal_mode(WAL)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Path returns the database location.
func (s *SQLiteStore) Path() string { return s.path }

// Load implements Store.
func (s *SQLiteStore) Load(ctx context.Context) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT field, value FROM settings WHERE node = ?`, NodeName)
	if err != nil {
		return Settings{}, appErrors.New(appErrors.CodeSettingsIO, "query settings", err)
	}
	defer func() { _ = rows.Close() }()

	var enabled, lastCheck rawField
	for rows.Next() {
		var field, value string
		if err := rows.Scan(&field, &value); err != nil {
			return Settings{}, appErrors.New(appErrors.CodeSettingsIO, "scan settings row", err)
		}
		switch field {
		case FieldAutomaticCheckEnabled:
			enabled = rawField{value: value, present: true}
		case FieldLastSuccessfulCheck:
			lastCheck = rawField{value: value, present: true}
		}
	}
	if err := rows.Err(); err != nil {
		return Settings{}, appErrors.New(appErrors.CodeSettingsIO, "read settings rows", err)
	}
	return decodeFields(enabled, lastCheck, s.logger), nil
}

// Save implements Store. The node is replaced inside a single transaction.
func (s *SQLiteStore) Save(ctx context.Context, settings Settings) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return appErrors.New(appErrors.CodeSettingsIO, "begin settings transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM settings WHERE node = ?`, NodeName); err != nil {
		return appErrors.New(appErrors.CodeSettingsIO, "clear settings node", err)
	}
	for _, kv := range encodeFields(settings) {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO settings (node, field, value) VALUES (?, ?, ?)`,
			NodeName, kv[0], kv[1]); err != nil {
			return appErrors.New(appErrors.CodeSettingsIO, fmt.Sprintf("write %s", kv[0]), err)
		}
	}
	if err = tx.Commit(); err != nil {
		return appErrors.New(appErrors.CodeSettingsIO, "commit settings", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
