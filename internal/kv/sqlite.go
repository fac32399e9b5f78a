package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// DefaultRetain is the number of revisions kept per key when none is configured.
const DefaultRetain = 20

// Revision is one stored value of a key.
type Revision struct {
	ID         string    `json:"id"`
	Key        string    `json:"key"`
	Version    int       `json:"version"`
	Supersedes string    `json:"supersedes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	Size       int       `json:"size"`
	Value      []byte    `json:"-"`
}

// SQLiteStore implements Store using SQLite. Each Set appends a revision;
// Get reads the newest one.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	retain int

	mu      sync.Mutex // guards entropy
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
// retain bounds the revisions kept per key; values <= 0 use DefaultRetain.
func NewSQLiteStore(dbPath string, retain int) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if retain <= 0 {
		retain = DefaultRetain
	}
	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		retain:  retain,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv_revisions (
		id          TEXT PRIMARY KEY,
		key         TEXT NOT NULL,
		value       BLOB NOT NULL,
		version     INTEGER NOT NULL,
		supersedes  TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_kv_key_version ON kv_revisions(key, version);
	CREATE INDEX IF NOT EXISTS idx_kv_created ON kv_revisions(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_revisions WHERE key = ? ORDER BY version DESC LIMIT 1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Set appends value as the newest revision of key.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.Update(ctx, key, func([]byte, bool) ([]byte, bool) { return value, true })
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Err
	}
	return err
}

// Update reads key, runs fn and appends its result inside one BEGIN IMMEDIATE
// transaction. Another process updating the same database waits for the
// write lock (up to the busy timeout) instead of overwriting this write.
func (s *SQLiteStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return &OpError{Op: "get", Key: key, Err: err}
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return &OpError{Op: "lock", Key: key, Err: err}
	}
	done := false
	defer func() {
		if !done {
			conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	var cur []byte
	found := true
	err = conn.QueryRowContext(ctx,
		`SELECT value FROM kv_revisions WHERE key = ? ORDER BY version DESC LIMIT 1`, key).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		found = false
	case err != nil:
		return &OpError{Op: "get", Key: key, Err: err}
	}

	next, write := fn(cur, found)
	if !write {
		return nil
	}

	if err := s.appendRevision(ctx, conn, key, next); err != nil {
		return &OpError{Op: "set", Key: key, Err: err}
	}
	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return &OpError{Op: "set", Key: key, Err: fmt.Errorf("commit: %w", err)}
	}
	done = true
	return nil
}

type execQuerier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *SQLiteStore) appendRevision(ctx context.Context, q execQuerier, key string, value []byte) error {
	now := time.Now().UTC()
	id := s.newID()

	// Check for existing latest version
	var prevID string
	var prevVersion int
	err := q.QueryRowContext(ctx,
		`SELECT id, version FROM kv_revisions WHERE key = ? ORDER BY version DESC LIMIT 1`,
		key).Scan(&prevID, &prevVersion)

	version := 1
	var supersedes *string
	switch {
	case err == nil:
		version = prevVersion + 1
		supersedes = &prevID
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("read latest %s: %w", key, err)
	}

	if value == nil {
		value = []byte{}
	}
	_, err = q.ExecContext(ctx,
		`INSERT INTO kv_revisions (id, key, value, version, supersedes, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, key, value, version, supersedes, now.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}

	_, err = q.ExecContext(ctx,
		`DELETE FROM kv_revisions WHERE key = ? AND version <= ?`, key, version-s.retain)
	if err != nil {
		return fmt.Errorf("prune revisions: %w", err)
	}
	return nil
}

// Revisions returns the retained revisions of key, newest first.
func (s *SQLiteStore) Revisions(ctx context.Context, key string) ([]Revision, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, key, value, version, supersedes, created_at
		 FROM kv_revisions WHERE key = ? ORDER BY version DESC`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		r, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// Keys returns every key with at least one revision.
func (s *SQLiteStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT key FROM kv_revisions ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRevision(row scanner) (Revision, error) {
	var r Revision
	var supersedes sql.NullString
	var createdAt string

	err := row.Scan(&r.ID, &r.Key, &r.Value, &r.Version, &supersedes, &createdAt)
	if err != nil {
		return r, err
	}

	r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if supersedes.Valid {
		r.Supersedes = supersedes.String
	}
	r.Size = len(r.Value)
	return r, nil
}
