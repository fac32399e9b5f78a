package kv

import (
	"context"
	"fmt"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string     `json:"db_path"`
	DBSizeBytes int64      `json:"db_size_bytes"`
	Keys        int        `json:"keys"`
	Revisions   int        `json:"revisions"`
	Retain      int        `json:"retain"`
	PerKey      []KeyStats `json:"per_key"`
}

// KeyStats holds per-key counts.
type KeyStats struct {
	Key       string `json:"key"`
	Revisions int    `json:"revisions"`
	Latest    int    `json:"latest_version"`
	Bytes     int    `json:"latest_bytes"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{DBPath: s.path, Retain: s.retain}

	if info, err := os.Stat(s.path); err == nil {
		st.DBSizeBytes = info.Size()
	}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT key) FROM kv_revisions`).Scan(&st.Revisions, &st.Keys)
	if err != nil {
		return st, fmt.Errorf("count revisions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT r.key, COUNT(*), MAX(r.version),
		       (SELECT LENGTH(value) FROM kv_revisions l WHERE l.key = r.key ORDER BY version DESC LIMIT 1)
		FROM kv_revisions r
		GROUP BY r.key ORDER BY r.key`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ks KeyStats
		if err := rows.Scan(&ks.Key, &ks.Revisions, &ks.Latest, &ks.Bytes); err != nil {
			return st, err
		}
		st.PerKey = append(st.PerKey, ks)
	}

	return st, rows.Err()
}
