package mirror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteMirror stores one snapshot row per owner in a local SQLite file.
type SQLiteMirror struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the mirror database at path.
func OpenSQLite(path string) (*SQLiteMirror, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open mirror db: %w", err)
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS board_snapshots (
	owner_id TEXT PRIMARY KEY,
	payload TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate mirror db: %w", err)
	}

	return &SQLiteMirror{db: db}, nil
}

func (m *SQLiteMirror) Save(ctx context.Context, ownerID string, payload []byte) error {
	_, err := m.db.ExecContext(ctx, `
INSERT INTO board_snapshots (owner_id, payload, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(owner_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at;
`, ownerID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save mirror snapshot: %w", err)
	}
	return nil
}

func (m *SQLiteMirror) Load(ctx context.Context, ownerID string) ([]byte, bool, error) {
	var payload string
	err := m.db.QueryRowContext(ctx,
		`SELECT payload FROM board_snapshots WHERE owner_id = ?`, ownerID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load mirror snapshot: %w", err)
	}
	return []byte(payload), true, nil
}

func (m *SQLiteMirror) Close() error {
	return m.db.Close()
}
