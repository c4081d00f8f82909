package record

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps one SQLite table per logical table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at path, ensures the
// data directory exists, and provisions the record tables.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the admin read while a save is in flight; writers wait on the
	// busy timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &SQLiteStore{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	for _, t := range Tables {
		_, err := s.db.Exec(fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %[1]s (
    id TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    version INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_%[1]s_created_at ON %[1]s(created_at);
`, t))
		if err != nil {
			return fmt.Errorf("create %s: %w", t, err)
		}
	}
	return nil
}

// Get returns ErrNotFound when no row has the id.
func (s *SQLiteStore) Get(ctx context.Context, table, id string) (Record, error) {
	if err := CheckTable(table); err != nil {
		return Record{}, err
	}
	var data string
	var created, version int64
	err := s.db.QueryRowContext(ctx, `SELECT data, created_at, version FROM `+table+` WHERE id = ?`, id).
		Scan(&data, &created, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, err
	}
	return Record{
		ID:        id,
		Data:      []byte(data),
		CreatedAt: time.UnixMilli(created),
		Version:   version,
	}, nil
}

// Upsert inserts or replaces the row. A zero CreatedAt keeps the stored one
// (or stamps now for a new row).
func (s *SQLiteStore) Upsert(ctx context.Context, table string, rec Record) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var curVersion, curCreated int64
	exists := true
	err = tx.QueryRowContext(ctx, `SELECT version, created_at FROM `+table+` WHERE id = ?`, rec.ID).
		Scan(&curVersion, &curCreated)
	if errors.Is(err, sql.ErrNoRows) {
		exists = false
	} else if err != nil {
		return err
	}
	if err := CheckVersion(rec.Version, curVersion, exists); err != nil {
		return err
	}

	created := rec.CreatedAt.UnixMilli()
	switch {
	case !rec.CreatedAt.IsZero():
	case exists:
		created = curCreated
	default:
		created = time.Now().UnixMilli()
	}

	var res sql.Result
	if exists {
		res, err = tx.ExecContext(ctx, `UPDATE `+table+` SET data = ?, created_at = ?, version = ? WHERE id = ? AND version = ?`,
			string(rec.Data), created, curVersion+1, rec.ID, curVersion)
	} else {
		res, err = tx.ExecContext(ctx, `INSERT INTO `+table+` (id, data, created_at, version) VALUES (?, ?, ?, 1)`,
			rec.ID, string(rec.Data), created)
	}
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
			return ErrVersionConflict
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrVersionConflict
	}
	return tx.Commit()
}

// Delete removes a row by id. Missing rows are not an error.
func (s *SQLiteStore) Delete(ctx context.Context, table, id string) error {
	if err := CheckTable(table); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	return err
}

// List returns every row of table. OrderNone falls back to rowid order,
// which is insertion order for SQLite.
func (s *SQLiteStore) List(ctx context.Context, table string, order Order) ([]Record, error) {
	if err := CheckTable(table); err != nil {
		return nil, err
	}
	q := `SELECT id, data, created_at, version FROM ` + table
	switch order {
	case OrderCreatedAsc:
		q += ` ORDER BY created_at ASC, rowid ASC`
	case OrderCreatedDesc:
		q += ` ORDER BY created_at DESC, rowid DESC`
	default:
		q += ` ORDER BY rowid`
	}
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []Record
	for rows.Next() {
		var id, data string
		var created, version int64
		if err := rows.Scan(&id, &data, &created, &version); err != nil {
			return nil, err
		}
		recs = append(recs, Record{
			ID:        id,
			Data:      []byte(data),
			CreatedAt: time.UnixMilli(created),
			Version:   version,
		})
	}
	return recs, rows.Err()
}
