package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: sqlite has a single writer and ":memory:" databases
	// are per connection
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS documents(
  collection TEXT NOT NULL,
  id TEXT NOT NULL,
  body TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT,
  PRIMARY KEY(collection, id)
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`
	_, err := db.Exec(schema)
	return err
}

// SQLiteStore keeps every collection in one table of JSON documents.
type SQLiteStore struct{ db *sqlx.DB }

func NewSQLiteStore(db *sqlx.DB) *SQLiteStore { return &SQLiteStore{db: db} }

func (s *SQLiteStore) GetAll(ctx context.Context, collection string, out any) error {
	var bodies []string
	if err := s.db.SelectContext(ctx, &bodies, `
		SELECT body FROM documents
		WHERE collection = ?
		ORDER BY id
	`, collection); err != nil {
		return fmt.Errorf("failed to list %s: %w", collection, err)
	}

	buf := []byte{'['}
	for i, b := range bodies {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, b...)
	}
	buf = append(buf, ']')

	if err := json.Unmarshal(buf, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", collection, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string, out any) error {
	var body string
	err := s.db.GetContext(ctx, &body, `SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	if err := json.Unmarshal([]byte(body), out); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) Set(ctx context.Context, collection, id string, doc any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents(collection, id, body, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(collection, id) DO UPDATE SET
		  body = excluded.body,
		  updated_at = CURRENT_TIMESTAMP
	`, collection, id, string(body))
	if err != nil {
		return fmt.Errorf("failed to set %s/%s: %w", collection, id, err)
	}
	return nil
}

// Update merges fields into the stored document.
func (s *SQLiteStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var body string
	if err := tx.GetContext(ctx, &body, `SELECT body FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}

	doc := map[string]any{}
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		doc[k] = v
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE documents SET body = ?, updated_at = CURRENT_TIMESTAMP
		WHERE collection = ? AND id = ?
	`, string(merged), collection, id); err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteStore) Close(context.Context) error { return s.db.Close() }
