package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
    id TEXT PRIMARY KEY,
    collection TEXT NOT NULL,
    owner_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    data TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS documents_owner
    ON documents(collection, owner_id, created_at DESC);
`

// SQLiteStore keeps documents in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB

	// Now stamps new documents.
	Now func() time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One writer at a time; SQLite serialises the rest.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLiteStore{db: db, Now: time.Now}, nil
}

func (s *SQLiteStore) Create(ctx context.Context, collection, ownerID string, data any) (id string, err error) {
	defer observe("sqlite", "create", time.Now(), &err)
	raw, err := json.Marshal(data)
	if err != nil {
		return "", failed("encode the document", err)
	}
	now := s.Now().UTC()
	id, err = newID(now)
	if err != nil {
		return "", failed("create an id", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents(id, collection, owner_id, created_at, data) VALUES(?,?,?,?,?)`,
		id, collection, ownerID, now.UnixNano(), string(raw),
	)
	if err != nil {
		return "", failed("save the document", err)
	}
	return id, nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (doc Document, err error) {
	defer observe("sqlite", "get", time.Now(), &err)
	row := s.db.QueryRowContext(ctx,
		`SELECT id, collection, owner_id, created_at, data FROM documents WHERE collection = ? AND id = ?`,
		collection, id,
	)
	doc, err = scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, notFound(collection, id)
	}
	if err != nil {
		return Document{}, failed("read the document", err)
	}
	return doc, nil
}

func (s *SQLiteStore) Query(ctx context.Context, collection string, q Query) (docs []Document, err error) {
	defer observe("sqlite", "query", time.Now(), &err)
	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, collection, owner_id, created_at, data FROM documents
		 WHERE collection = ? AND owner_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		collection, q.OwnerID, limit,
	)
	if err != nil {
		return nil, failed("query documents", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, failed("read documents", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, failed("read documents", err)
	}
	return docs, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) (err error) {
	defer observe("sqlite", "delete", time.Now(), &err)
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return failed("delete the document", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return failed("delete the document", err)
	}
	if n == 0 {
		return notFound(collection, id)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(sc scanner) (Document, error) {
	var (
		d       Document
		created int64
		data    string
	)
	if err := sc.Scan(&d.ID, &d.Collection, &d.OwnerID, &created, &data); err != nil {
		return Document{}, err
	}
	d.CreatedAt = time.Unix(0, created).UTC()
	d.Data = json.RawMessage(data)
	return d, nil
}
