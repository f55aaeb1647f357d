// Package store persists JSON documents grouped into collections and scoped by owner.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"

	"hookbuilder/pkg/apperr"
	"hookbuilder/pkg/metrics"
)

// Document is a stored record. CreatedAt is set by the store, never by the caller.
type Document struct {
	ID         string          `json:"id"`
	Collection string          `json:"collection"`
	OwnerID    string          `json:"ownerId"`
	CreatedAt  time.Time       `json:"createdAt"`
	Data       json.RawMessage `json:"data"`
}

// Query selects an owner's documents, newest first. Limit <= 0 means no limit.
type Query struct {
	OwnerID string
	Limit   int
}

type Store interface {
	Create(ctx context.Context, collection, ownerID string, data any) (string, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	Delete(ctx context.Context, collection, id string) error
	Close() error
}

// Open returns the store for driver ("file" or "sqlite") at path.
func Open(driver, path string) (Store, error) {
	switch driver {
	case "", "file":
		return OpenFile(path)
	case "sqlite":
		return OpenSQLite(path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// Decode unmarshals a document's data into T.
func Decode[T any](d Document) (T, error) {
	var v T
	if err := json.Unmarshal(d.Data, &v); err != nil {
		return v, fmt.Errorf("decode %s/%s: %w", d.Collection, d.ID, err)
	}
	return v, nil
}

func newID(now time.Time) (string, error) {
	id, err := ksuid.NewRandomWithTime(now)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func notFound(collection, id string) error {
	return apperr.NotFound(fmt.Sprintf("No document %s in %s", id, collection))
}

func failed(op string, err error) error {
	return apperr.Upstream("The document store could not "+op, 0, "", err)
}

// observe is deferred by store methods with a pointer to their named error.
func observe(driver, op string, start time.Time, err *error) {
	metrics.ObserveStore(driver, op, start, *err)
}
