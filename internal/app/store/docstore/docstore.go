// Package docstore is the document-database contract the tracker runs
// against: get/set/update/add/query documents by collection name.
//
// Documents are Go structs with bson tags. Every backend encodes them
// with BSON, so the same model types work for MongoDB, SQLite and the
// in-memory store.
package docstore

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("docstore: not found")
	// ErrExists is returned by Insert when the id is already taken.
	ErrExists = errors.New("docstore: already exists")
	// ErrTransient marks network or service faults that may succeed on retry.
	ErrTransient = errors.New("docstore: transient failure")
)

// Filter is an equality filter: every key must equal its value.
type Filter map[string]any

// Fields is a partial update. Keys may be dotted paths ("streak_data.goal").
type Fields map[string]any

// Store is implemented by each backend.
type Store interface {
	// Get decodes the document into out or returns ErrNotFound.
	Get(ctx context.Context, collection, id string, out any) error
	// Set creates or overwrites the document.
	Set(ctx context.Context, collection, id string, doc any) error
	// Insert creates the document, failing with ErrExists if present.
	Insert(ctx context.Context, collection, id string, doc any) error
	// Update merges fields into an existing document or returns ErrNotFound.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Add creates the document under a generated id and returns it.
	Add(ctx context.Context, collection string, doc any) (string, error)
	// Query decodes all matching documents into out, a pointer to a slice.
	Query(ctx context.Context, collection string, filter Filter, out any) error
	// Delete removes the document or returns ErrNotFound.
	Delete(ctx context.Context, collection, id string) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// NewID returns a new sortable document id.
func NewID() string {
	return ulid.Make().String()
}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}
