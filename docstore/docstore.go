// Package docstore abstracts the document database underneath the access
// layer.  Documents are schemaless field maps addressed by a collection
// path and a document ID.  Collection paths may name subcollections with
// slashes, e.g. "usuario/a@x.com/proyectos".
package docstore

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrExists       = errors.New("document already exists")
	ErrPrecondition = errors.New("document changed since it was read")
)

// Document is a single document together with its identifier and the
// timestamp of its last write.  The update time can be passed back to
// Merge as a precondition for optimistic concurrency.
type Document struct {
	ID         string
	Data       map[string]any
	UpdateTime time.Time
}

// Store is the set of document-store operations the access layer needs.
type Store interface {
	// Get returns the document with the given ID, or ErrNotFound.
	Get(ctx context.Context, coll, id string) (*Document, error)

	// List returns every document in the collection.
	List(ctx context.Context, coll string) ([]*Document, error)

	// Query returns up to limit documents whose named top-level field
	// equals value.
	Query(ctx context.Context, coll, field string, value any, limit int) ([]*Document, error)

	// Create writes a new document, failing with ErrExists if a document
	// with the same ID is already present.
	Create(ctx context.Context, coll, id string, data map[string]any) error

	// Put writes the document unconditionally, replacing any existing
	// document with the same ID.
	Put(ctx context.Context, coll, id string, data map[string]any) error

	// Merge writes only the given fields into an existing document,
	// leaving all other fields untouched.  Fails with ErrNotFound if the
	// document does not exist.  A non-zero at is an update-time
	// precondition; the write fails with ErrPrecondition if the document
	// has been written since.
	Merge(ctx context.Context, coll, id string, fields map[string]any, at time.Time) error

	// Delete removes the document.  Deleting an absent document is not an
	// error.
	Delete(ctx context.Context, coll, id string) error

	// NewID reserves a fresh unique document ID in the collection.
	NewID(coll string) string
}
