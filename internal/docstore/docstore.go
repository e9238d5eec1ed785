// Package docstore defines the minimal document-store contract the core is
// written against: put, get, query-by-filter and a single-record
// conditional update. The ledger needs nothing stronger; in particular it
// never requires multi-record transactions.
package docstore

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrPreconditionFailed is returned by UpdateIf when the document
	// exists but no longer matches the precondition.
	ErrPreconditionFailed = errors.New("docstore: precondition failed")
)

// Fields is one stored document.
type Fields map[string]any

// Filter matches documents whose fields equal every listed value.
type Filter map[string]any

type Store interface {
	// Put writes a document. An empty id asks the store to allocate one;
	// the id actually used is returned.
	Put(ctx context.Context, collection, id string, fields Fields) (string, error)
	// Get fetches one document by id.
	Get(ctx context.Context, collection, id string) (Fields, error)
	// Query returns all documents matching the filter, unordered.
	Query(ctx context.Context, collection string, filter Filter) ([]Fields, error)
	// UpdateIf atomically patches one document provided it still matches
	// the precondition. The check and the write happen as a single
	// operation on the record; no other document is touched.
	UpdateIf(ctx context.Context, collection, id string, precondition Filter, patch Fields) error
}
