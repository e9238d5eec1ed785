package docstore

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used by tests and local runs. A single
// mutex gives it the same per-record atomicity guarantee UpdateIf promises
// on the real store.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]map[string]Fields
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]Fields)}
}

func (s *MemoryStore) Put(_ context.Context, collection, id string, fields Fields) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == "" {
		id = uuid.NewString()
	}
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]Fields)
	}
	s.data[collection][id] = cloneFields(fields)
	return id, nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string) (Fields, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneFields(doc)
	out["id"] = id
	return out, nil
}

func (s *MemoryStore) Query(_ context.Context, collection string, filter Filter) ([]Fields, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []Fields
	for id, doc := range s.data[collection] {
		if !matches(doc, filter) {
			continue
		}
		out := cloneFields(doc)
		out["id"] = id
		results = append(results, out)
	}
	return results, nil
}

func (s *MemoryStore) UpdateIf(_ context.Context, collection, id string, precondition Filter, patch Fields) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.data[collection][id]
	if !ok {
		return ErrNotFound
	}
	if !matches(doc, precondition) {
		return ErrPreconditionFailed
	}
	for k, v := range patch {
		doc[k] = v
	}
	return nil
}

func matches(doc Fields, filter Filter) bool {
	for k, want := range filter {
		got, ok := doc[k]
		if !ok {
			// Absent fields match explicit false/empty checks the way a
			// sparse document store treats missing keys.
			if want == false || want == "" || want == nil {
				continue
			}
			return false
		}
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func cloneFields(fields Fields) Fields {
	out := make(Fields, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}
