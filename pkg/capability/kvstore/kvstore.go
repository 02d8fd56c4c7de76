// SPDX-License-Identifier: Apache-2.0
// Package kvstore implements runtime.Store as a simple in-process,
// mutex-protected map, for runs that need store.get/store.set/store.query
// without a backing database.
package kvstore

import (
	"context"
	"errors"
	"sync"

	"github.com/jllopis/atomvm/pkg/runtime"
)

// ErrUnsupportedQuery is returned by Query for a query value that is
// neither nil nor a func(string, any) bool predicate.
var ErrUnsupportedQuery = errors.New("kvstore: unsupported query type")

// Store is a keyed, in-process runtime.Store. The zero value is not ready
// for use; construct with New.
type Store struct {
	mu   sync.RWMutex
	data map[string]any
}

// New returns an empty Store.
func New() *Store {
	return &Store{data: map[string]any{}}
}

// Get reports the value at key and whether it was present.
func (s *Store) Get(_ context.Context, key string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set writes value under key, replacing anything already there.
func (s *Store) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Query supports two shapes: a nil query returns the whole store as a
// map[string]any snapshot; a func(key string, value any) bool predicate
// returns the subset of entries the predicate accepts, keyed the same way.
func (s *Store) Query(_ context.Context, query any) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if query == nil {
		snapshot := make(map[string]any, len(s.data))
		for k, v := range s.data {
			snapshot[k] = v
		}
		return snapshot, nil
	}

	predicate, ok := query.(func(string, any) bool)
	if !ok {
		return nil, ErrUnsupportedQuery
	}
	matched := map[string]any{}
	for k, v := range s.data {
		if predicate(k, v) {
			matched[k] = v
		}
	}
	return matched, nil
}

// VectorSearch is not supported: a plain key/value map carries no vectors
// to search over. Pair kvstore with vectorstore.Store when a run needs
// both capabilities; runtime.Capabilities only holds one Store at a time,
// so a host composing both should wrap them behind a small router that
// forwards VectorSearch elsewhere.
func (s *Store) VectorSearch(_ context.Context, vector []float32, topK int) ([]runtime.SearchResult, error) {
	return nil, errors.New("kvstore: VectorSearch is not supported")
}

var _ runtime.Store = (*Store)(nil)
