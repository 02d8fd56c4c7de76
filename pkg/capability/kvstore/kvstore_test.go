// SPDX-License-Identifier: Apache-2.0
package kvstore

import (
	"context"
	"testing"
)

func TestGetMissThenSetThenHit(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, found, err := s.Get(ctx, "k")
	if err != nil || found {
		t.Fatalf("expected a miss, got found=%v err=%v", found, err)
	}

	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	v, found, err := s.Get(ctx, "k")
	if err != nil || !found || v != "v" {
		t.Fatalf("got v=%v found=%v err=%v", v, found, err)
	}
}

func TestQueryNilSnapshotsEverything(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "a", 1)
	_ = s.Set(ctx, "b", 2)

	out, err := s.Query(ctx, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snapshot := out.(map[string]any)
	if len(snapshot) != 2 || snapshot["a"] != 1 || snapshot["b"] != 2 {
		t.Fatalf("snapshot = %v", snapshot)
	}
}

func TestQueryPredicateFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	_ = s.Set(ctx, "a", 1)
	_ = s.Set(ctx, "b", 2)

	out, err := s.Query(ctx, func(key string, v any) bool { return key == "b" })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	matched := out.(map[string]any)
	if len(matched) != 1 || matched["b"] != 2 {
		t.Fatalf("matched = %v", matched)
	}
}

func TestQueryUnsupportedType(t *testing.T) {
	s := New()
	if _, err := s.Query(context.Background(), "not a predicate"); err != ErrUnsupportedQuery {
		t.Fatalf("err = %v, want ErrUnsupportedQuery", err)
	}
}

func TestVectorSearchUnsupported(t *testing.T) {
	s := New()
	if _, err := s.VectorSearch(context.Background(), []float32{1, 2}, 5); err == nil {
		t.Fatal("expected an error")
	}
}
