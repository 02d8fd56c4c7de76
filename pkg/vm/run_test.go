// SPDX-License-Identifier: Apache-2.0
package vm

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/schema"
	"github.com/jllopis/atomvm/pkg/telemetry"
	"github.com/jllopis/atomvm/pkg/vmerr"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore backs scenarios 1-3: Get returns a canned value (or nil),
// Set records every write it receives.
type fakeStore struct {
	getValue any
	getFound bool
	sets     map[string]any
	getCalls int
}

func newFakeStore(value any, found bool) *fakeStore {
	return &fakeStore{getValue: value, getFound: found, sets: map[string]any{}}
}

func (s *fakeStore) Get(ctx context.Context, key string) (any, bool, error) {
	s.getCalls++
	return s.getValue, s.getFound, nil
}

func (s *fakeStore) Set(ctx context.Context, key string, value any) error {
	s.sets[key] = value
	return nil
}

func (s *fakeStore) Query(ctx context.Context, query any) (any, error) { return nil, nil }

func (s *fakeStore) VectorSearch(ctx context.Context, vector []float32, topK int) ([]runtime.SearchResult, error) {
	return nil, nil
}

// dynamicStore backs scenario 3: Get computes its value from the key.
type dynamicStore struct{}

func (dynamicStore) Get(ctx context.Context, key string) (any, bool, error) {
	return "Server Value for " + key, true, nil
}
func (dynamicStore) Set(ctx context.Context, key string, value any) error { return nil }
func (dynamicStore) Query(ctx context.Context, query any) (any, error)    { return nil, nil }
func (dynamicStore) VectorSearch(ctx context.Context, vector []float32, topK int) ([]runtime.SearchResult, error) {
	return nil, nil
}

// fakeFetcher backs scenario 1/2: Fetch returns a canned JSON body and
// records how many times it was invoked.
type fakeFetcher struct {
	body  string
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string, opts runtime.FetchOptions) (*runtime.FetchResult, error) {
	f.calls++
	return &runtime.FetchResult{Status: 200, Body: f.body}, nil
}

func step(op string, result string, fields map[string]any) map[string]any {
	s := map[string]any{"op": op}
	if result != "" {
		s["result"] = result
	}
	for k, v := range fields {
		s[k] = v
	}
	return s
}

func seqOf(steps ...map[string]any) map[string]any {
	list := make([]any, len(steps))
	for i, s := range steps {
		list[i] = s
	}
	return map[string]any{"op": "seq", "steps": list}
}

// cacheAST builds the shared cache-miss/cache-hit AST: get the url from
// the store; branch on whether it came back non-nil; on a hit, return
// the cached value; on a miss, fetch, cache, and return the fetched
// value. Each branch returns from inside its own child scope, since
// bindings made in an if branch are not visible after it.
func cacheAST() map[string]any {
	return seqOf(
		step("store.get", "cached", map[string]any{"key": "args.url"}),
		step("neq", "condFlag", map[string]any{"a": "cached", "b": nil}),
		step("if", "", map[string]any{
			"condition": "condFlag",
			"vars":      map[string]any{"condFlag": "condFlag"},
			"then": []any{
				step("var.set", "", map[string]any{"key": "result", "value": "cached"}),
				step("return", "", map[string]any{"properties": []any{"result"}}),
			},
			"else": []any{
				step("http.fetch", "fetched", map[string]any{"url": "args.url"}),
				step("store.set", "", map[string]any{"key": "args.url", "value": "fetched"}),
				step("var.set", "", map[string]any{"key": "result", "value": "fetched"}),
				step("return", "", map[string]any{"properties": []any{"result"}}),
			},
		}),
	)
}

func TestScenarioCacheMissThenSet(t *testing.T) {
	store := newFakeStore(nil, false)
	fetcher := &fakeFetcher{body: `{"data":"fresh"}`}

	res, err := Run(context.Background(), cacheAST(), RunConfig{
		Args:         map[string]any{"url": "http://api.data"},
		Capabilities: runtime.Capabilities{Store: store, Fetch: fetcher},
		Logger:       discardLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.getCalls != 1 {
		t.Fatalf("store.get calls = %d, want 1", store.getCalls)
	}
	if fetcher.calls != 1 {
		t.Fatalf("fetch calls = %d, want 1", fetcher.calls)
	}
	if v, ok := store.sets["http://api.data"]; !ok {
		t.Fatalf("store.set never called with the request url")
	} else if m, ok := v.(map[string]any); !ok || m["data"] != "fresh" {
		t.Fatalf("store.set value = %v, want {data:fresh}", v)
	}
	out, ok := res.Output.(map[string]any)
	if !ok {
		t.Fatalf("output is not a map: %v", res.Output)
	}
	result, ok := out["result"].(map[string]any)
	if !ok || result["data"] != "fresh" {
		t.Fatalf("output.result = %v, want {data:fresh}", out["result"])
	}
}

func TestScenarioCacheHit(t *testing.T) {
	store := newFakeStore(map[string]any{"data": "cached"}, true)
	fetcher := &fakeFetcher{body: `{"data":"fresh"}`}

	res, err := Run(context.Background(), cacheAST(), RunConfig{
		Args:         map[string]any{"url": "http://api.data"},
		Capabilities: runtime.Capabilities{Store: store, Fetch: fetcher},
		Logger:       discardLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.calls != 0 {
		t.Fatalf("fetch calls = %d, want 0", fetcher.calls)
	}
	out := res.Output.(map[string]any)
	result := out["result"].(map[string]any)
	if result["data"] != "cached" {
		t.Fatalf("output.result = %v, want {data:cached}", out["result"])
	}
}

func TestScenarioTemplateEcho(t *testing.T) {
	ast := seqOf(
		step("store.get", "val", map[string]any{"key": "args.key"}),
		step("template", "response", map[string]any{
			"tmpl": "Echo: {{val}}",
			"vars": map[string]any{"val": "val"},
		}),
		step("return", "", map[string]any{"properties": []any{"response"}}),
	)

	res, err := Run(context.Background(), ast, RunConfig{
		Args:         map[string]any{"key": "secret_id"},
		Capabilities: runtime.Capabilities{Store: dynamicStore{}},
		Logger:       discardLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := res.Output.(map[string]any)
	if out["response"] != "Echo: Server Value for secret_id" {
		t.Fatalf("output.response = %v", out["response"])
	}
}

func TestScenarioOutOfFuel(t *testing.T) {
	steps := make([]map[string]any, 0, 50)
	for i := 0; i < 50; i++ {
		steps = append(steps, step("var.set", "", map[string]any{
			"key":   "counter",
			"value": float64(i),
		}))
	}
	ast := seqOf(steps...)

	_, err := Run(context.Background(), ast, RunConfig{
		Fuel:   10,
		Logger: discardLogger(),
	})
	if err == nil {
		t.Fatalf("expected OutOfFuel error, got nil")
	}
	ve, ok := vmerr.As(err)
	if !ok || ve.Kind != vmerr.OutOfFuel {
		t.Fatalf("error = %v, want OutOfFuel", err)
	}
}

func TestScenarioTryCatch(t *testing.T) {
	ast := seqOf(
		step("try", "", map[string]any{
			"try": []any{
				step("http.fetch", "", map[string]any{"url": "x"}),
			},
			"catch": []any{
				step("var.set", "", map[string]any{"key": "handled", "value": true}),
			},
		}),
		step("return", "", map[string]any{"properties": []any{"handled", "error"}}),
	)

	res, err := Run(context.Background(), ast, RunConfig{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := res.Output.(map[string]any)
	if out["handled"] != true {
		t.Fatalf("output.handled = %v, want true", out["handled"])
	}
	errMsg, ok := out["error"].(string)
	if !ok || errMsg == "" {
		t.Fatalf("output.error = %v, want a non-empty string", out["error"])
	}
}

func TestScenarioScopeIsolation(t *testing.T) {
	ast := seqOf(
		step("var.set", "", map[string]any{"key": "x", "value": float64(1)}),
		step("scope", "", map[string]any{
			"steps": []any{
				step("var.set", "", map[string]any{"key": "x", "value": float64(2)}),
				step("var.set", "", map[string]any{"key": "y", "value": float64(9)}),
			},
		}),
		step("return", "", map[string]any{"properties": []any{"x", "y"}}),
	)

	res, err := Run(context.Background(), ast, RunConfig{Logger: discardLogger()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := res.Output.(map[string]any)
	if out["x"] != float64(1) {
		t.Fatalf("output.x = %v, want 1", out["x"])
	}
	if out["y"] != nil {
		t.Fatalf("output.y = %v, want nil", out["y"])
	}
}

func TestBadRootRejected(t *testing.T) {
	_, err := Run(context.Background(), step("var.set", "", nil), RunConfig{Logger: discardLogger()})
	ve, ok := vmerr.As(err)
	if !ok || ve.Kind != vmerr.BadRoot {
		t.Fatalf("error = %v, want BadRoot", err)
	}
}

func TestUnknownAtomFails(t *testing.T) {
	ast := seqOf(step("no.such.op", "", nil))
	_, err := Run(context.Background(), ast, RunConfig{Logger: discardLogger()})
	ve, ok := vmerr.As(err)
	if !ok || ve.Kind != vmerr.UnknownAtom {
		t.Fatalf("error = %v, want UnknownAtom", err)
	}
}

// TestUnknownAtomRecordsErrorMetrics verifies a configured ErrorMetrics
// tracker is consulted on dispatch failure without changing the error
// returned to the caller.
func TestUnknownAtomRecordsErrorMetrics(t *testing.T) {
	errorMetrics, err := telemetry.NewErrorMetrics(context.Background())
	if err != nil {
		t.Fatalf("NewErrorMetrics: %v", err)
	}

	ast := seqOf(step("no.such.op", "", nil))
	_, err = Run(context.Background(), ast, RunConfig{
		Logger:       discardLogger(),
		ErrorMetrics: errorMetrics,
	})
	ve, ok := vmerr.As(err)
	if !ok || ve.Kind != vmerr.UnknownAtom {
		t.Fatalf("error = %v, want UnknownAtom", err)
	}
}

// TestResolverOverride verifies the "resolver override" property: a
// custom atom registered under an op that also exists in the built-in
// set is the one dispatched.
func TestResolverOverride(t *testing.T) {
	var customRan bool
	custom := atom.Atom{
		Op: "var.set",
		Exec: func(s atom.Step, ctx *runtime.Context) (any, error) {
			customRan = true
			return "overridden", nil
		},
	}
	ast := seqOf(step("var.set", "out", map[string]any{"key": "x", "value": float64(1)}))

	_, err := Run(context.Background(), ast, RunConfig{
		CustomAtoms: []atom.Atom{custom},
		Logger:      discardLogger(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !customRan {
		t.Fatalf("custom var.set atom was not dispatched")
	}
}

// TestValidationTotality verifies that an atom whose declared input
// schema rejects the resolved input never runs its body.
func TestValidationTotality(t *testing.T) {
	var bodyRan bool
	custom := atom.Atom{
		Op:          "custom.strict",
		InputSchema: schema.Object("name"),
		Exec: func(s atom.Step, ctx *runtime.Context) (any, error) {
			bodyRan = true
			return nil, nil
		},
	}
	ast := seqOf(step("custom.strict", "", nil))

	_, err := Run(context.Background(), ast, RunConfig{
		CustomAtoms: []atom.Atom{custom},
		Logger:      discardLogger(),
	})
	if err == nil {
		t.Fatalf("expected a validation error, got nil")
	}
	ve, ok := vmerr.As(err)
	if !ok || ve.Kind != vmerr.Validation {
		t.Fatalf("error = %v, want Validation", err)
	}
	if bodyRan {
		t.Fatalf("atom body ran despite failing validation")
	}
}
