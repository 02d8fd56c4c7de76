// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/vmerr"
)

// storeAtoms implements store.get/store.set/store.query/store.vectorSearch
// over the host-supplied runtime.Store. Like http.fetch, these cross
// into host-supplied, potentially blocking code, so they carry the
// host-configured default timeout.
func storeAtoms(defaultTimeoutMs int) []atom.Atom {
	return []atom.Atom{
		{
			Op:        "store.get",
			TimeoutMs: defaultTimeoutMs,
			Docs:      "fetch key from the host Store; returns nil on a miss",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				store, err := requireStore(ctx, "store.get")
				if err != nil {
					return nil, err
				}
				key, _ := runtime.Resolve(step.Data()["key"], ctx).(string)
				value, _, err := store.Get(ctx.Go, key)
				if err != nil {
					return nil, vmerr.New(vmerr.Internal, "store.get", "store get failed", err)
				}
				return value, nil
			},
		},
		{
			Op:        "store.set",
			TimeoutMs: defaultTimeoutMs,
			Docs:      "write key/value into the host Store",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				store, err := requireStore(ctx, "store.set")
				if err != nil {
					return nil, err
				}
				data := step.Data()
				key, _ := runtime.Resolve(data["key"], ctx).(string)
				value := runtime.Resolve(data["value"], ctx)
				if err := store.Set(ctx.Go, key, value); err != nil {
					return nil, vmerr.New(vmerr.Internal, "store.set", "store set failed", err)
				}
				return value, nil
			},
		},
		{
			Op:        "store.query",
			TimeoutMs: defaultTimeoutMs,
			Docs:      "run an opaque query against the host Store",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				store, err := requireStore(ctx, "store.query")
				if err != nil {
					return nil, err
				}
				query := runtime.Resolve(step.Data()["query"], ctx)
				result, err := store.Query(ctx.Go, query)
				if err != nil {
					return nil, vmerr.New(vmerr.Internal, "store.query", "store query failed", err)
				}
				return result, nil
			},
		},
		{
			Op:        "store.vectorSearch",
			TimeoutMs: defaultTimeoutMs,
			Docs:      "top-k nearest neighbour search against the host Store",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				store, err := requireStore(ctx, "store.vectorSearch")
				if err != nil {
					return nil, err
				}
				data := step.Data()
				vector := toFloat32Slice(runtime.Resolve(data["vector"], ctx))
				topK := 0
				if n, ok := asFloat(runtime.Resolve(data["topK"], ctx)); ok {
					topK = int(n)
				}
				results, err := store.VectorSearch(ctx.Go, vector, topK)
				if err != nil {
					return nil, vmerr.New(vmerr.Internal, "store.vectorSearch", "vector search failed", err)
				}
				out := make([]any, len(results))
				for i, r := range results {
					out[i] = map[string]any{"id": r.ID, "score": r.Score, "value": r.Value}
				}
				return out, nil
			},
		},
	}
}

func requireStore(ctx *runtime.Context, op string) (runtime.Store, error) {
	if ctx.Capabilities.Store == nil {
		return nil, vmerr.New(vmerr.MissingCapability, op, "no Store capability configured", nil)
	}
	return ctx.Capabilities.Store, nil
}

func toFloat32Slice(v any) []float32 {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float32, 0, len(list))
	for _, item := range list {
		if f, ok := asFloat(item); ok {
			out = append(out, float32(f))
		}
	}
	return out
}
