package runtime

import "testing"

func newTestContext(args map[string]any) *Context {
	fuel := 100
	return &Context{
		Args:   args,
		State:  NewState(),
		output: &outputBox{},
		Fuel:   &fuel,
	}
}

func TestResolveArgsPrefix(t *testing.T) {
	ctx := newTestContext(map[string]any{"key": "abc"})
	got := Resolve("args.key", ctx)
	if got != "abc" {
		t.Fatalf("got %v, want abc", got)
	}
}

func TestResolveTaggedArg(t *testing.T) {
	ctx := newTestContext(map[string]any{"url": "https://example.com"})
	got := Resolve(map[string]any{"$kind": "arg", "path": "url"}, ctx)
	if got != "https://example.com" {
		t.Fatalf("got %v", got)
	}
}

func TestResolveBoundVariable(t *testing.T) {
	ctx := newTestContext(nil)
	ctx.State.Set("cached", 42)
	got := Resolve("cached", ctx)
	if got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestResolveLiteralPassthrough(t *testing.T) {
	ctx := newTestContext(nil)
	got := Resolve("just a literal string", ctx)
	if got != "just a literal string" {
		t.Fatalf("got %v", got)
	}
}

func TestResolveNonStringPassthrough(t *testing.T) {
	ctx := newTestContext(nil)
	got := Resolve(42, ctx)
	if got != 42 {
		t.Fatalf("got %v, want 42", got)
	}
}

func TestResolveMap(t *testing.T) {
	ctx := newTestContext(map[string]any{"n": 3})
	ctx.State.Set("bound", "hi")
	out := ResolveMap(map[string]any{"a": "args.n", "b": "bound", "c": "literal"}, ctx)
	if out["a"] != 3 || out["b"] != "hi" || out["c"] != "literal" {
		t.Fatalf("got %#v", out)
	}
}
