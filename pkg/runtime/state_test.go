package runtime

import "testing"

func TestStateFallthrough(t *testing.T) {
	root := NewState()
	root.Set("x", 1)
	child := root.Child()
	if v, ok := child.Get("x"); !ok || v != 1 {
		t.Fatalf("expected child to see parent binding, got %v %v", v, ok)
	}
}

func TestStateChildWriteDoesNotLeakUpward(t *testing.T) {
	root := NewState()
	root.Set("x", 1)
	child := root.Child()
	child.Set("x", 2)
	child.Set("y", 9)

	if v, _ := child.Get("x"); v != 2 {
		t.Fatalf("expected child's own write to shadow parent, got %v", v)
	}
	if v, _ := root.Get("x"); v != 1 {
		t.Fatalf("expected parent binding to be unaffected by child write, got %v", v)
	}
	if _, ok := root.Get("y"); ok {
		t.Fatal("expected child-only binding not to leak upward")
	}
}

func TestStateMissingKey(t *testing.T) {
	s := NewState()
	if _, ok := s.Get("missing"); ok {
		t.Fatal("expected missing key to report not-found")
	}
}
