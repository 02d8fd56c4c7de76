// SPDX-License-Identifier: Apache-2.0
// Package atom defines the atom abstraction and AST step shape atoms are
// dispatched against: a node/handler pair generalized into a single op
// code plus schema plus executable body.
package atom

import (
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/schema"
)

// Step is one AST node: a map carrying the mandatory "op" field, an
// optional "result" field naming the state variable the atom's return
// value binds to, and whatever atom-specific fields that op declares.
type Step map[string]any

// Op returns the step's op code.
func (s Step) Op() string {
	op, _ := s["op"].(string)
	return op
}

// Result returns the state variable name the atom's result binds to, if
// any.
func (s Step) Result() (string, bool) {
	r, ok := s["result"].(string)
	return r, ok && r != ""
}

// Data strips "op" and "result", returning the atom-specific payload.
func (s Step) Data() map[string]any {
	out := make(map[string]any, len(s))
	for k, v := range s {
		if k == "op" || k == "result" {
			continue
		}
		out[k] = v
	}
	return out
}

// Steps converts a raw []any (as decoded from JSON) into a []Step,
// skipping entries that aren't object-shaped.
func Steps(raw any) []Step {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]Step, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			out = append(out, Step(m))
		}
	}
	return out
}

// Exec is the function an atom runs against a dispatched step. It
// returns the atom's result value (bound to step.Result() when set) or
// an error.
type Exec func(step Step, ctx *runtime.Context) (any, error)

// Atom is the VM's atom descriptor: an op code, an
// optional input/output schema, an executable body, a per-atom timeout
// (0 disables timeout enforcement — used by flow atoms), and docs.
type Atom struct {
	Op           string
	InputSchema  *schema.Schema
	OutputSchema *schema.Schema
	TimeoutMs    int
	Docs         string
	Exec         Exec
}
