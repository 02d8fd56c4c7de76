// SPDX-License-Identifier: Apache-2.0
// Package runtime implements the atom VM's execution context: fuel
// accounting, lexically scoped mutable state, the capability surface, and
// the value resolver atoms use to turn step fields into concrete values.
// Run ids use google/uuid rather than a hand-rolled random id generator.
package runtime

import (
	"context"

	"github.com/google/uuid"
)

// Dispatcher executes a single AST step against a Context, honoring
// schema validation and per-atom timeouts. The VM
// orchestrator supplies this as a closure so flow atoms (seq, if, while,
// scope, try) can recursively dispatch their child steps without pkg/atoms
// importing pkg/vm.
type Dispatcher func(step map[string]any, ctx *Context) (any, error)

type outputBox struct {
	value any
	set   bool
}

// Context is the VM's runtime context: a fuel counter, the
// caller's immutable arguments, the current lexical scope, the
// capability bag, and the dispatcher used to run nested steps. Fuel and
// the output box are shared pointers across a scope's children so that a
// return deep inside nested scopes unwinds every enclosing frame and a
// fuel spend in one branch is visible to all.
type Context struct {
	Go           context.Context
	RunID        string
	Fuel         *int
	Args         map[string]any
	State        *State
	Capabilities Capabilities
	Dispatch     Dispatcher
	output       *outputBox
}

// RootOptions configures a fresh top-level run.
type RootOptions struct {
	Fuel         int
	Args         map[string]any
	Capabilities Capabilities
}

// NewRoot builds the root context for a run. Fuel defaults to 1000 when
// unset (options.Fuel == 0), matching the VM orchestrator's default.
func NewRoot(goCtx context.Context, opts RootOptions, dispatch Dispatcher) *Context {
	fuel := opts.Fuel
	if fuel == 0 {
		fuel = 1000
	}
	args := opts.Args
	if args == nil {
		args = map[string]any{}
	}
	f := fuel
	return &Context{
		Go:           goCtx,
		RunID:        uuid.NewString(),
		Fuel:         &f,
		Args:         args,
		State:        NewState(),
		Capabilities: opts.Capabilities,
		Dispatch:     dispatch,
		output:       &outputBox{},
	}
}

// WithScope returns a child context sharing fuel, the output box, args,
// capabilities, and dispatcher, but with a fresh child State. Writes in
// the child never affect the parent's own bindings.
func (c *Context) WithScope() *Context {
	child := *c
	child.State = c.State.Child()
	return &child
}

// ConsumeFuel decrements the shared fuel counter by one and reports
// whether the run still has budget (fuel >= 0 after the decrement). The
// flow atoms call this once per dispatched child step (seq and the inline
// bodies of if/while/try/scope/map): flow atoms themselves are free.
func (c *Context) ConsumeFuel() bool {
	*c.Fuel--
	return *c.Fuel >= 0
}

// FuelRemaining reports the current fuel without spending any.
func (c *Context) FuelRemaining() int {
	return *c.Fuel
}

// SetOutput records the run's output. Once set, OutputSet reports true
// for every context sharing this run's output box — including ancestor
// scopes — so seq/while loops at any depth stop dispatching further
// steps.
func (c *Context) SetOutput(v any) {
	c.output.value = v
	c.output.set = true
}

// OutputSet reports whether return has already fired somewhere in this
// run.
func (c *Context) OutputSet() bool {
	return c.output.set
}

// Output returns the run's output value, or nil if return has not fired.
func (c *Context) Output() any {
	return c.output.value
}
