// SPDX-License-Identifier: Apache-2.0
// Package atoms is the built-in atom library: flow control, scoped
// state, logic, arithmetic, list/string/object utilities, and the
// capability-backed IO/store/LLM/agent atoms. Each file groups one
// family, one file per op namespace.
package atoms

import (
	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/vmerr"
)

// runInline dispatches steps in order through ctx.Dispatch, the same
// fuel/output discipline the root seq atom applies (the "run as an
// inline seq" convention used by if/while/try/scope/map bodies): one
// fuel unit per child, stop as soon as ctx.output is set.
func runInline(steps []atom.Step, ctx *runtime.Context) error {
	for _, child := range steps {
		if ctx.OutputSet() {
			break
		}
		if !ctx.ConsumeFuel() {
			return vmerr.New(vmerr.OutOfFuel, child.Op(), "fuel exhausted before step could run", nil)
		}
		if _, err := ctx.Dispatch(map[string]any(child), ctx); err != nil {
			return err
		}
	}
	return nil
}

// Builtins returns the full built-in atom set. defaultTimeoutMs is
// applied only to the capability-backed atoms (http.fetch, store.*,
// llm.*, agent.run) so a host can tune the per-atom timeout race
// (pkg/resilience.WithTimeoutResult) from configuration; pure in-process
// atoms (flow, state, logic, math, list, string, object) carry
// TimeoutMs=0 since there is nothing external to bound.
func Builtins(defaultTimeoutMs int) []atom.Atom {
	var all []atom.Atom
	all = append(all, flowAtoms()...)
	all = append(all, stateAtoms()...)
	all = append(all, logicAtoms()...)
	all = append(all, mathAtoms()...)
	all = append(all, listAtoms()...)
	all = append(all, stringAtoms()...)
	all = append(all, objectAtoms()...)
	all = append(all, ioAtoms(defaultTimeoutMs)...)
	all = append(all, storeAtoms(defaultTimeoutMs)...)
	all = append(all, llmAtoms(defaultTimeoutMs)...)
	all = append(all, agentAtoms(defaultTimeoutMs)...)
	return all
}
