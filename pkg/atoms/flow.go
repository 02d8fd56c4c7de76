// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/expr"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/schema"
	"github.com/jllopis/atomvm/pkg/vmerr"
)

// flowAtoms implements seq/if/while/return/try/scope. All carry
// TimeoutMs=0 so their children's own timeouts apply instead.
//
// Scope locality note: scope, if, and while each run their body in a
// fresh child State (ctx.WithScope); those three (plus map, in
// pkg/atoms/list.go) are the VM's only scoping constructs. try/catch is
// deliberately excluded from that list: a var.set inside catch must
// stay visible to a return that runs as a sibling step after try — so
// try/catch bodies run directly in the caller's scope, with no
// isolation.
func flowAtoms() []atom.Atom {
	return []atom.Atom{
		{
			Op:        "seq",
			TimeoutMs: 0,
			Docs:      "dispatch each child step in order, charging one fuel unit per step",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				steps := atom.Steps(step.Data()["steps"])
				if err := runInline(steps, ctx); err != nil {
					return nil, err
				}
				return nil, nil
			},
		},
		{
			Op:        "if",
			TimeoutMs: 0,
			Docs:      "evaluate condition over resolved vars; run then or else",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				resolved := resolveVars(data["vars"], ctx)
				condition, _ := data["condition"].(string)
				result, err := expr.Eval(condition, toExprVars(resolved))
				if err != nil {
					return nil, err
				}
				branch := "else"
				if expr.Truthy(result) {
					branch = "then"
				}
				stepsRaw, ok := data[branch]
				if !ok {
					return nil, nil
				}
				childCtx := ctx.WithScope()
				if err := runInline(atom.Steps(stepsRaw), childCtx); err != nil {
					return nil, err
				}
				return nil, nil
			},
		},
		{
			Op:        "while",
			TimeoutMs: 0,
			Docs:      "repeat body while condition is non-zero, checking fuel at each iteration boundary",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				condition, _ := data["condition"].(string)
				body := atom.Steps(data["body"])
				childCtx := ctx.WithScope()
				for {
					if ctx.FuelRemaining() <= 0 {
						return nil, vmerr.New(vmerr.OutOfFuel, "while", "fuel exhausted at loop boundary", nil)
					}
					resolved := resolveVars(data["vars"], childCtx)
					result, err := expr.Eval(condition, toExprVars(resolved))
					if err != nil {
						return nil, err
					}
					if !expr.Truthy(result) {
						break
					}
					if err := runInline(body, childCtx); err != nil {
						return nil, err
					}
					if childCtx.OutputSet() {
						break
					}
				}
				return nil, nil
			},
		},
		{
			Op:   "return",
			Docs: "build an object from ctx.state per the declared result properties and set ctx.output",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				names := returnProperties(step.Data())
				out := make(map[string]any, len(names))
				for _, name := range names {
					v, _ := ctx.State.Get(name)
					out[name] = v
				}
				ctx.SetOutput(out)
				return out, nil
			},
		},
		{
			Op:        "try",
			TimeoutMs: 0,
			Docs:      "run try; on a non-fatal error bind the message to state.error and run catch",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				tryErr := runInline(atom.Steps(data["try"]), ctx)
				if tryErr == nil {
					return nil, nil
				}
				if ve, ok := vmerr.As(tryErr); ok && ve.Kind.Fatal() {
					return nil, tryErr
				}
				ctx.State.Set("error", tryErr.Error())
				catchRaw, ok := data["catch"]
				if !ok {
					return nil, nil
				}
				if err := runInline(atom.Steps(catchRaw), ctx); err != nil {
					return nil, err
				}
				return nil, nil
			},
		},
		{
			Op:        "scope",
			TimeoutMs: 0,
			Docs:      "run steps in a fresh child scope; writes never leak to the parent",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				childCtx := ctx.WithScope()
				steps := atom.Steps(step.Data()["steps"])
				if err := runInline(steps, childCtx); err != nil {
					return nil, err
				}
				return nil, nil
			},
		},
	}
}

// resolveVars resolves a step's "vars" field (expected map[string]any)
// against ctx, tolerating a missing or malformed field.
func resolveVars(raw any, ctx *runtime.Context) map[string]any {
	m, ok := raw.(map[string]any)
	if !ok {
		return nil
	}
	return runtime.ResolveMap(m, ctx)
}

// toExprVars adapts a resolved vars map into the expression evaluator's
// variable environment.
func toExprVars(m map[string]any) expr.Vars {
	return expr.Vars(m)
}

// returnProperties extracts the property names a return step should
// project from state. A "properties" field (a list of names) is the
// primary shorthand; a full *schema.Schema under "schema" is also
// honored via its declared property order.
func returnProperties(data map[string]any) []string {
	if raw, ok := data["properties"].([]any); ok {
		names := make([]string, 0, len(raw))
		for _, v := range raw {
			if s, ok := v.(string); ok {
				names = append(names, s)
			}
		}
		return names
	}
	if names, ok := data["properties"].([]string); ok {
		return names
	}
	if s, ok := data["schema"].(*schema.Schema); ok {
		return schema.PropertyNames(s)
	}
	return nil
}
