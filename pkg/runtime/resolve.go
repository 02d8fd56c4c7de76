// SPDX-License-Identifier: Apache-2.0
package runtime

import "strings"

// Resolve implements the step value resolver:
//  1. a tagged object {"$kind": "arg", "path": P} reads ctx.Args[P];
//  2. a string prefixed "args." reads ctx.Args[suffix];
//  3. a string matching a binding visible from the current scope (with
//     parent fallthrough) resolves to that binding;
//  4. anything else passes through as a literal.
//
// This is deliberately ambiguous between "literal string" and "variable
// name" — a step author who wants a literal that happens to collide with
// a bound name has no escape hatch in this design.
func Resolve(v any, ctx *Context) any {
	switch val := v.(type) {
	case map[string]any:
		if kind, ok := val["$kind"].(string); ok && kind == "arg" {
			if path, ok := val["path"].(string); ok {
				return lookupArg(ctx.Args, path)
			}
		}
		return val
	case string:
		if rest, ok := strings.CutPrefix(val, "args."); ok {
			return lookupArg(ctx.Args, rest)
		}
		if bound, ok := ctx.State.Get(val); ok {
			return bound
		}
		return val
	default:
		return val
	}
}

// ResolveMap resolves every value in a string-keyed map, used by atoms
// that take a "vars" field (math.calc, if, while, template).
func ResolveMap(m map[string]any, ctx *Context) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Resolve(v, ctx)
	}
	return out
}

func lookupArg(args map[string]any, path string) any {
	if args == nil {
		return nil
	}
	v, ok := args[path]
	if !ok {
		return nil
	}
	return v
}
