// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"unicode/utf8"

	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
)

// listAtoms implements map/push/len. map introduces a fresh child scope
// per run of its body, matching the rest of the VM's scope-locality rule.
func listAtoms() []atom.Atom {
	return []atom.Atom{
		{
			Op:   "map",
			Docs: "bind each element of items to 'as' in a child scope, run steps, collect scope.state.result",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				items, _ := runtime.Resolve(data["items"], ctx).([]any)
				as, _ := data["as"].(string)
				steps := atom.Steps(data["steps"])

				out := make([]any, 0, len(items))
				for _, item := range items {
					if ctx.OutputSet() {
						break
					}
					childCtx := ctx.WithScope()
					childCtx.State.Set(as, item)
					if err := runInline(steps, childCtx); err != nil {
						return nil, err
					}
					snap := childCtx.State.Snapshot()
					if v, ok := snap["result"]; ok {
						out = append(out, v)
					} else {
						out = append(out, nil)
					}
				}
				return out, nil
			},
		},
		{
			Op:   "push",
			Docs: "append item to list, rebinding the source variable in place when list was a variable reference",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				listField := data["list"]
				item := runtime.Resolve(data["item"], ctx)
				list, _ := runtime.Resolve(listField, ctx).([]any)

				appended := make([]any, 0, len(list)+1)
				appended = append(appended, list...)
				appended = append(appended, item)

				if name, ok := listField.(string); ok {
					if _, bound := ctx.State.Get(name); bound {
						ctx.State.Set(name, appended)
					}
				}
				return appended, nil
			},
		},
		{
			Op:   "len",
			Docs: "length of a sequence or string; 0 for anything else",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				v := runtime.Resolve(step.Data()["list"], ctx)
				switch t := v.(type) {
				case []any:
					return len(t), nil
				case string:
					return utf8.RuneCountInString(t), nil
				default:
					return 0, nil
				}
			},
		},
	}
}
