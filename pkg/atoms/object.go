// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"sort"

	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
)

// objectAtoms implements pick/merge/keys. merge is a shallow union,
// right-hand side winning on key conflicts.
func objectAtoms() []atom.Atom {
	return []atom.Atom{
		{
			Op:   "pick",
			Docs: "project obj down to the named keys, skipping absent ones",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				obj, _ := runtime.Resolve(data["obj"], ctx).(map[string]any)
				keysRaw, _ := runtime.Resolve(data["keys"], ctx).([]any)
				out := make(map[string]any, len(keysRaw))
				for _, k := range keysRaw {
					name, ok := k.(string)
					if !ok {
						continue
					}
					if v, ok := obj[name]; ok {
						out[name] = v
					}
				}
				return out, nil
			},
		},
		{
			Op:   "merge",
			Docs: "shallow union of a and b, b's keys winning on conflict",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				a, _ := runtime.Resolve(data["a"], ctx).(map[string]any)
				b, _ := runtime.Resolve(data["b"], ctx).(map[string]any)
				out := make(map[string]any, len(a)+len(b))
				for k, v := range a {
					out[k] = v
				}
				for k, v := range b {
					out[k] = v
				}
				return out, nil
			},
		},
		{
			Op:   "keys",
			Docs: "sorted list of obj's own keys",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				obj, _ := runtime.Resolve(step.Data()["obj"], ctx).(map[string]any)
				names := make([]string, 0, len(obj))
				for k := range obj {
					names = append(names, k)
				}
				sort.Strings(names)
				out := make([]any, len(names))
				for i, n := range names {
					out[i] = n
				}
				return out, nil
			},
		},
	}
}
