// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
)

// stateAtoms implements var.set/var.get.
func stateAtoms() []atom.Atom {
	return []atom.Atom{
		{
			Op:   "var.set",
			Docs: "bind ctx.state[key] to value, stored raw",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				key, _ := data["key"].(string)
				value := runtime.Resolve(data["value"], ctx)
				ctx.State.Set(key, value)
				return value, nil
			},
		},
		{
			Op:   "var.get",
			Docs: "resolve key: a bound variable if one exists, else the literal key string",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				key, _ := step.Data()["key"].(string)
				return runtime.Resolve(key, ctx), nil
			},
		},
	}
}
