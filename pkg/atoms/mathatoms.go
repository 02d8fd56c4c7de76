// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/expr"
	"github.com/jllopis/atomvm/pkg/runtime"
)

// mathAtoms implements math.calc: resolve every "vars" entry via the
// value resolver, evaluate "expr" through the shunting-yard evaluator,
// and return the numeric result.
func mathAtoms() []atom.Atom {
	return []atom.Atom{
		{
			Op:   "math.calc",
			Docs: "evaluate an arithmetic/relational expression over resolved vars",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				expression, _ := data["expr"].(string)
				resolved := resolveVars(data["vars"], ctx)
				result, err := expr.Eval(expression, toExprVars(resolved))
				if err != nil {
					return nil, err
				}
				return result, nil
			},
		},
	}
}
