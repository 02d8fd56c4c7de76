// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"reflect"

	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
)

// logicAtoms implements eq/neq/gt/lt/and/or/not: boolean operators over
// already-resolved "a"/"b" operands. gt/lt use the host's
// total order on numbers and strings; eq/neq use value equality with
// numeric cross-type normalization (1 == 1.0).
func logicAtoms() []atom.Atom {
	return []atom.Atom{
		{Op: "eq", Docs: "value equality of resolved a, b", Exec: binaryLogic(func(a, b any) bool { return valueEqual(a, b) })},
		{Op: "neq", Docs: "negated value equality of resolved a, b", Exec: binaryLogic(func(a, b any) bool { return !valueEqual(a, b) })},
		{Op: "gt", Docs: "a > b under the host's total order on numbers and strings", Exec: binaryLogic(func(a, b any) bool {
			cmp, ok := compare(a, b)
			return ok && cmp > 0
		})},
		{Op: "lt", Docs: "a < b under the host's total order on numbers and strings", Exec: binaryLogic(func(a, b any) bool {
			cmp, ok := compare(a, b)
			return ok && cmp < 0
		})},
		{Op: "and", Docs: "logical AND of resolved a, b", Exec: binaryLogic(func(a, b any) bool { return truthyValue(a) && truthyValue(b) })},
		{Op: "or", Docs: "logical OR of resolved a, b", Exec: binaryLogic(func(a, b any) bool { return truthyValue(a) || truthyValue(b) })},
		{
			Op:   "not",
			Docs: "logical negation of resolved a",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				a := runtime.Resolve(step.Data()["a"], ctx)
				return !truthyValue(a), nil
			},
		},
	}
}

func binaryLogic(f func(a, b any) bool) atom.Exec {
	return func(step atom.Step, ctx *runtime.Context) (any, error) {
		data := step.Data()
		a := runtime.Resolve(data["a"], ctx)
		b := runtime.Resolve(data["b"], ctx)
		return f(a, b), nil
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func valueEqual(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

// compare returns -1/0/1 for a<b/a==b/a>b, and false if a and b are not
// both numbers or both strings.
func compare(a, b any) (int, bool) {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			switch {
			case af < bf:
				return -1, true
			case af > bf:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func truthyValue(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case nil:
		return false
	case string:
		return t != ""
	default:
		if f, ok := asFloat(v); ok {
			return f != 0
		}
		return true
	}
}
