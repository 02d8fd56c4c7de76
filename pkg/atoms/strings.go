// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"fmt"
	"strings"

	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
)

// stringAtoms implements split/join/template. template substitutes
// "{{name}}" placeholders with the stringified value bound to name in
// "vars", using "" for any name that is absent.
func stringAtoms() []atom.Atom {
	return []atom.Atom{
		{
			Op:   "split",
			Docs: "split str on sep into a list of strings",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				s, _ := runtime.Resolve(data["str"], ctx).(string)
				sep, _ := runtime.Resolve(data["sep"], ctx).(string)
				parts := strings.Split(s, sep)
				out := make([]any, len(parts))
				for i, p := range parts {
					out[i] = p
				}
				return out, nil
			},
		},
		{
			Op:   "join",
			Docs: "join a list of values (stringified) with sep",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				list, _ := runtime.Resolve(data["list"], ctx).([]any)
				sep, _ := runtime.Resolve(data["sep"], ctx).(string)
				parts := make([]string, len(list))
				for i, v := range list {
					parts[i] = stringify(v)
				}
				return strings.Join(parts, sep), nil
			},
		},
		{
			Op:   "template",
			Docs: "replace {{name}} placeholders in tmpl with resolved vars, missing names become \"\"",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				data := step.Data()
				tpl, _ := data["tmpl"].(string)
				resolved := resolveVars(data["vars"], ctx)
				var b strings.Builder
				i := 0
				for i < len(tpl) {
					start := strings.Index(tpl[i:], "{{")
					if start < 0 {
						b.WriteString(tpl[i:])
						break
					}
					start += i
					b.WriteString(tpl[i:start])
					end := strings.Index(tpl[start:], "}}")
					if end < 0 {
						b.WriteString(tpl[start:])
						break
					}
					end += start
					name := strings.TrimSpace(tpl[start+2 : end])
					if v, ok := resolved[name]; ok {
						b.WriteString(stringify(v))
					}
					i = end + 2
				}
				return b.String(), nil
			},
		},
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprintf("%v", t)
	}
}
