// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"encoding/json"

	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/vmerr"
)

// ioAtoms implements http.fetch over the host-supplied runtime.Fetcher.
// The atom returns the response body only (JSON-decoded when possible);
// the status code and headers are not returned. It carries the
// host-configured default timeout (0 disables it) because, unlike the
// flow/state/logic/math atoms, it crosses into host-supplied code that
// may block.
func ioAtoms(defaultTimeoutMs int) []atom.Atom {
	return []atom.Atom{
		{
			Op:        "http.fetch",
			TimeoutMs: defaultTimeoutMs,
			Docs:      "fetch url through the host Fetcher, decoding a JSON body when possible",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				if ctx.Capabilities.Fetch == nil {
					return nil, vmerr.New(vmerr.MissingCapability, "http.fetch", "no Fetcher capability configured", nil)
				}
				data := step.Data()
				url, _ := runtime.Resolve(data["url"], ctx).(string)
				method, _ := runtime.Resolve(data["method"], ctx).(string)
				body, _ := runtime.Resolve(data["body"], ctx).(string)
				headers := map[string]string{}
				if raw, ok := runtime.Resolve(data["headers"], ctx).(map[string]any); ok {
					for k, v := range raw {
						if s, ok := v.(string); ok {
							headers[k] = s
						}
					}
				}
				result, err := ctx.Capabilities.Fetch.Fetch(ctx.Go, url, runtime.FetchOptions{
					Method:  method,
					Headers: headers,
					Body:    body,
				})
				if err != nil {
					return nil, vmerr.New(vmerr.Internal, "http.fetch", "fetch failed", err)
				}
				return decodeBody(result.Body), nil
			},
		},
	}
}

// decodeBody tries to parse body as JSON, falling back to the raw
// string when it isn't valid JSON.
func decodeBody(body string) any {
	var v any
	if err := json.Unmarshal([]byte(body), &v); err == nil {
		return v
	}
	return body
}
