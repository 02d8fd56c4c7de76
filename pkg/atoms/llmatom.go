// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/vmerr"
)

// llmAtoms implements llm.predict/llm.embed over the host-supplied
// runtime.LLM. Like http.fetch and the store.* family, these cross into
// host-supplied, potentially blocking code, so they carry the
// host-configured default timeout.
func llmAtoms(defaultTimeoutMs int) []atom.Atom {
	return []atom.Atom{
		{
			Op:        "llm.predict",
			TimeoutMs: defaultTimeoutMs,
			Docs:      "run prompt through the host LLM, returning its text completion",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				llm, err := requireLLM(ctx, "llm.predict")
				if err != nil {
					return nil, err
				}
				data := step.Data()
				prompt, _ := runtime.Resolve(data["prompt"], ctx).(string)
				options, _ := runtime.Resolve(data["options"], ctx).(map[string]any)
				out, err := llm.Predict(ctx.Go, prompt, options)
				if err != nil {
					return nil, vmerr.New(vmerr.Internal, "llm.predict", "predict failed", err)
				}
				return out, nil
			},
		},
		{
			Op:        "llm.embed",
			TimeoutMs: defaultTimeoutMs,
			Docs:      "embed text through the host LLM, returning a float vector",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				llm, err := requireLLM(ctx, "llm.embed")
				if err != nil {
					return nil, err
				}
				text, _ := runtime.Resolve(step.Data()["text"], ctx).(string)
				vector, err := llm.Embed(ctx.Go, text)
				if err != nil {
					return nil, vmerr.New(vmerr.Internal, "llm.embed", "embed failed", err)
				}
				out := make([]any, len(vector))
				for i, f := range vector {
					out[i] = f
				}
				return out, nil
			},
		},
	}
}

func requireLLM(ctx *runtime.Context, op string) (runtime.LLM, error) {
	if ctx.Capabilities.LLM == nil {
		return nil, vmerr.New(vmerr.MissingCapability, op, "no LLM capability configured", nil)
	}
	return ctx.Capabilities.LLM, nil
}
