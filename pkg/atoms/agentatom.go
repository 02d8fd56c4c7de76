// SPDX-License-Identifier: Apache-2.0
package atoms

import (
	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/vmerr"
)

// agentAtoms implements agent.run over the host-supplied
// runtime.AgentRunner. The call is opaque to the VM: it neither shares
// state nor fuel with whatever runs on the other side.
func agentAtoms(defaultTimeoutMs int) []atom.Atom {
	return []atom.Atom{
		{
			Op:        "agent.run",
			TimeoutMs: defaultTimeoutMs,
			Docs:      "invoke the host AgentRunner with an opaque input, returning its opaque output",
			Exec: func(step atom.Step, ctx *runtime.Context) (any, error) {
				if ctx.Capabilities.Agent == nil {
					return nil, vmerr.New(vmerr.MissingCapability, "agent.run", "no AgentRunner capability configured", nil)
				}
				data := step.Data()
				agentID, _ := runtime.Resolve(data["agentId"], ctx).(string)
				input := runtime.Resolve(data["input"], ctx)
				result, err := ctx.Capabilities.Agent.Run(ctx.Go, agentID, input)
				if err != nil {
					return nil, vmerr.New(vmerr.Internal, "agent.run", "agent run failed", err)
				}
				return result, nil
			},
		},
	}
}
