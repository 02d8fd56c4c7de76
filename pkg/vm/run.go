// SPDX-License-Identifier: Apache-2.0
package vm

import (
	"context"
	"log/slog"

	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/atoms"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/telemetry"
	"github.com/jllopis/atomvm/pkg/vmerr"
)

// RunConfig configures a run.
type RunConfig struct {
	Fuel                 int
	Args                 map[string]any
	Capabilities         runtime.Capabilities
	CustomAtoms          []atom.Atom
	DefaultAtomTimeoutMs int
	Metrics              *telemetry.AtomMetrics
	ErrorMetrics         *telemetry.ErrorMetrics
	Logger               *slog.Logger
}

// RunResult is a run's observable outcome: the output value plus how
// much fuel the run spent.
type RunResult struct {
	Output   any
	FuelUsed int
}

// Run executes ast — which must be a root "seq" step — against cfg,
// building the registry from the built-in library overlaid with any
// custom atoms.
func Run(goCtx context.Context, ast map[string]any, cfg RunConfig) (*RunResult, error) {
	root := atom.Step(ast)
	if root.Op() != "seq" {
		return nil, vmerr.New(vmerr.BadRoot, root.Op(), "root step must be a seq", nil)
	}

	registry := atom.NewRegistry(atoms.Builtins(cfg.DefaultAtomTimeoutMs), cfg.CustomAtoms)
	executor := NewExecutor(registry, cfg.Metrics, cfg.ErrorMetrics, cfg.Logger)

	rootCtx := runtime.NewRoot(goCtx, runtime.RootOptions{
		Fuel:         cfg.Fuel,
		Args:         cfg.Args,
		Capabilities: cfg.Capabilities,
	}, executor.Dispatch)

	fuelBefore := rootCtx.FuelRemaining()
	if _, err := executor.Dispatch(ast, rootCtx); err != nil {
		return nil, err
	}

	return &RunResult{
		Output:   rootCtx.Output(),
		FuelUsed: fuelBefore - rootCtx.FuelRemaining(),
	}, nil
}
