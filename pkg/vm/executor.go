// SPDX-License-Identifier: Apache-2.0
// Package vm wires the atom registry, fuel/scope discipline in
// pkg/runtime, and the observability stack around one primitive: dispatch
// a single AST step against a RuntimeContext.
package vm

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jllopis/atomvm/pkg/atom"
	"github.com/jllopis/atomvm/pkg/resilience"
	"github.com/jllopis/atomvm/pkg/runtime"
	"github.com/jllopis/atomvm/pkg/schema"
	"github.com/jllopis/atomvm/pkg/telemetry"
	"github.com/jllopis/atomvm/pkg/vmerr"
)

// Executor dispatches AST steps against the registry, enforcing schema
// validation and per-atom timeouts and emitting a span, a log line, and a
// metric per dispatch.
type Executor struct {
	Registry     *atom.Registry
	Metrics      *telemetry.AtomMetrics
	ErrorMetrics *telemetry.ErrorMetrics
	Logger       *slog.Logger
	tracer       trace.Tracer
}

// NewExecutor builds an Executor. A nil logger defaults to slog.Default;
// a nil AtomMetrics or ErrorMetrics disables the respective metrics
// (both are nil-receiver-safe).
func NewExecutor(registry *atom.Registry, metrics *telemetry.AtomMetrics, errorMetrics *telemetry.ErrorMetrics, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		Registry:     registry,
		Metrics:      metrics,
		ErrorMetrics: errorMetrics,
		Logger:       logger,
		tracer:       otel.Tracer("atomvm/vm"),
	}
}

// Dispatch implements runtime.Dispatcher: look up the op, validate its
// input, run it under its timeout (if any), and bind its result into
// ctx.State.
func (e *Executor) Dispatch(raw map[string]any, ctx *runtime.Context) (any, error) {
	step := atom.Step(raw)
	op := step.Op()

	a, ok := e.Registry.Resolve(op)
	if !ok {
		return nil, vmerr.New(vmerr.UnknownAtom, op, "no atom registered for this op", nil)
	}

	input := step.Data()
	if !schema.Validate(a.InputSchema, input) {
		return nil, vmerr.New(vmerr.Validation, op, "input failed schema: "+schema.Describe(a.InputSchema), nil)
	}

	resultVar, _ := step.Result()
	spanCtx, span := e.tracer.Start(ctx.Go, "VM.Atom",
		trace.WithAttributes(telemetry.AtomAttributes(op, ctx.RunID, a.TimeoutMs, resultVar)...))
	defer span.End()

	childCtx := *ctx
	childCtx.Go = spanCtx

	start := time.Now()
	value, err := e.runAtom(a, step, &childCtx)
	duration := time.Since(start)

	e.Metrics.RecordDispatch(spanCtx, op, float64(duration.Milliseconds()), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.Logger.DebugContext(spanCtx, "atom dispatch failed",
			"op", op, "duration_ms", duration.Milliseconds(), "error", err)
		e.ErrorMetrics.RecordErrorMetric(spanCtx, err, op)
		return nil, err
	}

	e.Logger.DebugContext(spanCtx, "atom dispatched",
		"op", op, "duration_ms", duration.Milliseconds(), "result_var", resultVar)

	if resultVar != "" {
		ctx.State.Set(resultVar, value)
	}
	return value, nil
}

func (e *Executor) runAtom(a atom.Atom, step atom.Step, ctx *runtime.Context) (any, error) {
	if a.TimeoutMs <= 0 {
		return a.Exec(step, ctx)
	}
	cfg := resilience.TimeoutConfig{Duration: time.Duration(a.TimeoutMs) * time.Millisecond}
	return resilience.WithTimeoutResult(ctx.Go, cfg, func() (interface{}, error) {
		return a.Exec(step, ctx)
	})
}
