// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry integration with rich attributes
// for atom VM observability.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Semantic conventions for atom VM telemetry. These follow OpenTelemetry
// naming conventions where applicable.
const (
	// Run attributes
	AttrRunID         = "atomvm.run.id"
	AttrRunFuel       = "atomvm.run.fuel"
	AttrRunFuelUsed   = "atomvm.run.fuel_used"

	// Atom dispatch attributes
	AttrAtomOp        = "atomvm.atom.op"
	AttrAtomResultVar = "atomvm.atom.result_var"
	AttrAtomTimeoutMs = "atomvm.atom.timeout_ms"
	AttrAtomDurationMs = "atomvm.atom.duration_ms"
	AttrAtomSuccess   = "atomvm.atom.success"

	// Capability call attributes
	AttrCapabilityKind       = "atomvm.capability.kind" // fetch, store, llm, agent
	AttrCapabilityDurationMs = "atomvm.capability.duration_ms"
	AttrCapabilitySuccess    = "atomvm.capability.success"

	// http.fetch attributes (aligned with OTel HTTP semantic conventions)
	AttrHTTPMethod     = "http.request.method"
	AttrHTTPURL        = "url.full"
	AttrHTTPStatusCode = "http.response.status_code"

	// store.* attributes
	AttrStoreOp  = "atomvm.store.op"
	AttrStoreKey = "atomvm.store.key"

	// llm.predict / llm.embed attributes (extending gen_ai conventions)
	AttrLLMModel    = "gen_ai.request.model"
	AttrLLMProvider = "gen_ai.system"

	// agent.run attributes
	AttrAgentRunTarget = "atomvm.agent.id"
)

// AtomAttributes returns the common attributes for an atom dispatch span
// (op, run id, declared timeout, and the state variable the result binds
// to, if any).
func AtomAttributes(op, runID string, timeoutMs int, resultVar string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAtomOp, op),
		attribute.String(AttrRunID, runID),
	}
	if timeoutMs > 0 {
		attrs = append(attrs, attribute.Int(AttrAtomTimeoutMs, timeoutMs))
	}
	if resultVar != "" {
		attrs = append(attrs, attribute.String(AttrAtomResultVar, resultVar))
	}
	return attrs
}

// FetchAttributes returns attributes for an http.fetch capability call.
func FetchAttributes(method, url string, status int, durationMs float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrCapabilityKind, "fetch"),
		attribute.String(AttrHTTPMethod, method),
		attribute.String(AttrHTTPURL, url),
		attribute.Float64(AttrCapabilityDurationMs, durationMs),
	}
	if status > 0 {
		attrs = append(attrs, attribute.Int(AttrHTTPStatusCode, status))
	}
	return attrs
}

// StoreAttributes returns attributes for a store.{get,set,query,vectorSearch}
// capability call.
func StoreAttributes(op, key string, durationMs float64, success bool) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrCapabilityKind, "store"),
		attribute.String(AttrStoreOp, op),
		attribute.Float64(AttrCapabilityDurationMs, durationMs),
		attribute.Bool(AttrCapabilitySuccess, success),
	}
	if key != "" {
		attrs = append(attrs, attribute.String(AttrStoreKey, key))
	}
	return attrs
}

// LLMAttributes returns attributes for an llm.predict/llm.embed capability
// call.
func LLMAttributes(model, provider string, durationMs float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrCapabilityKind, "llm"),
		attribute.Float64(AttrCapabilityDurationMs, durationMs),
	}
	if model != "" {
		attrs = append(attrs, attribute.String(AttrLLMModel, model))
	}
	if provider != "" {
		attrs = append(attrs, attribute.String(AttrLLMProvider, provider))
	}
	return attrs
}

// AgentRunAttributes returns attributes for an agent.run capability call.
func AgentRunAttributes(agentID, runID string, durationMs float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrCapabilityKind, "agent"),
		attribute.String(AttrAgentRunTarget, agentID),
		attribute.Float64(AttrCapabilityDurationMs, durationMs),
	}
	if runID != "" {
		attrs = append(attrs, attribute.String(AttrRunID, runID))
	}
	return attrs
}
