// Copyright 2026 © The Kairos Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"testing"

	"go.opentelemetry.io/otel/attribute"
)

func TestAtomAttributes(t *testing.T) {
	attrs := AtomAttributes("http.fetch", "run-123", 500, "response")

	expected := map[string]any{
		AttrAtomOp:        "http.fetch",
		AttrRunID:         "run-123",
		AttrAtomTimeoutMs: 500,
		AttrAtomResultVar: "response",
	}

	assertAttributes(t, attrs, expected)
}

func TestAtomAttributesNoTimeoutNoResult(t *testing.T) {
	attrs := AtomAttributes("seq", "run-123", 0, "")

	found := make(map[string]bool)
	for _, attr := range attrs {
		found[string(attr.Key)] = true
	}
	if found[AttrAtomTimeoutMs] {
		t.Errorf("expected no timeout attribute for timeoutMs=0")
	}
	if found[AttrAtomResultVar] {
		t.Errorf("expected no result_var attribute for an unbound result")
	}
}

func TestFetchAttributes(t *testing.T) {
	attrs := FetchAttributes("GET", "http://api.data", 200, 42.5)

	expected := map[string]any{
		AttrCapabilityKind:       "fetch",
		AttrHTTPMethod:           "GET",
		AttrHTTPURL:              "http://api.data",
		AttrHTTPStatusCode:       200,
		AttrCapabilityDurationMs: 42.5,
	}

	assertAttributes(t, attrs, expected)
}

func TestStoreAttributes(t *testing.T) {
	attrs := StoreAttributes("get", "http://api.data", 3.2, true)

	expected := map[string]any{
		AttrCapabilityKind:       "store",
		AttrStoreOp:              "get",
		AttrStoreKey:             "http://api.data",
		AttrCapabilityDurationMs: 3.2,
		AttrCapabilitySuccess:    true,
	}

	assertAttributes(t, attrs, expected)
}

func TestLLMAttributes(t *testing.T) {
	attrs := LLMAttributes("qwen2.5-coder:7b-instruct-q5_K_M", "ollama", 1500.0)

	expected := map[string]any{
		AttrCapabilityKind:       "llm",
		AttrLLMModel:             "qwen2.5-coder:7b-instruct-q5_K_M",
		AttrLLMProvider:          "ollama",
		AttrCapabilityDurationMs: 1500.0,
	}

	assertAttributes(t, attrs, expected)
}

func TestAgentRunAttributes(t *testing.T) {
	attrs := AgentRunAttributes("sub-agent-1", "run-123", 75.0)

	expected := map[string]any{
		AttrCapabilityKind:       "agent",
		AttrAgentRunTarget:       "sub-agent-1",
		AttrRunID:                "run-123",
		AttrCapabilityDurationMs: 75.0,
	}

	assertAttributes(t, attrs, expected)
}

// assertAttributes checks that expected key-value pairs exist in attrs
func assertAttributes(t *testing.T, attrs []attribute.KeyValue, expected map[string]any) {
	t.Helper()

	found := make(map[string]attribute.KeyValue)
	for _, attr := range attrs {
		found[string(attr.Key)] = attr
	}

	for key, expectedVal := range expected {
		attr, ok := found[key]
		if !ok {
			t.Errorf("missing attribute %s", key)
			continue
		}

		var actualVal any
		switch attr.Value.Type() {
		case attribute.STRING:
			actualVal = attr.Value.AsString()
		case attribute.INT64:
			actualVal = int(attr.Value.AsInt64())
		case attribute.FLOAT64:
			actualVal = attr.Value.AsFloat64()
		case attribute.BOOL:
			actualVal = attr.Value.AsBool()
		}

		if actualVal != expectedVal {
			t.Errorf("attribute %s: got %v, want %v", key, actualVal, expectedVal)
		}
	}
}
