// SPDX-License-Identifier: Apache-2.0
package llmcap

import (
	"context"
	"testing"

	"github.com/jllopis/atomvm/pkg/llm"
)

type fakeProvider struct {
	lastReq llm.ChatRequest
}

func (p *fakeProvider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	p.lastReq = req
	return &llm.ChatResponse{Content: "echo: " + req.Messages[0].Content}, nil
}

type fakeEmbedder struct {
	lastModel, lastText string
}

func (e *fakeEmbedder) Embed(ctx context.Context, model, text string) ([]float32, error) {
	e.lastModel, e.lastText = model, text
	return []float32{0.1, 0.2}, nil
}

func TestPredictSendsSingleUserMessage(t *testing.T) {
	provider := &fakeProvider{}
	a := New(provider, &fakeEmbedder{}, "my-model", "")

	out, err := a.Predict(context.Background(), "hi", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "echo: hi" {
		t.Fatalf("out = %q", out)
	}
	if provider.lastReq.Model != "my-model" {
		t.Fatalf("model = %q, want my-model", provider.lastReq.Model)
	}
	if len(provider.lastReq.Messages) != 1 || provider.lastReq.Messages[0].Role != llm.RoleUser {
		t.Fatalf("messages = %v", provider.lastReq.Messages)
	}
}

func TestEmbedModelDefaultsToChatModel(t *testing.T) {
	embedder := &fakeEmbedder{}
	a := New(&fakeProvider{}, embedder, "my-model", "")

	vec, err := a.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 {
		t.Fatalf("vec = %v", vec)
	}
	if embedder.lastModel != "my-model" || embedder.lastText != "text" {
		t.Fatalf("embedder called with model=%q text=%q", embedder.lastModel, embedder.lastText)
	}
}

func TestEmbedModelOverride(t *testing.T) {
	embedder := &fakeEmbedder{}
	a := New(&fakeProvider{}, embedder, "my-model", "embed-model")

	if _, err := a.Embed(context.Background(), "text"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if embedder.lastModel != "embed-model" {
		t.Fatalf("lastModel = %q, want embed-model", embedder.lastModel)
	}
}
