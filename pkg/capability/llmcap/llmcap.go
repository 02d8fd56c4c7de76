// SPDX-License-Identifier: Apache-2.0
// Package llmcap adapts pkg/llm's chat Provider and Ollama's embedding
// endpoint to runtime.LLM, so llm.predict/llm.embed can run against a
// real model backend.
package llmcap

import (
	"context"

	"github.com/jllopis/atomvm/pkg/llm"
	"github.com/jllopis/atomvm/pkg/runtime"
)

// embedder is satisfied by *llm.OllamaProvider; kept narrow so llmcap does
// not force every Provider to support embeddings.
type embedder interface {
	Embed(ctx context.Context, model, text string) ([]float32, error)
}

// Adapter turns a chat Provider plus an optional embedder into a single
// runtime.LLM capability.
type Adapter struct {
	Provider   llm.Provider
	Embedder   embedder
	Model      string
	EmbedModel string
}

// New builds an Adapter. embedModel defaults to model when blank.
func New(provider llm.Provider, embedder embedder, model, embedModel string) *Adapter {
	if embedModel == "" {
		embedModel = model
	}
	return &Adapter{Provider: provider, Embedder: embedder, Model: model, EmbedModel: embedModel}
}

// Predict sends prompt as a single user message and returns the assistant's
// content. options may set "temperature" to override the adapter's default
// of 0.
func (a *Adapter) Predict(ctx context.Context, prompt string, options map[string]any) (string, error) {
	var temperature float64
	if options != nil {
		if t, ok := options["temperature"].(float64); ok {
			temperature = t
		}
	}
	resp, err := a.Provider.Chat(ctx, llm.ChatRequest{
		Model:       a.Model,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Embed delegates to the configured embedder. A nil embedder is a
// configuration error the caller must avoid; llm.embed has no sensible
// fallback when no embedding backend was wired in.
func (a *Adapter) Embed(ctx context.Context, text string) ([]float32, error) {
	return a.Embedder.Embed(ctx, a.EmbedModel, text)
}

var _ runtime.LLM = (*Adapter)(nil)
