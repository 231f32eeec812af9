// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package testkit holds helpers shared by the bridge's test suites: a
// scripted model handler and an embedding stub for engines under test.
package testkit

import (
	"context"
	"sync"

	"github.com/wtfsayo/agentbridge/pkg/errors"
)

// ScriptedModel returns a pre-defined sequence of results. Useful for
// driving multi-call flows (compose, then act, then evaluate) without a real
// model behind the engine.
type ScriptedModel struct {
	mu        sync.Mutex
	Responses []any
	Err       error
	// CallCount tracks how many times Handle has been called.
	CallCount int
	// Params captures the parameter bag of every call, in order.
	Params []map[string]any
}

// NewScriptedModel creates a handler that pops responses in order.
func NewScriptedModel(responses ...any) *ScriptedModel {
	return &ScriptedModel{Responses: responses}
}

// Handle pops the next scripted result or returns the configured error.
// Wire it into an engine with RegisterModel(kind, m.Handle).
func (m *ScriptedModel) Handle(_ context.Context, params map[string]any) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.Params = append(m.Params, params)
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return nil, errors.New(errors.CodeDelegate, "scripted model: no more responses", nil)
	}
	next := m.Responses[0]
	m.Responses = m.Responses[1:]
	return next, nil
}

// AddResponse appends a result to the queue.
func (m *ScriptedModel) AddResponse(response any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Responses = append(m.Responses, response)
}

// ConstEmbedding returns a handler that embeds every text as the same
// vector. Search behavior then depends only on store filters, which keeps
// retrieval tests deterministic.
func ConstEmbedding(vector []float32) func(context.Context, map[string]any) (any, error) {
	return func(context.Context, map[string]any) (any, error) {
		return append([]float32(nil), vector...), nil
	}
}
