// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package legacy

import "context"

// HandlerCallback receives response content produced by an action handler.
type HandlerCallback func(ctx context.Context, content Content) ([]Memory, error)

// Handler executes an action or evaluator against a composed state.
type Handler func(ctx context.Context, rt Runtime, msg Memory, state *State, opts map[string]any, cb HandlerCallback) (any, error)

// Validator reports whether a component applies to the given message.
type Validator func(ctx context.Context, rt Runtime, msg Memory, state *State) (bool, error)

// Action is an old-generation action definition. Similes are alternative
// trigger names; Examples are grouped example dialogs.
type Action struct {
	Name        string            `json:"name"`
	Similes     []string          `json:"similes,omitempty"`
	Description string            `json:"description"`
	Examples    [][]ActionExample `json:"examples,omitempty"`
	Handler     Handler           `json:"-"`
	Validate    Validator         `json:"-"`
}

// Provider contributes context to state composition.
type Provider struct {
	Name string `json:"name,omitempty"`
	Get  func(ctx context.Context, rt Runtime, msg Memory, state *State) (ProviderResult, error)
}

// ProviderResult is what a provider contributes: rendered text plus
// optional named scalar values merged into the state.
type ProviderResult struct {
	Text   string
	Values map[string]string
}

// Evaluator runs after a response to extract or verify information.
type Evaluator struct {
	Name        string            `json:"name"`
	Similes     []string          `json:"similes,omitempty"`
	Description string            `json:"description"`
	AlwaysRun   bool              `json:"alwaysRun,omitempty"`
	Examples    []EvaluationExample `json:"examples,omitempty"`
	Handler     Handler           `json:"-"`
	Validate    Validator         `json:"-"`
}

// EvaluationExample is a worked example for an evaluator.
type EvaluationExample struct {
	Context  string          `json:"context"`
	Messages []ActionExample `json:"messages"`
	Outcome  string          `json:"outcome"`
}

// Plugin is a whole old-generation plugin bundle.
type Plugin struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Actions     []Action    `json:"-"`
	Providers   []Provider  `json:"-"`
	Evaluators  []Evaluator `json:"-"`
	Services    []Service   `json:"-"`
}
