// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package current

import "context"

// HandlerCallback receives response content produced by an action handler.
type HandlerCallback func(ctx context.Context, content Content) ([]Memory, error)

// Handler executes an action or evaluator.
type Handler func(ctx context.Context, eng Engine, msg Memory, state *State, opts map[string]any, cb HandlerCallback) (any, error)

// Validator reports whether a component applies to the given message.
type Validator func(ctx context.Context, eng Engine, msg Memory, state *State) (bool, error)

// Action is a newer-generation action definition.
type Action struct {
	Name        string            `json:"name"`
	Similes     []string          `json:"similes,omitempty"`
	Description string            `json:"description"`
	Examples    [][]ActionExample `json:"examples,omitempty"`
	Handler     Handler           `json:"-"`
	Validate    Validator         `json:"-"`
}

// ProviderResult is what a provider contributes to composed state.
type ProviderResult struct {
	Text   string         `json:"text"`
	Values map[string]any `json:"values,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Provider contributes context during state composition. Dynamic providers
// run only when requested; Private providers never run implicitly.
type Provider struct {
	Name     string `json:"name"`
	Dynamic  bool   `json:"dynamic,omitempty"`
	Private  bool   `json:"private,omitempty"`
	Position int    `json:"position,omitempty"`
	Get      func(ctx context.Context, eng Engine, msg Memory, state *State) (ProviderResult, error)
}

// Evaluator runs after a response to extract or verify information.
type Evaluator struct {
	Name        string    `json:"name"`
	Similes     []string  `json:"similes,omitempty"`
	Description string    `json:"description"`
	AlwaysRun   bool      `json:"alwaysRun,omitempty"`
	Handler     Handler   `json:"-"`
	Validate    Validator `json:"-"`
}

// Service is a running capability owned by the engine, addressed by name.
type Service interface {
	Name() string
	Stop(ctx context.Context) error
}

// Plugin is a whole newer-generation plugin bundle. Init runs once when the
// engine loads the bundle.
type Plugin struct {
	Name        string                                  `json:"name"`
	Description string                                  `json:"description"`
	Init        func(ctx context.Context, eng Engine) error `json:"-"`
	Actions     []Action                                `json:"-"`
	Providers   []Provider                              `json:"-"`
	Evaluators  []Evaluator                             `json:"-"`
	Services    []Service                               `json:"-"`
}
