// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"context"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

// RuntimeFor supplies the legacy runtime bound to the invoking engine. The
// plugin package provides it from its per-engine façade cache; translators
// themselves never construct runtimes.
type RuntimeFor func(current.Engine) legacy.Runtime

// ActionToCurrent converts a legacy action definition, wrapping its handler
// and validator so the current engine can invoke them. Arguments are
// translated current->legacy on the way in and results legacy->current on
// the way out.
func ActionToCurrent(a legacy.Action, rt RuntimeFor) current.Action {
	out := current.Action{
		Name:        a.Name,
		Similes:     append([]string(nil), a.Similes...),
		Description: a.Description,
		Examples:    ExamplesToCurrent(a.Examples),
	}
	if a.Handler != nil {
		handler := a.Handler
		out.Handler = func(ctx context.Context, eng current.Engine, msg current.Memory, state *current.State, opts map[string]any, cb current.HandlerCallback) (any, error) {
			return handler(ctx, rt(eng), MemoryToLegacy(msg), stateOrNil(state), opts, wrapCallback(cb))
		}
	}
	if a.Validate != nil {
		validate := a.Validate
		out.Validate = func(ctx context.Context, eng current.Engine, msg current.Memory, state *current.State) (bool, error) {
			return validate(ctx, rt(eng), MemoryToLegacy(msg), stateOrNil(state))
		}
	}
	return out
}

// EvaluatorToCurrent converts a legacy evaluator definition.
func EvaluatorToCurrent(e legacy.Evaluator, rt RuntimeFor) current.Evaluator {
	out := current.Evaluator{
		Name:        e.Name,
		Similes:     append([]string(nil), e.Similes...),
		Description: e.Description,
		AlwaysRun:   e.AlwaysRun,
	}
	if e.Handler != nil {
		handler := e.Handler
		out.Handler = func(ctx context.Context, eng current.Engine, msg current.Memory, state *current.State, opts map[string]any, cb current.HandlerCallback) (any, error) {
			return handler(ctx, rt(eng), MemoryToLegacy(msg), stateOrNil(state), opts, wrapCallback(cb))
		}
	}
	if e.Validate != nil {
		validate := e.Validate
		out.Validate = func(ctx context.Context, eng current.Engine, msg current.Memory, state *current.State) (bool, error) {
			return validate(ctx, rt(eng), MemoryToLegacy(msg), stateOrNil(state))
		}
	}
	return out
}

// ProviderToCurrent converts a legacy context provider into a current
// provider whose result carries the text block and scalar values.
func ProviderToCurrent(p legacy.Provider, rt RuntimeFor) current.Provider {
	get := p.Get
	return current.Provider{
		Name: p.Name,
		Get: func(ctx context.Context, eng current.Engine, msg current.Memory, state *current.State) (current.ProviderResult, error) {
			if get == nil {
				return current.ProviderResult{}, nil
			}
			res, err := get(ctx, rt(eng), MemoryToLegacy(msg), stateOrNil(state))
			if err != nil {
				return current.ProviderResult{}, err
			}
			out := current.ProviderResult{Text: res.Text}
			if len(res.Values) > 0 {
				out.Values = make(map[string]any, len(res.Values))
				for k, v := range res.Values {
					out.Values[k] = v
				}
			}
			return out, nil
		},
	}
}

func stateOrNil(state *current.State) *legacy.State {
	if state == nil {
		return nil
	}
	return StateToLegacy(*state)
}

func wrapCallback(cb current.HandlerCallback) legacy.HandlerCallback {
	if cb == nil {
		return nil
	}
	return func(ctx context.Context, content legacy.Content) ([]legacy.Memory, error) {
		memories, err := cb(ctx, ContentToCurrent(content))
		if err != nil {
			return nil, err
		}
		return MemoriesToLegacy(memories), nil
	}
}
