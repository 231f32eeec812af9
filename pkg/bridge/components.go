// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/translate"
)

// runtimeFor binds handler invocations back to this façade regardless of
// which engine instance the wrapped component is invoked through.
func (f *Facade) runtimeFor() translate.RuntimeFor {
	return func(current.Engine) legacy.Runtime { return f }
}

// RegisterAction adds the action to the façade and mirrors it into the
// engine. Registration is idempotent by name: a second registration of the
// same name changes nothing on either side.
func (f *Facade) RegisterAction(action legacy.Action) {
	f.mu.Lock()
	for _, got := range f.actions {
		if got.Name == action.Name {
			f.mu.Unlock()
			return
		}
	}
	f.actions = append(f.actions, action)
	f.mu.Unlock()

	if !f.engineHasAction(action.Name) {
		if err := f.engine.RegisterAction(translate.ActionToCurrent(action, f.runtimeFor())); err != nil && !errors.IsDuplicate(err) {
			f.log.Warn("bridge.register.action.failed",
				slog.String("name", action.Name),
				slog.String("error", err.Error()),
			)
		}
	}
}

// RegisterEvaluator mirrors RegisterAction for evaluators.
func (f *Facade) RegisterEvaluator(evaluator legacy.Evaluator) {
	f.mu.Lock()
	for _, got := range f.evaluators {
		if got.Name == evaluator.Name {
			f.mu.Unlock()
			return
		}
	}
	f.evaluators = append(f.evaluators, evaluator)
	f.mu.Unlock()

	for _, got := range f.engine.Evaluators() {
		if got.Name == evaluator.Name {
			return
		}
	}
	if err := f.engine.RegisterEvaluator(translate.EvaluatorToCurrent(evaluator, f.runtimeFor())); err != nil && !errors.IsDuplicate(err) {
		f.log.Warn("bridge.register.evaluator.failed",
			slog.String("name", evaluator.Name),
			slog.String("error", err.Error()),
		)
	}
}

// RegisterContextProvider registers a state provider on the façade only.
// Unlike actions and evaluators, providers are not mirrored into the engine:
// the façade already runs them during composition, and a mirrored copy would
// fold the same text into the engine's own state a second time.
func (f *Facade) RegisterContextProvider(provider legacy.Provider) {
	f.mu.Lock()
	for _, got := range f.providers {
		if provider.Name != "" && got.Name == provider.Name {
			f.mu.Unlock()
			return
		}
	}
	f.providers = append(f.providers, provider)
	f.mu.Unlock()
}

func (f *Facade) Actions() []legacy.Action {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]legacy.Action(nil), f.actions...)
}

func (f *Facade) Evaluators() []legacy.Evaluator {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]legacy.Evaluator(nil), f.evaluators...)
}

func (f *Facade) Providers() []legacy.Provider {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]legacy.Provider(nil), f.providers...)
}

func (f *Facade) engineHasAction(name string) bool {
	for _, got := range f.engine.Actions() {
		if got.Name == name {
			return true
		}
	}
	return false
}

// ProcessActions dispatches the action named by each response message.
// Responses without an action, and actions that fail validation, are
// skipped with a log line.
func (f *Facade) ProcessActions(ctx context.Context, msg legacy.Memory, responses []legacy.Memory, state *legacy.State, cb legacy.HandlerCallback) error {
	for _, response := range responses {
		name := response.Content.Action
		if name == "" {
			continue
		}
		action := f.findAction(name)
		if action == nil {
			f.log.WarnContext(ctx, "bridge.action.unknown", slog.String("action", name))
			continue
		}
		if action.Validate != nil {
			ok, err := action.Validate(ctx, f, msg, state)
			if err != nil {
				return err
			}
			if !ok {
				f.log.DebugContext(ctx, "bridge.action.rejected", slog.String("action", action.Name))
				continue
			}
		}
		if action.Handler == nil {
			continue
		}
		if _, err := action.Handler(ctx, f, msg, state, nil, cb); err != nil {
			return errors.New(errors.CodeDelegate, "action handler failed", err).
				WithContext("action", action.Name)
		}
	}
	return nil
}

// findAction matches by name first, then by simile, both case and space
// insensitive.
func (f *Facade) findAction(name string) *legacy.Action {
	want := normalizeName(name)
	f.mu.RLock()
	defer f.mu.RUnlock()
	for i := range f.actions {
		if normalizeName(f.actions[i].Name) == want {
			return &f.actions[i]
		}
	}
	for i := range f.actions {
		for _, simile := range f.actions[i].Similes {
			if normalizeName(simile) == want {
				return &f.actions[i]
			}
		}
	}
	return nil
}

// Evaluate runs the evaluators applicable to msg and returns the names of
// those that ran. Validation fans out; handlers run in order.
func (f *Facade) Evaluate(ctx context.Context, msg legacy.Memory, state *legacy.State, didRespond bool) ([]string, error) {
	f.mu.RLock()
	evaluators := append([]legacy.Evaluator(nil), f.evaluators...)
	f.mu.RUnlock()

	applicable := make([]bool, len(evaluators))
	g, gctx := errgroup.WithContext(ctx)
	for i, e := range evaluators {
		if !didRespond && !e.AlwaysRun {
			continue
		}
		if e.Validate == nil {
			applicable[i] = true
			continue
		}
		g.Go(func() error {
			ok, err := e.Validate(gctx, f, msg, state)
			if err != nil {
				return err
			}
			applicable[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ran []string
	for i, ok := range applicable {
		if !ok {
			continue
		}
		e := evaluators[i]
		if e.Handler != nil {
			if _, err := e.Handler(ctx, f, msg, state, nil, nil); err != nil {
				return ran, errors.New(errors.CodeDelegate, "evaluator handler failed", err).
					WithContext("evaluator", e.Name)
			}
		}
		ran = append(ran, e.Name)
	}
	return ran, nil
}
