// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package plugin wraps whole old-generation plugin bundles so a current
// engine can load them, and classifies bundles whose generation is unknown.
package plugin

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wtfsayo/agentbridge/pkg/bridge"
	"github.com/wtfsayo/agentbridge/pkg/config"
	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/translate"
)

// Binder creates the façade a wrapped component runs against. Façades are
// cached per engine instance, keyed explicitly by the invoking engine, so
// two engines in one process never share translator state.
type Binder struct {
	servicesCfg config.ServicesConfig

	mu      sync.Mutex
	facades map[current.Engine]*bridge.Facade
}

// BinderOption configures a Binder.
type BinderOption func(*Binder)

// WithServicesConfig passes capability configuration to the façades the
// binder creates.
func WithServicesConfig(cfg config.ServicesConfig) BinderOption {
	return func(b *Binder) { b.servicesCfg = cfg }
}

// NewBinder creates an empty binder.
func NewBinder(opts ...BinderOption) *Binder {
	b := &Binder{facades: map[current.Engine]*bridge.Facade{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Runtime returns the façade bound to eng, creating it on first use.
func (b *Binder) Runtime(eng current.Engine) legacy.Runtime {
	b.mu.Lock()
	defer b.mu.Unlock()
	if f, ok := b.facades[eng]; ok {
		return f
	}
	f, err := bridge.New(context.Background(), eng, bridge.WithServicesConfig(b.servicesCfg))
	if err != nil {
		eng.Logger().Error("plugin.binder.facade.failed", slog.String("error", err.Error()))
		return nil
	}
	b.facades[eng] = f
	return f
}

func (b *Binder) runtimeFor() translate.RuntimeFor {
	return func(eng current.Engine) legacy.Runtime { return b.Runtime(eng) }
}

// WrapAction produces a current-shaped action whose handler and validator
// run the legacy logic against the binder's façade.
func (b *Binder) WrapAction(a legacy.Action) current.Action {
	return translate.ActionToCurrent(a, b.runtimeFor())
}

// WrapEvaluator wraps a single legacy evaluator.
func (b *Binder) WrapEvaluator(e legacy.Evaluator) current.Evaluator {
	return translate.EvaluatorToCurrent(e, b.runtimeFor())
}

// WrapProvider wraps a single legacy context provider.
func (b *Binder) WrapProvider(p legacy.Provider) current.Provider {
	return translate.ProviderToCurrent(p, b.runtimeFor())
}

// WrapService adapts a legacy capability service to the current service
// contract. The service keeps its declared type as its name.
func (b *Binder) WrapService(svc legacy.Service) current.Service {
	return &serviceShim{svc: svc, binder: b}
}

// Wrap converts a whole legacy plugin bundle. The produced bundle's Init
// hook initializes the wrapped services against the loading engine's façade.
func (b *Binder) Wrap(p legacy.Plugin) current.Plugin {
	out := current.Plugin{
		Name:        p.Name,
		Description: p.Description,
	}
	for _, a := range p.Actions {
		out.Actions = append(out.Actions, b.WrapAction(a))
	}
	for _, prov := range p.Providers {
		out.Providers = append(out.Providers, b.WrapProvider(prov))
	}
	for _, e := range p.Evaluators {
		out.Evaluators = append(out.Evaluators, b.WrapEvaluator(e))
	}
	for _, svc := range p.Services {
		out.Services = append(out.Services, b.WrapService(svc))
	}
	if len(p.Services) > 0 {
		services := append([]legacy.Service(nil), p.Services...)
		out.Init = func(ctx context.Context, eng current.Engine) error {
			rt := b.Runtime(eng)
			for _, svc := range services {
				if err := svc.Initialize(ctx, rt); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return out
}

// serviceShim exposes a legacy service under the current contract. The
// engine sees it by its declared capability name; resolvers can recover the
// legacy interface because the shim forwards the type tag.
type serviceShim struct {
	svc    legacy.Service
	binder *Binder
}

var _ current.Service = (*serviceShim)(nil)
var _ legacy.Service = (*serviceShim)(nil)

func (s *serviceShim) Name() string { return string(s.svc.Type()) }

func (s *serviceShim) Type() legacy.ServiceType { return s.svc.Type() }

func (s *serviceShim) Initialize(ctx context.Context, rt legacy.Runtime) error {
	return s.svc.Initialize(ctx, rt)
}

func (s *serviceShim) Stop(ctx context.Context) error { return s.svc.Stop(ctx) }

// Unwrap exposes the wrapped legacy service for callers that need the
// capability-specific interface.
func (s *serviceShim) Unwrap() legacy.Service { return s.svc }
