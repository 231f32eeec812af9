// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package services resolves old-generation capability requests against a
// current engine. Each capability is answered by, in order of preference, an
// engine service that declares the requested type, a synthesized adapter
// over the engine's generic model interface, or nil when neither exists.
package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/wtfsayo/agentbridge/pkg/config"
	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/telemetry"
)

// modelProber is implemented by engines that can report model availability
// up front. Engines without it are assumed to have every model; calls then
// surface unavailability as errors.
type modelProber interface {
	HasModel(model current.ModelType) bool
}

// Resolver builds and memoizes capability adapters for one runtime. A
// resolved nil is memoized too: an unavailable capability stays unavailable
// for the lifetime of the resolver.
type Resolver struct {
	engine  current.Engine
	runtime legacy.Runtime
	cfg     config.ServicesConfig
	log     *slog.Logger

	mu       sync.Mutex
	resolved map[legacy.ServiceType]legacy.Service
}

// NewResolver creates a resolver bound to the runtime that owns it.
func NewResolver(engine current.Engine, runtime legacy.Runtime, cfg config.ServicesConfig) *Resolver {
	return &Resolver{
		engine:   engine,
		runtime:  runtime,
		cfg:      cfg,
		log:      engine.Logger(),
		resolved: map[legacy.ServiceType]legacy.Service{},
	}
}

// Resolve returns the capability adapter for t, or nil when the capability
// cannot be provided. The first call per type does the work; later calls
// return the memoized result.
func (r *Resolver) Resolve(ctx context.Context, t legacy.ServiceType) legacy.Service {
	r.mu.Lock()
	defer r.mu.Unlock()
	if svc, ok := r.resolved[t]; ok {
		return svc
	}
	svc := r.build(t)
	if svc != nil {
		if err := svc.Initialize(ctx, r.runtime); err != nil {
			r.log.WarnContext(ctx, "services.initialize.failed",
				slog.String("type", string(t)),
				slog.String("error", err.Error()),
			)
			svc = nil
		}
	}
	r.resolved[t] = svc
	telemetry.BridgeMetrics().RecordResolve(ctx, string(t), svc != nil)
	return svc
}

func (r *Resolver) build(t legacy.ServiceType) legacy.Service {
	// A registered engine service that declares the requested type wins
	// over any synthesized adapter.
	if svc := r.declared(t); svc != nil {
		return svc
	}
	switch t {
	case legacy.ServiceTranscription:
		if r.hasModel(current.ModelTranscription) {
			return &transcriptionService{engine: r.engine}
		}
	case legacy.ServiceImageDescription:
		if r.hasModel(current.ModelImageDescription) {
			return &imageService{engine: r.engine}
		}
	case legacy.ServiceTextGeneration:
		if r.hasModel(current.ModelTextSmall) || r.hasModel(current.ModelTextLarge) {
			return &textService{engine: r.engine}
		}
	case legacy.ServiceSpeechGeneration:
		if r.hasModel(current.ModelTextToSpeech) {
			return &speechService{engine: r.engine}
		}
	case legacy.ServiceBrowser:
		if r.cfg.BrowserEnabled {
			return &browserService{}
		}
	case legacy.ServiceWebSearch:
		if r.cfg.MCPCommand != "" {
			return &webSearchService{
				command: r.cfg.MCPCommand,
				args:    r.cfg.MCPArgs,
				tool:    r.cfg.WebSearchTool,
			}
		}
	case legacy.ServiceFile:
		if r.cfg.CacheDir != "" {
			return &fileService{dir: r.cfg.CacheDir}
		}
	}
	// ServicePDF and ServiceVideo have no synthesized form; they resolve
	// only through a declared engine service.
	return nil
}

// declared returns the engine service registered under the capability name
// if it carries the matching type tag.
func (r *Resolver) declared(t legacy.ServiceType) legacy.Service {
	svc := r.engine.GetService(string(t))
	if svc == nil {
		return nil
	}
	tagged, ok := svc.(legacy.Service)
	if !ok || tagged.Type() != t {
		return nil
	}
	// Shimmed legacy services expose the capability interface on the
	// wrapped value, not on the shim.
	if shim, ok := tagged.(interface{ Unwrap() legacy.Service }); ok {
		return shim.Unwrap()
	}
	return tagged
}

func (r *Resolver) hasModel(model current.ModelType) bool {
	if prober, ok := r.engine.(modelProber); ok {
		return prober.HasModel(model)
	}
	return true
}

// Close stops every resolved service. Teardown failures are logged and do
// not abort the remaining stops.
func (r *Resolver) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for t, svc := range r.resolved {
		if svc == nil {
			continue
		}
		if err := svc.Stop(ctx); err != nil {
			r.log.WarnContext(ctx, "services.stop.failed",
				slog.String("type", string(t)),
				slog.String("error", err.Error()),
			)
		}
	}
	r.resolved = map[legacy.ServiceType]legacy.Service{}
	return nil
}
