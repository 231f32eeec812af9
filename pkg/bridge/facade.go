// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package bridge implements the old-generation runtime contract on top of a
// current-generation engine. The façade owns no persistence: every call is
// translated and delegated. Plugins written against the old contract keep
// working unmodified.
package bridge

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/wtfsayo/agentbridge/pkg/config"
	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/proxy"
	"github.com/wtfsayo/agentbridge/pkg/services"
)

// Tables the façade's standard memory managers are bound to.
const (
	MessageTable     = "messages"
	DescriptionTable = "descriptions"
	DocumentTable    = "documents"
)

// Option configures a Facade.
type Option func(*Facade)

// WithServicesConfig sets the capability adapter configuration. Without it
// every optional capability (browser, web search, file cache) resolves nil.
func WithServicesConfig(cfg config.ServicesConfig) Option {
	return func(f *Facade) { f.servicesCfg = cfg }
}

// WithLogger overrides the engine's logger for façade events.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Facade) { f.log = logger }
}

// Facade implements legacy.Runtime over a current.Engine.
type Facade struct {
	engine      current.Engine
	log         *slog.Logger
	tracer      trace.Tracer
	servicesCfg config.ServicesConfig

	db        *proxy.Database
	knowledge *proxy.Knowledge
	resolver  *services.Resolver

	mu         sync.RWMutex
	actions    []legacy.Action
	evaluators []legacy.Evaluator
	providers  []legacy.Provider
	managers   map[string]legacy.MemoryManager
	registered map[legacy.ServiceType]legacy.Service

	// Advisory per-message state cache. A miss re-derives; never a lock.
	cacheMu    sync.RWMutex
	stateCache map[uuid.UUID]*legacy.State
}

var _ legacy.Runtime = (*Facade)(nil)

// New builds a façade over the engine. Construction fails fast when the
// engine is nil or its storage does not answer a probe; a façade never limps
// in a partially initialized state.
func New(ctx context.Context, engine current.Engine, opts ...Option) (*Facade, error) {
	if engine == nil {
		return nil, errors.New(errors.CodeInit, "bridge requires an engine", nil)
	}
	f := &Facade{
		engine:     engine,
		log:        engine.Logger(),
		tracer:     otel.Tracer("agentbridge/bridge"),
		managers:   map[string]legacy.MemoryManager{},
		registered: map[legacy.ServiceType]legacy.Service{},
		stateCache: map[uuid.UUID]*legacy.State{},
	}
	for _, opt := range opts {
		opt(f)
	}

	if _, _, err := engine.GetCache(ctx, "bridge.probe"); err != nil {
		return nil, errors.New(errors.CodeInit, "engine storage probe failed", err)
	}

	f.db = proxy.NewDatabase(engine)
	f.knowledge = proxy.NewKnowledge(engine)
	f.resolver = services.NewResolver(engine, f, f.servicesCfg)
	for _, table := range []string{MessageTable, DescriptionTable, DocumentTable} {
		f.managers[table] = proxy.NewMemoryManager(engine, table)
	}
	return f, nil
}

func (f *Facade) AgentID() uuid.UUID { return f.engine.AgentID() }

func (f *Facade) Character() legacy.Character {
	c := f.engine.Character()
	return legacy.Character{
		Name:              c.Name,
		Bio:               append([]string(nil), c.Bio...),
		Lore:              append([]string(nil), c.Lore...),
		MessageDirections: c.MessageDirections,
		PostDirections:    c.PostDirections,
	}
}

func (f *Facade) DatabaseAdapter() legacy.DatabaseAdapter    { return f.db }
func (f *Facade) KnowledgeManager() legacy.KnowledgeManager  { return f.knowledge }
func (f *Facade) MessageManager() legacy.MemoryManager       { return f.GetMemoryManager(MessageTable) }
func (f *Facade) DescriptionManager() legacy.MemoryManager   { return f.GetMemoryManager(DescriptionTable) }
func (f *Facade) DocumentsManager() legacy.MemoryManager     { return f.GetMemoryManager(DocumentTable) }

func (f *Facade) GetMemoryManager(table string) legacy.MemoryManager {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.managers[table]
}

// RegisterMemoryManager registers a custom table-scoped manager. Registering
// a table twice keeps the first manager and logs the collision.
func (f *Facade) RegisterMemoryManager(mgr legacy.MemoryManager) error {
	if mgr == nil || mgr.TableName() == "" {
		return errors.New(errors.CodeInvalidInput, "memory manager requires a table name", nil)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.managers[mgr.TableName()]; ok {
		f.log.Warn("bridge.memory_manager.duplicate", slog.String("table", mgr.TableName()))
		return nil
	}
	f.managers[mgr.TableName()] = mgr
	return nil
}

// GetService answers a capability request. Explicitly registered services
// win; otherwise the resolver synthesizes or declines. Nil means the
// capability is unavailable.
func (f *Facade) GetService(t legacy.ServiceType) legacy.Service {
	f.mu.RLock()
	svc, ok := f.registered[t]
	f.mu.RUnlock()
	if ok {
		return svc
	}
	return f.resolver.Resolve(context.Background(), t)
}

func (f *Facade) RegisterService(svc legacy.Service) error {
	if svc == nil || svc.Type() == "" {
		return errors.New(errors.CodeInvalidInput, "service requires a declared type", nil)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.registered[svc.Type()]; ok {
		return errors.New(errors.CodeDuplicate, "service already registered", nil).
			WithContext("type", string(svc.Type()))
	}
	if err := svc.Initialize(context.Background(), f); err != nil {
		return errors.New(errors.CodeInit, "service initialize failed", err).
			WithContext("type", string(svc.Type()))
	}
	f.registered[svc.Type()] = svc
	return nil
}

// Completion generates text through the engine's model interface.
func (f *Facade) Completion(ctx context.Context, req legacy.CompletionRequest) (string, error) {
	model := current.ModelTextSmall
	if req.Large {
		model = current.ModelTextLarge
	}
	params := map[string]any{current.ParamPrompt: req.Prompt}
	if req.Temperature > 0 {
		params[current.ParamTemperature] = req.Temperature
	}
	if req.MaxTokens > 0 {
		params[current.ParamMaxTokens] = req.MaxTokens
	}
	if len(req.StopSeqs) > 0 {
		params[current.ParamStop] = req.StopSeqs
	}
	result, err := f.engine.UseModel(ctx, model, params)
	if err != nil {
		return "", err
	}
	text, ok := result.(string)
	if !ok {
		return "", errors.New(errors.CodeDelegate, "text model returned unexpected shape", nil)
	}
	return text, nil
}

// Embed returns the embedding for text, consulting the content-addressed
// cache before calling the model.
func (f *Facade) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok, err := f.db.GetCachedEmbeddings(ctx, text); err == nil && ok {
		return cached, nil
	}
	result, err := f.engine.UseModel(ctx, current.ModelTextEmbedding, map[string]any{
		current.ParamText: text,
	})
	if err != nil {
		return nil, err
	}
	embedding, ok := result.([]float32)
	if !ok {
		return nil, errors.New(errors.CodeDelegate, "embedding model returned unexpected shape", nil)
	}
	if raw, err := json.Marshal(embedding); err == nil {
		if err := f.db.SetCache(ctx, proxy.EmbeddingCachePrefix+text, raw); err != nil {
			f.log.DebugContext(ctx, "bridge.embed.cache.write.failed", slog.String("error", err.Error()))
		}
	}
	return embedding, nil
}

func (f *Facade) GetGoals(ctx context.Context, q legacy.GoalQuery) ([]legacy.Goal, error) {
	return f.db.GetGoals(ctx, q)
}

func (f *Facade) CreateGoal(ctx context.Context, goal legacy.Goal) error {
	return f.db.CreateGoal(ctx, goal)
}

func (f *Facade) UpdateGoal(ctx context.Context, goal legacy.Goal) error {
	return f.db.UpdateGoal(ctx, goal)
}

func (f *Facade) EnsureRoomExists(ctx context.Context, roomID uuid.UUID) error {
	_, err := f.db.CreateRoom(ctx, roomID)
	return err
}

func (f *Facade) EnsureParticipantInRoom(ctx context.Context, userID, roomID uuid.UUID) error {
	_, err := f.db.AddParticipant(ctx, userID, roomID)
	return err
}

func (f *Facade) EnsureUserExists(ctx context.Context, userID uuid.UUID, userName, name, source string) error {
	account, err := f.db.GetAccountByID(ctx, userID)
	if err != nil {
		return err
	}
	if account != nil {
		return nil
	}
	if name == "" {
		name = userName
	}
	_, err = f.db.CreateAccount(ctx, legacy.Account{
		ID:       userID,
		Name:     name,
		Username: userName,
		Details:  map[string]any{"source": source},
	})
	return err
}

// EnsureConnection makes sure the user, the agent, the room and both
// participants' memberships exist. Every step is idempotent.
func (f *Facade) EnsureConnection(ctx context.Context, userID, roomID uuid.UUID, userName, screenName, source string) error {
	if err := f.EnsureUserExists(ctx, userID, userName, screenName, source); err != nil {
		return err
	}
	if err := f.EnsureUserExists(ctx, f.AgentID(), f.Character().Name, f.Character().Name, source); err != nil {
		return err
	}
	if err := f.EnsureRoomExists(ctx, roomID); err != nil {
		return err
	}
	if err := f.EnsureParticipantInRoom(ctx, userID, roomID); err != nil {
		return err
	}
	return f.EnsureParticipantInRoom(ctx, f.AgentID(), roomID)
}

// Stop tears down resolver-owned resources and explicitly registered
// services. Teardown failures are logged, never raised: shutdown paths must
// not throw.
func (f *Facade) Stop(ctx context.Context) error {
	if err := f.resolver.Close(ctx); err != nil {
		f.log.WarnContext(ctx, "bridge.stop.resolver", slog.String("error", err.Error()))
	}
	f.mu.Lock()
	registered := make([]legacy.Service, 0, len(f.registered))
	for _, svc := range f.registered {
		registered = append(registered, svc)
	}
	f.registered = map[legacy.ServiceType]legacy.Service{}
	f.mu.Unlock()
	for _, svc := range registered {
		if err := svc.Stop(ctx); err != nil {
			f.log.WarnContext(ctx, "bridge.stop.service",
				slog.String("type", string(svc.Type())),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}
