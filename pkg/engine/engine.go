// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/errors"
)

// MessageTable is the memory table the engine's own provider pipeline
// reads recent messages from.
const MessageTable = "messages"

// ModelHandler serves one model kind for UseModel.
type ModelHandler func(ctx context.Context, params map[string]any) (any, error)

// Option configures a Runtime.
type Option func(*Runtime)

// WithAgentID fixes the agent identity instead of generating one.
func WithAgentID(id uuid.UUID) Option {
	return func(r *Runtime) { r.agentID = id }
}

// WithStore sets the persistence backend. Defaults to NewMemStore.
func WithStore(store Store) Option {
	return func(r *Runtime) { r.store = store }
}

// WithVectorIndex sets the embedding index. Defaults to NewMemIndex.
func WithVectorIndex(index VectorIndex) Option {
	return func(r *Runtime) { r.index = index }
}

// WithLogger sets the engine logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) { r.logger = logger }
}

// WithModelHandler registers a handler for a model kind.
func WithModelHandler(model current.ModelType, handler ModelHandler) Option {
	return func(r *Runtime) { r.models[model] = handler }
}

// Runtime is the reference implementation of current.Engine.
type Runtime struct {
	agentID   uuid.UUID
	character current.Character
	store     Store
	index     VectorIndex
	logger    *slog.Logger

	mu         sync.RWMutex
	actions    []current.Action
	providers  []current.Provider
	evaluators []current.Evaluator
	services   map[string]current.Service
	models     map[current.ModelType]ModelHandler
	listeners  map[string][]func(map[string]any)
}

var _ current.Engine = (*Runtime)(nil)

// New creates a reference engine for the given character.
func New(character current.Character, opts ...Option) *Runtime {
	r := &Runtime{
		agentID:   uuid.New(),
		character: character,
		logger:    slog.Default(),
		services:  map[string]current.Service{},
		models:    map[current.ModelType]ModelHandler{},
		listeners: map[string][]func(map[string]any){},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = NewMemStore()
	}
	if r.index == nil {
		r.index = NewMemIndex()
	}
	return r
}

func (r *Runtime) AgentID() uuid.UUID            { return r.agentID }
func (r *Runtime) Character() current.Character  { return r.character }
func (r *Runtime) Logger() *slog.Logger          { return r.logger }

// ComposeState runs the engine's provider pipeline: character values,
// recent messages and room actors first, then every registered non-private
// provider in order.
func (r *Runtime) ComposeState(ctx context.Context, msg current.Memory) (current.State, error) {
	state := current.NewState()
	state.Values["agentId"] = r.agentID
	state.Values["roomId"] = msg.RoomID
	state.Values["agentName"] = r.character.Name
	state.Values["bio"] = strings.Join(r.character.Bio, " ")
	state.Values["lore"] = strings.Join(r.character.Lore, " ")
	state.Values["messageDirections"] = r.character.MessageDirections
	state.Values["postDirections"] = r.character.PostDirections

	recent, err := r.store.ListMemories(ctx, current.MemoryQuery{
		Table:  MessageTable,
		RoomID: msg.RoomID,
		Count:  32,
	})
	if err != nil {
		return current.State{}, fmt.Errorf("compose state: list recent messages: %w", err)
	}
	// Oldest first for rendering.
	for left, right := 0, len(recent)-1; left < right; left, right = left+1, right-1 {
		recent[left], recent[right] = recent[right], recent[left]
	}
	state.Data["recentMessagesData"] = recent
	state.Values["recentMessages"] = renderMessages(recent)

	var texts []string
	for _, provider := range r.Providers() {
		if provider.Private || provider.Get == nil {
			continue
		}
		result, err := provider.Get(ctx, r, msg, &state)
		if err != nil {
			r.logger.Warn("engine.provider.error",
				slog.String("provider", provider.Name),
				slog.String("error", err.Error()),
			)
			continue
		}
		if result.Text != "" {
			texts = append(texts, result.Text)
		}
		for k, v := range result.Values {
			state.Values[k] = v
		}
		for k, v := range result.Data {
			state.Data[k] = v
		}
	}
	state.Text = strings.Join(texts, "\n")
	return state, nil
}

func (r *Runtime) CreateMemory(ctx context.Context, memory current.Memory, table string) (uuid.UUID, error) {
	if memory.ID == uuid.Nil {
		memory.ID = uuid.New()
	}
	if err := r.store.CreateMemory(ctx, memory, table); err != nil {
		return memory.ID, err
	}
	if len(memory.Embedding) > 0 {
		if err := r.index.Upsert(ctx, memory.ID, memory.Embedding); err != nil {
			r.logger.Warn("engine.index.upsert.error", slog.String("error", err.Error()))
		}
	}
	return memory.ID, nil
}

func (r *Runtime) GetMemoryByID(ctx context.Context, id uuid.UUID) (*current.Memory, error) {
	return r.store.GetMemory(ctx, id)
}

func (r *Runtime) GetMemories(ctx context.Context, q current.MemoryQuery) ([]current.Memory, error) {
	return r.store.ListMemories(ctx, q)
}

// SearchMemories answers an embedding query from the vector index, then
// filters hits against the store query.
func (r *Runtime) SearchMemories(ctx context.Context, q current.SearchQuery) ([]current.Memory, error) {
	limit := q.Count
	if limit <= 0 {
		limit = 10
	}
	// Overfetch: index hits outside the room/table are dropped below.
	matches, err := r.index.Search(ctx, q.Embedding, limit*4)
	if err != nil {
		return nil, err
	}
	// The index is table-blind; scope hits to the queried table.
	var inTable map[uuid.UUID]bool
	if q.Table != "" {
		rows, err := r.store.ListMemories(ctx, current.MemoryQuery{Table: q.Table})
		if err != nil {
			return nil, err
		}
		inTable = make(map[uuid.UUID]bool, len(rows))
		for _, row := range rows {
			inTable[row.ID] = true
		}
	}
	var out []current.Memory
	for _, match := range matches {
		if q.MatchThreshold > 0 && match.Score < q.MatchThreshold {
			continue
		}
		if inTable != nil && !inTable[match.ID] {
			continue
		}
		m, err := r.store.GetMemory(ctx, match.ID)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		if q.RoomID != uuid.Nil && m.RoomID != q.RoomID {
			continue
		}
		if q.Unique && !m.Unique() {
			continue
		}
		score := match.Score
		m.Similarity = &score
		out = append(out, *m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *Runtime) UpdateMemory(ctx context.Context, memory current.Memory) error {
	return r.store.UpdateMemory(ctx, memory)
}

func (r *Runtime) DeleteMemory(ctx context.Context, id uuid.UUID) error {
	if err := r.index.Delete(ctx, id); err != nil {
		r.logger.Warn("engine.index.delete.error", slog.String("error", err.Error()))
	}
	return r.store.DeleteMemory(ctx, id)
}

func (r *Runtime) DeleteAllMemories(ctx context.Context, roomID uuid.UUID, table string) error {
	return r.store.DeleteMemoriesByRoom(ctx, roomID, table)
}

func (r *Runtime) CountMemories(ctx context.Context, roomID uuid.UUID, unique bool, table string) (int, error) {
	return r.store.CountMemories(ctx, roomID, unique, table)
}

func (r *Runtime) CreateTask(ctx context.Context, task current.Task) (uuid.UUID, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	return task.ID, r.store.CreateTask(ctx, task)
}

func (r *Runtime) GetTask(ctx context.Context, id uuid.UUID) (*current.Task, error) {
	return r.store.GetTask(ctx, id)
}

func (r *Runtime) GetTasks(ctx context.Context, q current.TaskQuery) ([]current.Task, error) {
	return r.store.ListTasks(ctx, q)
}

func (r *Runtime) UpdateTask(ctx context.Context, task current.Task) error {
	return r.store.UpdateTask(ctx, task)
}

func (r *Runtime) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return r.store.DeleteTask(ctx, id)
}

func (r *Runtime) CreateRoom(ctx context.Context, room current.Room) (uuid.UUID, error) {
	if room.ID == uuid.Nil {
		room.ID = uuid.New()
	}
	return room.ID, r.store.CreateRoom(ctx, room)
}

func (r *Runtime) GetRoom(ctx context.Context, roomID uuid.UUID) (*current.Room, error) {
	return r.store.GetRoom(ctx, roomID)
}

func (r *Runtime) DeleteRoom(ctx context.Context, roomID uuid.UUID) error {
	return r.store.DeleteRoom(ctx, roomID)
}

func (r *Runtime) AddParticipant(ctx context.Context, entityID, roomID uuid.UUID) error {
	return r.store.AddParticipant(ctx, entityID, roomID)
}

func (r *Runtime) RemoveParticipant(ctx context.Context, entityID, roomID uuid.UUID) error {
	return r.store.RemoveParticipant(ctx, entityID, roomID)
}

func (r *Runtime) GetParticipantsForRoom(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error) {
	return r.store.ListParticipants(ctx, roomID)
}

func (r *Runtime) GetRoomsForParticipant(ctx context.Context, entityID uuid.UUID) ([]uuid.UUID, error) {
	return r.store.ListRoomsForEntity(ctx, entityID)
}

func (r *Runtime) GetRoomsForParticipants(ctx context.Context, entityIDs []uuid.UUID) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]bool{}
	var out []uuid.UUID
	for _, entityID := range entityIDs {
		rooms, err := r.store.ListRoomsForEntity(ctx, entityID)
		if err != nil {
			return nil, err
		}
		for _, roomID := range rooms {
			if !seen[roomID] {
				seen[roomID] = true
				out = append(out, roomID)
			}
		}
	}
	return out, nil
}

func (r *Runtime) CreateEntity(ctx context.Context, entity current.Entity) (uuid.UUID, error) {
	if entity.ID == uuid.Nil {
		entity.ID = uuid.New()
	}
	return entity.ID, r.store.CreateEntity(ctx, entity)
}

func (r *Runtime) GetEntity(ctx context.Context, id uuid.UUID) (*current.Entity, error) {
	return r.store.GetEntity(ctx, id)
}

func (r *Runtime) CreateRelationship(ctx context.Context, rel current.Relationship) error {
	if rel.ID == uuid.Nil {
		rel.ID = uuid.New()
	}
	return r.store.CreateRelationship(ctx, rel)
}

func (r *Runtime) GetRelationship(ctx context.Context, sourceID, targetID uuid.UUID) (*current.Relationship, error) {
	return r.store.GetRelationship(ctx, sourceID, targetID)
}

func (r *Runtime) GetRelationships(ctx context.Context, entityID uuid.UUID) ([]current.Relationship, error) {
	return r.store.ListRelationships(ctx, entityID)
}

func (r *Runtime) GetService(name string) current.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.services[name]
}

func (r *Runtime) RegisterService(svc current.Service) error {
	if svc == nil || svc.Name() == "" {
		return errors.New(errors.CodeInvalidInput, "service requires a name", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[svc.Name()]; ok {
		return errors.New(errors.CodeDuplicate, "service already exists", nil).WithContext("name", svc.Name())
	}
	r.services[svc.Name()] = svc
	return nil
}

// UseModel dispatches to the handler registered for the model kind. An
// unregistered kind is an unavailable capability, not an internal error.
func (r *Runtime) UseModel(ctx context.Context, model current.ModelType, params map[string]any) (any, error) {
	r.mu.RLock()
	handler := r.models[model]
	r.mu.RUnlock()
	if handler == nil {
		return nil, errors.New(errors.CodeUnavailable, "no handler for model", nil).WithContext("model", string(model))
	}
	return handler(ctx, params)
}

// RegisterModel adds a model handler after construction.
func (r *Runtime) RegisterModel(model current.ModelType, handler ModelHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models[model] = handler
}

// HasModel reports whether a handler is registered for the model kind.
// Capability resolvers probe this before synthesizing a model-backed
// adapter.
func (r *Runtime) HasModel(model current.ModelType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.models[model] != nil
}

func (r *Runtime) RegisterAction(action current.Action) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.actions {
		if got.Name == action.Name {
			return errors.New(errors.CodeDuplicate, "action already exists", nil).WithContext("name", action.Name)
		}
	}
	r.actions = append(r.actions, action)
	return nil
}

func (r *Runtime) RegisterProvider(provider current.Provider) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.providers {
		if got.Name == provider.Name {
			return errors.New(errors.CodeDuplicate, "provider already exists", nil).WithContext("name", provider.Name)
		}
	}
	r.providers = append(r.providers, provider)
	return nil
}

func (r *Runtime) RegisterEvaluator(evaluator current.Evaluator) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.evaluators {
		if got.Name == evaluator.Name {
			return errors.New(errors.CodeDuplicate, "evaluator already exists", nil).WithContext("name", evaluator.Name)
		}
	}
	r.evaluators = append(r.evaluators, evaluator)
	return nil
}

func (r *Runtime) Actions() []current.Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]current.Action(nil), r.actions...)
}

func (r *Runtime) Providers() []current.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]current.Provider(nil), r.providers...)
}

func (r *Runtime) Evaluators() []current.Evaluator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]current.Evaluator(nil), r.evaluators...)
}

func (r *Runtime) SetCache(ctx context.Context, key string, value []byte) error {
	return r.store.SetCache(ctx, key, value)
}

func (r *Runtime) GetCache(ctx context.Context, key string) ([]byte, bool, error) {
	return r.store.GetCache(ctx, key)
}

// OnEvent subscribes to events emitted through EmitEvent.
func (r *Runtime) OnEvent(name string, fn func(map[string]any)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners[name] = append(r.listeners[name], fn)
}

func (r *Runtime) EmitEvent(_ context.Context, name string, payload map[string]any) {
	r.mu.RLock()
	fns := append([]func(map[string]any){}, r.listeners[name]...)
	r.mu.RUnlock()
	for _, fn := range fns {
		fn(payload)
	}
}

// Close releases the store and index.
func (r *Runtime) Close() error {
	var errs []error
	if err := r.index.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := r.store.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("engine close: %v", errs)
	}
	return nil
}

func renderMessages(ms []current.Memory) string {
	var sb strings.Builder
	for i, m := range ms {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(m.Content.Text)
	}
	return sb.String()
}
