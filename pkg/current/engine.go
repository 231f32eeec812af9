// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package current

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Character is the agent persona as the newer generation sees it.
type Character struct {
	Name              string   `json:"name"`
	Bio               []string `json:"bio"`
	Lore              []string `json:"lore,omitempty"`
	MessageDirections string   `json:"messageDirections,omitempty"`
	PostDirections    string   `json:"postDirections,omitempty"`
}

// Engine is the newer-generation runtime surface the bridge consumes. All
// operations are asynchronous in spirit: they take a context and may fail
// with engine-defined errors. The bridge never persists anything itself; it
// delegates to these calls.
type Engine interface {
	AgentID() uuid.UUID
	Character() Character
	Logger() *slog.Logger

	// ComposeState runs the engine's own provider pipeline for msg.
	ComposeState(ctx context.Context, msg Memory) (State, error)

	CreateMemory(ctx context.Context, memory Memory, table string) (uuid.UUID, error)
	GetMemoryByID(ctx context.Context, id uuid.UUID) (*Memory, error)
	GetMemories(ctx context.Context, q MemoryQuery) ([]Memory, error)
	SearchMemories(ctx context.Context, q SearchQuery) ([]Memory, error)
	UpdateMemory(ctx context.Context, memory Memory) error
	DeleteMemory(ctx context.Context, id uuid.UUID) error
	DeleteAllMemories(ctx context.Context, roomID uuid.UUID, table string) error
	CountMemories(ctx context.Context, roomID uuid.UUID, unique bool, table string) (int, error)

	CreateTask(ctx context.Context, task Task) (uuid.UUID, error)
	GetTask(ctx context.Context, id uuid.UUID) (*Task, error)
	GetTasks(ctx context.Context, q TaskQuery) ([]Task, error)
	UpdateTask(ctx context.Context, task Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error

	CreateRoom(ctx context.Context, room Room) (uuid.UUID, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (*Room, error)
	DeleteRoom(ctx context.Context, roomID uuid.UUID) error
	AddParticipant(ctx context.Context, entityID, roomID uuid.UUID) error
	RemoveParticipant(ctx context.Context, entityID, roomID uuid.UUID) error
	GetParticipantsForRoom(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error)
	GetRoomsForParticipant(ctx context.Context, entityID uuid.UUID) ([]uuid.UUID, error)
	GetRoomsForParticipants(ctx context.Context, entityIDs []uuid.UUID) ([]uuid.UUID, error)

	CreateEntity(ctx context.Context, entity Entity) (uuid.UUID, error)
	GetEntity(ctx context.Context, id uuid.UUID) (*Entity, error)

	CreateRelationship(ctx context.Context, rel Relationship) error
	GetRelationship(ctx context.Context, sourceID, targetID uuid.UUID) (*Relationship, error)
	GetRelationships(ctx context.Context, entityID uuid.UUID) ([]Relationship, error)

	// GetService returns the running capability registered under name, or
	// nil when none is.
	GetService(name string) Service

	// UseModel invokes a model of the given kind with a parameter bag. The
	// result type depends on the model kind: string for text models,
	// []float32 for embeddings, []byte for audio.
	UseModel(ctx context.Context, model ModelType, params map[string]any) (any, error)

	RegisterAction(action Action) error
	RegisterProvider(provider Provider) error
	RegisterEvaluator(evaluator Evaluator) error
	RegisterService(svc Service) error
	Actions() []Action
	Providers() []Provider
	Evaluators() []Evaluator

	SetCache(ctx context.Context, key string, value []byte) error
	GetCache(ctx context.Context, key string) ([]byte, bool, error)

	// EmitEvent publishes a runtime event to engine subscribers.
	EmitEvent(ctx context.Context, name string, payload map[string]any)
}
