// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package engine provides a reference implementation of the current-engine
// contract for development and tests. Production callers bring their own
// engine; nothing in the bridge layers depends on this package.
package engine

import (
	"context"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
)

// Store is the persistence surface behind the reference engine. Create
// operations return a duplicate-class error (errors.CodeDuplicate) when the
// row already exists, mirroring how production engines signal duplication.
type Store interface {
	CreateMemory(ctx context.Context, m current.Memory, table string) error
	GetMemory(ctx context.Context, id uuid.UUID) (*current.Memory, error)
	ListMemories(ctx context.Context, q current.MemoryQuery) ([]current.Memory, error)
	UpdateMemory(ctx context.Context, m current.Memory) error
	DeleteMemory(ctx context.Context, id uuid.UUID) error
	DeleteMemoriesByRoom(ctx context.Context, roomID uuid.UUID, table string) error
	CountMemories(ctx context.Context, roomID uuid.UUID, unique bool, table string) (int, error)

	CreateTask(ctx context.Context, t current.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*current.Task, error)
	ListTasks(ctx context.Context, q current.TaskQuery) ([]current.Task, error)
	UpdateTask(ctx context.Context, t current.Task) error
	DeleteTask(ctx context.Context, id uuid.UUID) error

	CreateRoom(ctx context.Context, room current.Room) error
	GetRoom(ctx context.Context, id uuid.UUID) (*current.Room, error)
	DeleteRoom(ctx context.Context, id uuid.UUID) error

	AddParticipant(ctx context.Context, entityID, roomID uuid.UUID) error
	RemoveParticipant(ctx context.Context, entityID, roomID uuid.UUID) error
	ListParticipants(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error)
	ListRoomsForEntity(ctx context.Context, entityID uuid.UUID) ([]uuid.UUID, error)

	CreateEntity(ctx context.Context, e current.Entity) error
	GetEntity(ctx context.Context, id uuid.UUID) (*current.Entity, error)

	CreateRelationship(ctx context.Context, r current.Relationship) error
	GetRelationship(ctx context.Context, sourceID, targetID uuid.UUID) (*current.Relationship, error)
	ListRelationships(ctx context.Context, entityID uuid.UUID) ([]current.Relationship, error)

	SetCache(ctx context.Context, key string, value []byte) error
	GetCache(ctx context.Context, key string) ([]byte, bool, error)

	Close() error
}
