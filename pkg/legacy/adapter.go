// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package legacy

import (
	"context"

	"github.com/google/uuid"
)

// MemoryQuery filters memory listings.
type MemoryQuery struct {
	RoomID  uuid.UUID
	Count   int
	Unique  bool
	Start   int64 // unix milliseconds, inclusive
	End     int64 // unix milliseconds, exclusive; 0 means open
	AgentID *uuid.UUID
}

// SearchQuery filters embedding searches.
type SearchQuery struct {
	RoomID         uuid.UUID
	Count          int
	MatchThreshold float64
	Unique         bool
}

// DatabaseAdapter is the old-generation persistence contract. The bridge
// implements it by forwarding to current-engine storage operations; nothing
// behind this interface owns rows of its own.
type DatabaseAdapter interface {
	GetAccountByID(ctx context.Context, userID uuid.UUID) (*Account, error)
	CreateAccount(ctx context.Context, account Account) (bool, error)

	GetMemories(ctx context.Context, table string, q MemoryQuery) ([]Memory, error)
	GetMemoryByID(ctx context.Context, id uuid.UUID) (*Memory, error)
	CreateMemory(ctx context.Context, memory Memory, table string, unique bool) error
	SearchMemories(ctx context.Context, table string, embedding []float32, q SearchQuery) ([]Memory, error)
	RemoveMemory(ctx context.Context, id uuid.UUID, table string) error
	RemoveAllMemories(ctx context.Context, roomID uuid.UUID, table string) error
	CountMemories(ctx context.Context, roomID uuid.UUID, unique bool, table string) (int, error)

	GetGoals(ctx context.Context, q GoalQuery) ([]Goal, error)
	CreateGoal(ctx context.Context, goal Goal) error
	UpdateGoal(ctx context.Context, goal Goal) error
	UpdateGoalStatus(ctx context.Context, goalID uuid.UUID, status GoalStatus) error
	RemoveGoal(ctx context.Context, goalID uuid.UUID) error
	RemoveAllGoals(ctx context.Context, roomID uuid.UUID) error

	GetRoom(ctx context.Context, roomID uuid.UUID) (*Room, error)
	CreateRoom(ctx context.Context, roomID uuid.UUID) (uuid.UUID, error)
	RemoveRoom(ctx context.Context, roomID uuid.UUID) error
	GetRoomsForParticipant(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	GetRoomsForParticipants(ctx context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error)

	AddParticipant(ctx context.Context, userID, roomID uuid.UUID) (bool, error)
	RemoveParticipant(ctx context.Context, userID, roomID uuid.UUID) (bool, error)
	GetParticipantsForRoom(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error)
	GetParticipantsForAccount(ctx context.Context, userID uuid.UUID) ([]Account, error)

	GetRelationship(ctx context.Context, userA, userB uuid.UUID) (*Relationship, error)
	GetRelationships(ctx context.Context, userID uuid.UUID) ([]Relationship, error)
	CreateRelationship(ctx context.Context, userA, userB uuid.UUID) (bool, error)

	GetCachedEmbeddings(ctx context.Context, content string) ([]float32, bool, error)
	SetCache(ctx context.Context, key string, value []byte) error
	GetCache(ctx context.Context, key string) ([]byte, bool, error)
}

// MemoryManager scopes memory operations to a single table.
type MemoryManager interface {
	TableName() string

	CreateMemory(ctx context.Context, memory Memory, unique bool) error
	GetMemories(ctx context.Context, q MemoryQuery) ([]Memory, error)
	GetMemoryByID(ctx context.Context, id uuid.UUID) (*Memory, error)
	SearchMemoriesByEmbedding(ctx context.Context, embedding []float32, q SearchQuery) ([]Memory, error)
	RemoveMemory(ctx context.Context, id uuid.UUID) error
	RemoveAllMemories(ctx context.Context, roomID uuid.UUID) error
	CountMemories(ctx context.Context, roomID uuid.UUID, unique bool) (int, error)

	// AddEmbeddingToMemory fills the embedding vector if absent.
	AddEmbeddingToMemory(ctx context.Context, memory Memory) (Memory, error)
}

// KnowledgeManager stores and retrieves knowledge items.
type KnowledgeManager interface {
	Get(ctx context.Context, msg Memory) ([]KnowledgeItem, error)
	Set(ctx context.Context, item KnowledgeItem) error
}
