// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/telemetry"
	"github.com/wtfsayo/agentbridge/pkg/translate"
)

// MemoryManager implements the legacy table-scoped memory manager on top of
// the engine's table-parameterized memory operations.
type MemoryManager struct {
	engine current.Engine
	table  string
	log    *slog.Logger
}

var _ legacy.MemoryManager = (*MemoryManager)(nil)

// NewMemoryManager creates a manager bound to one table.
func NewMemoryManager(engine current.Engine, table string) *MemoryManager {
	return &MemoryManager{engine: engine, table: table, log: engine.Logger()}
}

func (m *MemoryManager) TableName() string { return m.table }

func (m *MemoryManager) CreateMemory(ctx context.Context, memory legacy.Memory, unique bool) error {
	memory.Unique = memory.Unique || unique
	telemetry.BridgeMetrics().RecordTranslate(ctx, "memory", "to_current")
	if _, err := m.engine.CreateMemory(ctx, translate.MemoryToCurrent(memory), m.table); err != nil {
		if errors.IsDuplicate(err) {
			telemetry.BridgeMetrics().RecordDuplicateSwallowed(ctx, "memoryManager.createMemory")
			m.log.DebugContext(ctx, "proxy.memory.duplicate.swallowed", slog.String("table", m.table))
			return nil
		}
		return m.fail(ctx, "createMemory", err)
	}
	return nil
}

func (m *MemoryManager) GetMemories(ctx context.Context, q legacy.MemoryQuery) ([]legacy.Memory, error) {
	memories, err := m.engine.GetMemories(ctx, current.MemoryQuery{
		Table:   m.table,
		RoomID:  q.RoomID,
		Count:   q.Count,
		Unique:  q.Unique,
		Start:   q.Start,
		End:     q.End,
		AgentID: q.AgentID,
	})
	if err != nil {
		return nil, m.fail(ctx, "getMemories", err)
	}
	telemetry.BridgeMetrics().RecordTranslate(ctx, "memory", "to_legacy")
	return translate.MemoriesToLegacy(memories), nil
}

func (m *MemoryManager) GetMemoryByID(ctx context.Context, id uuid.UUID) (*legacy.Memory, error) {
	memory, err := m.engine.GetMemoryByID(ctx, id)
	if err != nil {
		return nil, m.fail(ctx, "getMemoryById", err)
	}
	if memory == nil {
		return nil, nil
	}
	out := translate.MemoryToLegacy(*memory)
	return &out, nil
}

func (m *MemoryManager) SearchMemoriesByEmbedding(ctx context.Context, embedding []float32, q legacy.SearchQuery) ([]legacy.Memory, error) {
	memories, err := m.engine.SearchMemories(ctx, current.SearchQuery{
		Table:          m.table,
		RoomID:         q.RoomID,
		Embedding:      embedding,
		Count:          q.Count,
		MatchThreshold: q.MatchThreshold,
		Unique:         q.Unique,
	})
	if err != nil {
		return nil, m.fail(ctx, "searchMemoriesByEmbedding", err)
	}
	telemetry.BridgeMetrics().RecordTranslate(ctx, "memory", "to_legacy")
	return translate.MemoriesToLegacy(memories), nil
}

func (m *MemoryManager) RemoveMemory(ctx context.Context, id uuid.UUID) error {
	if err := m.engine.DeleteMemory(ctx, id); err != nil {
		return m.fail(ctx, "removeMemory", err)
	}
	return nil
}

func (m *MemoryManager) RemoveAllMemories(ctx context.Context, roomID uuid.UUID) error {
	if err := m.engine.DeleteAllMemories(ctx, roomID, m.table); err != nil {
		return m.fail(ctx, "removeAllMemories", err)
	}
	return nil
}

func (m *MemoryManager) CountMemories(ctx context.Context, roomID uuid.UUID, unique bool) (int, error) {
	count, err := m.engine.CountMemories(ctx, roomID, unique, m.table)
	if err != nil {
		return 0, m.fail(ctx, "countMemories", err)
	}
	return count, nil
}

// AddEmbeddingToMemory fills the embedding via the engine's embedding model
// when the memory has none. A missing embedding model leaves the memory
// unchanged: legacy callers treated embeddings as best effort.
func (m *MemoryManager) AddEmbeddingToMemory(ctx context.Context, memory legacy.Memory) (legacy.Memory, error) {
	if len(memory.Embedding) > 0 || memory.Content.Text == "" {
		return memory, nil
	}
	result, err := m.engine.UseModel(ctx, current.ModelTextEmbedding, map[string]any{
		current.ParamText: memory.Content.Text,
	})
	if err != nil {
		if errors.IsUnavailable(err) {
			m.log.DebugContext(ctx, "proxy.memory.embedding.unavailable")
			return memory, nil
		}
		return memory, m.fail(ctx, "addEmbeddingToMemory", err)
	}
	embedding, ok := result.([]float32)
	if !ok {
		return memory, errors.New(errors.CodeDelegate, "embedding model returned unexpected shape", nil)
	}
	memory.Embedding = embedding
	return memory, nil
}

func (m *MemoryManager) fail(ctx context.Context, op string, err error) error {
	m.log.ErrorContext(ctx, "proxy.memory.delegate.error",
		slog.String("op", op),
		slog.String("table", m.table),
		slog.String("error", err.Error()),
	)
	return err
}
