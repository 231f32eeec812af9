// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/engine"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/testkit"
)

func newTestManager(t *testing.T, table string) (*MemoryManager, *engine.Runtime) {
	t.Helper()
	eng := engine.New(current.Character{Name: "Ada"})
	return NewMemoryManager(eng, table), eng
}

func TestManagerCreateAndGet(t *testing.T) {
	mgr, _ := newTestManager(t, "facts")
	ctx := context.Background()
	roomID := uuid.New()

	memory := legacy.Memory{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		RoomID:    roomID,
		Content:   legacy.Content{Text: "water is wet"},
		CreatedAt: 1700000000000,
	}
	if err := mgr.CreateMemory(ctx, memory, false); err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}
	// Same row again is swallowed, not an error.
	if err := mgr.CreateMemory(ctx, memory, false); err != nil {
		t.Fatalf("duplicate CreateMemory: %v", err)
	}

	got, err := mgr.GetMemories(ctx, legacy.MemoryQuery{RoomID: roomID})
	if err != nil {
		t.Fatalf("GetMemories: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 memory, got %d", len(got))
	}
	if got[0].UserID != memory.UserID {
		t.Errorf("entity id should come back as user id, got %s", got[0].UserID)
	}

	byID, err := mgr.GetMemoryByID(ctx, memory.ID)
	if err != nil || byID == nil {
		t.Fatalf("GetMemoryByID: %v %v", byID, err)
	}
	if byID.Content.Text != "water is wet" {
		t.Errorf("content drift: %q", byID.Content.Text)
	}
}

func TestManagerTablesAreIsolated(t *testing.T) {
	eng := engine.New(current.Character{Name: "Ada"})
	facts := NewMemoryManager(eng, "facts")
	lore := NewMemoryManager(eng, "lore")
	ctx := context.Background()
	roomID := uuid.New()

	if err := facts.CreateMemory(ctx, legacy.Memory{
		ID: uuid.New(), RoomID: roomID, Content: legacy.Content{Text: "a fact"},
	}, false); err != nil {
		t.Fatalf("CreateMemory: %v", err)
	}

	got, err := lore.GetMemories(ctx, legacy.MemoryQuery{RoomID: roomID})
	if err != nil {
		t.Fatalf("GetMemories: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("lore manager should not see facts rows, got %d", len(got))
	}
}

func TestAddEmbeddingToMemory(t *testing.T) {
	mgr, eng := newTestManager(t, "messages")
	eng.RegisterModel(current.ModelTextEmbedding, testkit.ConstEmbedding([]float32{0.5, 0.5}))
	ctx := context.Background()

	got, err := mgr.AddEmbeddingToMemory(ctx, legacy.Memory{
		ID:      uuid.New(),
		Content: legacy.Content{Text: "embed me"},
	})
	if err != nil {
		t.Fatalf("AddEmbeddingToMemory: %v", err)
	}
	if len(got.Embedding) != 2 {
		t.Fatalf("embedding not filled: %v", got.Embedding)
	}

	// Existing embeddings are left alone.
	preset := legacy.Memory{Embedding: []float32{9}}
	got, err = mgr.AddEmbeddingToMemory(ctx, preset)
	if err != nil {
		t.Fatalf("AddEmbeddingToMemory: %v", err)
	}
	if len(got.Embedding) != 1 || got.Embedding[0] != 9 {
		t.Errorf("preset embedding replaced: %v", got.Embedding)
	}
}

func TestAddEmbeddingWithoutModel(t *testing.T) {
	mgr, _ := newTestManager(t, "messages")
	memory := legacy.Memory{Content: legacy.Content{Text: "no model"}}

	got, err := mgr.AddEmbeddingToMemory(context.Background(), memory)
	if err != nil {
		t.Fatalf("missing model should not error: %v", err)
	}
	if got.Embedding != nil {
		t.Errorf("memory should be unchanged, got embedding %v", got.Embedding)
	}
}

func TestManagerRemoveAllMemories(t *testing.T) {
	mgr, _ := newTestManager(t, "messages")
	ctx := context.Background()
	roomID := uuid.New()

	for i := 0; i < 3; i++ {
		if err := mgr.CreateMemory(ctx, legacy.Memory{
			ID: uuid.New(), RoomID: roomID, CreatedAt: int64(i),
			Content: legacy.Content{Text: "row"},
		}, false); err != nil {
			t.Fatalf("CreateMemory: %v", err)
		}
	}
	if err := mgr.RemoveAllMemories(ctx, roomID); err != nil {
		t.Fatalf("RemoveAllMemories: %v", err)
	}
	count, err := mgr.CountMemories(ctx, roomID, false)
	if err != nil {
		t.Fatalf("CountMemories: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty room, got %d rows", count)
	}
}
