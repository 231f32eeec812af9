// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Match is a vector search hit.
type Match struct {
	ID    uuid.UUID
	Score float64
}

// VectorIndex stores memory embeddings and answers nearest-neighbor
// queries. The reference engine ships an in-process cosine index; the
// qdrant subpackage provides a server-backed one.
type VectorIndex interface {
	Upsert(ctx context.Context, id uuid.UUID, vector []float32) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, vector []float32, limit int) ([]Match, error)
	Close() error
}

// MemIndex is a brute-force cosine-similarity index.
type MemIndex struct {
	mu      sync.RWMutex
	vectors map[uuid.UUID][]float32
}

// NewMemIndex creates an empty index.
func NewMemIndex() *MemIndex {
	return &MemIndex{vectors: map[uuid.UUID][]float32{}}
}

func (i *MemIndex) Upsert(_ context.Context, id uuid.UUID, vector []float32) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.vectors[id] = append([]float32(nil), vector...)
	return nil
}

func (i *MemIndex) Delete(_ context.Context, id uuid.UUID) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.vectors, id)
	return nil
}

func (i *MemIndex) Search(_ context.Context, vector []float32, limit int) ([]Match, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	matches := make([]Match, 0, len(i.vectors))
	for id, candidate := range i.vectors {
		matches = append(matches, Match{ID: id, Score: cosine(vector, candidate)})
	}
	sort.Slice(matches, func(a, b int) bool { return matches[a].Score > matches[b].Score })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (i *MemIndex) Close() error { return nil }

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for n := range a {
		dot += float64(a[n]) * float64(b[n])
		normA += float64(a[n]) * float64(a[n])
		normB += float64(b[n]) * float64(b[n])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
