// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

// MemoryToCurrent converts a legacy memory: userId becomes entityId and the
// top-level uniqueness flag moves into the metadata map.
func MemoryToCurrent(m legacy.Memory) current.Memory {
	out := current.Memory{
		ID:         m.ID,
		EntityID:   m.UserID,
		AgentID:    m.AgentID,
		RoomID:     m.RoomID,
		CreatedAt:  m.CreatedAt,
		Content:    ContentToCurrent(m.Content),
		Embedding:  copyFloats(m.Embedding),
		Similarity: copyFloatPtr(m.Similarity),
	}
	if m.Unique {
		out.Metadata = map[string]any{current.MetadataUnique: true}
	}
	return out
}

// MemoryToLegacy converts a current memory: entityId becomes userId and the
// uniqueness flag is lifted out of metadata to the top level.
func MemoryToLegacy(m current.Memory) legacy.Memory {
	return legacy.Memory{
		ID:         m.ID,
		UserID:     m.EntityID,
		AgentID:    m.AgentID,
		RoomID:     m.RoomID,
		CreatedAt:  m.CreatedAt,
		Content:    ContentToLegacy(m.Content),
		Embedding:  copyFloats(m.Embedding),
		Unique:     m.Unique(),
		Similarity: copyFloatPtr(m.Similarity),
	}
}

// MemoriesToCurrent converts a slice, preserving order.
func MemoriesToCurrent(ms []legacy.Memory) []current.Memory {
	if ms == nil {
		return nil
	}
	out := make([]current.Memory, len(ms))
	for i, m := range ms {
		out[i] = MemoryToCurrent(m)
	}
	return out
}

// MemoriesToLegacy converts a slice, preserving order.
func MemoriesToLegacy(ms []current.Memory) []legacy.Memory {
	if ms == nil {
		return nil
	}
	out := make([]legacy.Memory, len(ms))
	for i, m := range ms {
		out[i] = MemoryToLegacy(m)
	}
	return out
}

// RelationshipToLegacy maps a current relationship onto the legacy
// userA/userB pair shape.
func RelationshipToLegacy(r current.Relationship) legacy.Relationship {
	return legacy.Relationship{
		ID:    r.ID,
		UserA: r.SourceEntity,
		UserB: r.TargetEntity,
	}
}

// RelationshipToCurrent maps a legacy relationship onto the current
// source/target shape.
func RelationshipToCurrent(r legacy.Relationship) current.Relationship {
	return current.Relationship{
		ID:           r.ID,
		SourceEntity: r.UserA,
		TargetEntity: r.UserB,
	}
}

func copyFloatPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
