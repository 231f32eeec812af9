// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

// KnowledgeToMemory represents a legacy knowledge item as a current memory
// so the engine's generic memory storage can hold it.
func KnowledgeToMemory(item legacy.KnowledgeItem) current.Memory {
	return current.Memory{
		ID:      item.ID,
		Content: ContentToCurrent(item.Content),
	}
}

// MemoryToKnowledge recovers a legacy knowledge item from a stored memory.
func MemoryToKnowledge(m current.Memory) legacy.KnowledgeItem {
	return legacy.KnowledgeItem{
		ID:      m.ID,
		Content: ContentToLegacy(m.Content),
	}
}
