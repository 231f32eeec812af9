// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package current

import "github.com/google/uuid"

// Task is a generic unit of tracked work. Old-generation goals are stored
// as tasks carrying a compatibility tag plus a metadata bag with the
// goal-only fields; see the translate package.
type Task struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	RoomID      uuid.UUID      `json:"roomId,omitempty"`
	WorldID     uuid.UUID      `json:"worldId,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	UpdatedAt   int64          `json:"updatedAt,omitempty"` // unix milliseconds
}

// HasTag reports whether the task carries tag.
func (t Task) HasTag(tag string) bool {
	for _, got := range t.Tags {
		if got == tag {
			return true
		}
	}
	return false
}

// TaskQuery filters task lookups.
type TaskQuery struct {
	RoomID uuid.UUID
	Tags   []string
	Name   string
}
