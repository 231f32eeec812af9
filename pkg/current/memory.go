// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package current

import "github.com/google/uuid"

// MetadataUnique is the memory metadata key holding the uniqueness flag,
// which the old generation keeps as a top-level boolean.
const MetadataUnique = "unique"

// Media is an attachment carried by message content.
type Media struct {
	ID          uuid.UUID      `json:"id"`
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Source      string         `json:"source"`
	Description string         `json:"description"`
	Text        string         `json:"text"`
	Extra       map[string]any `json:"-"`
}

// Content is the payload of a conversational turn. Actions holds zero or
// more action names; the old generation stores a single optional string.
type Content struct {
	Text        string         `json:"text"`
	Actions     []string       `json:"actions,omitempty"`
	Source      string         `json:"source,omitempty"`
	URL         string         `json:"url,omitempty"`
	InReplyTo   *uuid.UUID     `json:"inReplyTo,omitempty"`
	Attachments []Media        `json:"attachments,omitempty"`
	Extra       map[string]any `json:"-"`
}

// Memory is a unit of conversational memory addressed by entityId.
type Memory struct {
	ID         uuid.UUID      `json:"id"`
	EntityID   uuid.UUID      `json:"entityId"`
	AgentID    uuid.UUID      `json:"agentId"`
	RoomID     uuid.UUID      `json:"roomId"`
	CreatedAt  int64          `json:"createdAt,omitempty"` // unix milliseconds
	Content    Content        `json:"content"`
	Embedding  []float32      `json:"embedding,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Similarity *float64       `json:"similarity,omitempty"`
}

// Unique reports the uniqueness flag stored in metadata.
func (m Memory) Unique() bool {
	if m.Metadata == nil {
		return false
	}
	u, _ := m.Metadata[MetadataUnique].(bool)
	return u
}

// ActionExample is a labeled example turn; the speaker field is named Name
// in this generation.
type ActionExample struct {
	Name    string  `json:"name"`
	Content Content `json:"content"`
}

// Entity is a participant record (person, agent or other actor).
type Entity struct {
	ID       uuid.UUID      `json:"id"`
	AgentID  uuid.UUID      `json:"agentId"`
	Names    []string       `json:"names"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Room is a conversation container.
type Room struct {
	ID     uuid.UUID `json:"id"`
	Source string    `json:"source,omitempty"`
	Name   string    `json:"name,omitempty"`
}

// Relationship links two entities.
type Relationship struct {
	ID            uuid.UUID      `json:"id"`
	SourceEntity  uuid.UUID      `json:"sourceEntityId"`
	TargetEntity  uuid.UUID      `json:"targetEntityId"`
	Tags          []string       `json:"tags,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// MemoryQuery filters memory listings.
type MemoryQuery struct {
	Table   string
	RoomID  uuid.UUID
	Count   int
	Unique  bool
	Start   int64 // unix milliseconds, inclusive
	End     int64 // unix milliseconds, exclusive; 0 means open
	AgentID *uuid.UUID
}

// SearchQuery filters embedding searches.
type SearchQuery struct {
	Table          string
	RoomID         uuid.UUID
	Embedding      []float32
	Count          int
	MatchThreshold float64
	Unique         bool
}
