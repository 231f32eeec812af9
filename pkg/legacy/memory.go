// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package legacy defines the older-generation agent runtime contract: flat
// conversational state, userId-addressed memories and participant-scoped
// goals. Plugins written against this contract are bridged onto a
// current-generation engine by the bridge, proxy and translate packages.
package legacy

import (
	"github.com/google/uuid"
)

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

// Content is the payload of a single conversational turn. Action holds at
// most one action name; the current generation stores a list instead.
// Unknown fields round-trip through Extra.
type Content struct {
	Text        string         `json:"text"`
	Action      string         `json:"action,omitempty"`
	Source      string         `json:"source,omitempty"`
	URL         string         `json:"url,omitempty"`
	InReplyTo   *uuid.UUID     `json:"inReplyTo,omitempty"`
	Attachments []Media        `json:"attachments,omitempty"`
	Extra       map[string]any `json:"-"`
}

// Memory is a unit of conversational memory addressed by userId.
type Memory struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"userId"`
	AgentID    uuid.UUID `json:"agentId"`
	RoomID     uuid.UUID `json:"roomId"`
	CreatedAt  int64     `json:"createdAt,omitempty"` // unix milliseconds
	Content    Content   `json:"content"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Unique     bool      `json:"unique,omitempty"`
	Similarity *float64  `json:"similarity,omitempty"`
}

// ActionExample is a labeled example turn; the speaker field is named User
// in this generation.
type ActionExample struct {
	User    string  `json:"user"`
	Content Content `json:"content"`
}

// Actor describes a conversation participant.
type Actor struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Username string    `json:"username"`
	Details  string    `json:"details,omitempty"`
}

// Account is a stored user record.
type Account struct {
	ID       uuid.UUID      `json:"id"`
	Name     string         `json:"name"`
	Username string         `json:"username"`
	Email    string         `json:"email,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
}

// Room is a conversation container.
type Room struct {
	ID     uuid.UUID `json:"id"`
	Source string    `json:"source,omitempty"`
	Name   string    `json:"name,omitempty"`
}

// Relationship links two users.
type Relationship struct {
	ID     uuid.UUID `json:"id"`
	UserA  uuid.UUID `json:"userA"`
	UserB  uuid.UUID `json:"userB"`
	RoomID uuid.UUID `json:"roomId,omitempty"`
	Status string    `json:"status,omitempty"`
}

// KnowledgeItem is a retrievable knowledge fragment.
type KnowledgeItem struct {
	ID      uuid.UUID `json:"id"`
	Content Content   `json:"content"`
}

// CloneContent returns a deep copy of c. Attachment and extension maps are
// copied so callers on either side of the bridge never alias each other.
func CloneContent(c Content) Content {
	out := c
	if c.InReplyTo != nil {
		id := *c.InReplyTo
		out.InReplyTo = &id
	}
	if c.Attachments != nil {
		out.Attachments = make([]Media, len(c.Attachments))
		copy(out.Attachments, c.Attachments)
		for i := range out.Attachments {
			out.Attachments[i].Extra = cloneMap(c.Attachments[i].Extra)
		}
	}
	out.Extra = cloneMap(c.Extra)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
