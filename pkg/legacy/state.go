// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package legacy

import "github.com/google/uuid"

// State is the composed conversational context in its flat, old-generation
// shape: every named field is a direct property. Pre-rendered text blocks
// live next to the structured arrays they were rendered from. Fields not
// recognized by name are preserved in Extra.
type State struct {
	AgentID   uuid.UUID `json:"agentId"`
	AgentName string    `json:"agentName"`
	RoomID    uuid.UUID `json:"roomId"`

	// Character fields.
	Bio               string `json:"bio"`
	Lore              string `json:"lore"`
	MessageDirections string `json:"messageDirections"`
	PostDirections    string `json:"postDirections"`

	// Rendered text blocks.
	Actors             string `json:"actors"`
	Goals              string `json:"goals"`
	RecentMessages     string `json:"recentMessages"`
	RecentInteractions string `json:"recentInteractions"`
	ActionNames        string `json:"actionNames"`
	Actions            string `json:"actions"`
	ActionExamples     string `json:"actionExamples"`
	EvaluatorNames     string `json:"evaluatorNames"`
	Evaluators         string `json:"evaluators"`
	EvaluatorExamples  string `json:"evaluatorExamples"`
	Providers          string `json:"providers"`
	Text               string `json:"text"`

	// Structured arrays backing the rendered blocks.
	ActorsData             []Actor     `json:"actorsData"`
	GoalsData              []Goal      `json:"goalsData"`
	RecentMessagesData     []Memory    `json:"recentMessagesData"`
	RecentInteractionsData []Memory    `json:"recentInteractionsData"`
	ActionsData            []Action    `json:"actionsData"`
	EvaluatorsData         []Evaluator `json:"evaluatorsData"`

	// Extra preserves fields that have no named slot, end to end.
	Extra map[string]any `json:"-"`
}

// CloneState returns a copy of s with all arrays and the extension map
// copied, so mutation on one side of the bridge never leaks to the other.
func CloneState(s *State) *State {
	if s == nil {
		return nil
	}
	out := *s
	out.ActorsData = append([]Actor(nil), s.ActorsData...)
	out.GoalsData = append([]Goal(nil), s.GoalsData...)
	out.RecentMessagesData = append([]Memory(nil), s.RecentMessagesData...)
	out.RecentInteractionsData = append([]Memory(nil), s.RecentInteractionsData...)
	out.ActionsData = append([]Action(nil), s.ActionsData...)
	out.EvaluatorsData = append([]Evaluator(nil), s.EvaluatorsData...)
	out.Extra = cloneMap(s.Extra)
	return &out
}
