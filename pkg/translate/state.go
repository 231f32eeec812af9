// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

// Scalar state fields that live in the current Values map. Character fields
// may also appear as top-level extension fields; lookups check Values first
// and fall back to the envelope (see characterKeys).
const (
	keyAgentID            = "agentId"
	keyRoomID             = "roomId"
	keyAgentName          = "agentName"
	keyBio                = "bio"
	keyLore               = "lore"
	keyMessageDirections  = "messageDirections"
	keyPostDirections     = "postDirections"
	keyActors             = "actors"
	keyGoals              = "goals"
	keyRecentMessages     = "recentMessages"
	keyRecentInteractions = "recentInteractions"
	keyActionNames        = "actionNames"
	keyActions            = "actions"
	keyActionExamples     = "actionExamples"
	keyEvaluatorNames     = "evaluatorNames"
	keyEvaluators         = "evaluators"
	keyEvaluatorExamples  = "evaluatorExamples"
	keyProviders          = "providers"
)

// Structured state fields that live in the current Data map.
const (
	keyActorsData             = "actorsData"
	keyGoalsData              = "goalsData"
	keyRecentMessagesData     = "recentMessagesData"
	keyRecentInteractionsData = "recentInteractionsData"
	keyActionsData            = "actionsData"
	keyEvaluatorsData         = "evaluatorsData"
)

// characterKeys are looked up in Values first, then in the envelope's
// top-level extension fields.
var characterKeys = map[string]bool{
	keyAgentName:         true,
	keyBio:               true,
	keyLore:              true,
	keyMessageDirections: true,
	keyPostDirections:    true,
}

var knownValueKeys = map[string]bool{
	keyAgentID: true, keyRoomID: true,
	keyAgentName: true, keyBio: true, keyLore: true,
	keyMessageDirections: true, keyPostDirections: true,
	keyActors: true, keyGoals: true,
	keyRecentMessages: true, keyRecentInteractions: true,
	keyActionNames: true, keyActions: true, keyActionExamples: true,
	keyEvaluatorNames: true, keyEvaluators: true, keyEvaluatorExamples: true,
	keyProviders: true,
}

var knownDataKeys = map[string]bool{
	keyActorsData: true, keyGoalsData: true,
	keyRecentMessagesData: true, keyRecentInteractionsData: true,
	keyActionsData: true, keyEvaluatorsData: true,
}

// StateToLegacy flattens a current two-part state into the legacy record.
// Every string field missing from Values defaults to "" and every array
// field missing from Data defaults to an empty slice. Fields not recognized
// by name are preserved in the legacy Extra map.
func StateToLegacy(s current.State) *legacy.State {
	out := &legacy.State{
		AgentID:            readUUID(s.Values, keyAgentID),
		RoomID:             readUUID(s.Values, keyRoomID),
		AgentName:          readCharacter(s, keyAgentName),
		Bio:                readCharacter(s, keyBio),
		Lore:               readCharacter(s, keyLore),
		MessageDirections:  readCharacter(s, keyMessageDirections),
		PostDirections:     readCharacter(s, keyPostDirections),
		Actors:             readString(s.Values, keyActors),
		Goals:              readString(s.Values, keyGoals),
		RecentMessages:     readString(s.Values, keyRecentMessages),
		RecentInteractions: readString(s.Values, keyRecentInteractions),
		ActionNames:        readString(s.Values, keyActionNames),
		Actions:            readString(s.Values, keyActions),
		ActionExamples:     readString(s.Values, keyActionExamples),
		EvaluatorNames:     readString(s.Values, keyEvaluatorNames),
		Evaluators:         readString(s.Values, keyEvaluators),
		EvaluatorExamples:  readString(s.Values, keyEvaluatorExamples),
		Providers:          readString(s.Values, keyProviders),
		Text:               s.Text,

		ActorsData:             readActors(s.Data[keyActorsData]),
		GoalsData:              readGoals(s.Data[keyGoalsData]),
		RecentMessagesData:     readMemories(s.Data[keyRecentMessagesData]),
		RecentInteractionsData: readMemories(s.Data[keyRecentInteractionsData]),
		ActionsData:            readActions(s.Data[keyActionsData]),
		EvaluatorsData:         readEvaluators(s.Data[keyEvaluatorsData]),
	}

	extra := map[string]any{}
	for k, v := range s.Values {
		if !knownValueKeys[k] {
			extra[k] = v
		}
	}
	for k, v := range s.Data {
		if !knownDataKeys[k] {
			extra[k] = v
		}
	}
	for k, v := range s.Extra {
		if !characterKeys[k] {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		out.Extra = extra
	}
	return out
}

// StateToCurrent splits a legacy flat state into the current two-part
// shape: scalar fields into Values, structured arrays into Data, unknown
// extension fields onto the envelope.
func StateToCurrent(s *legacy.State) current.State {
	if s == nil {
		return current.NewState()
	}
	out := current.NewState()

	out.Values[keyAgentID] = s.AgentID
	out.Values[keyRoomID] = s.RoomID
	out.Values[keyAgentName] = s.AgentName
	out.Values[keyBio] = s.Bio
	out.Values[keyLore] = s.Lore
	out.Values[keyMessageDirections] = s.MessageDirections
	out.Values[keyPostDirections] = s.PostDirections
	out.Values[keyActors] = s.Actors
	out.Values[keyGoals] = s.Goals
	out.Values[keyRecentMessages] = s.RecentMessages
	out.Values[keyRecentInteractions] = s.RecentInteractions
	out.Values[keyActionNames] = s.ActionNames
	out.Values[keyActions] = s.Actions
	out.Values[keyActionExamples] = s.ActionExamples
	out.Values[keyEvaluatorNames] = s.EvaluatorNames
	out.Values[keyEvaluators] = s.Evaluators
	out.Values[keyEvaluatorExamples] = s.EvaluatorExamples
	out.Values[keyProviders] = s.Providers
	out.Text = s.Text

	out.Data[keyActorsData] = append([]legacy.Actor{}, s.ActorsData...)
	out.Data[keyGoalsData] = cloneGoals(s.GoalsData)
	out.Data[keyRecentMessagesData] = MemoriesToCurrent(orEmptyMemories(s.RecentMessagesData))
	out.Data[keyRecentInteractionsData] = MemoriesToCurrent(orEmptyMemories(s.RecentInteractionsData))
	out.Data[keyActionsData] = append([]legacy.Action{}, s.ActionsData...)
	out.Data[keyEvaluatorsData] = append([]legacy.Evaluator{}, s.EvaluatorsData...)

	for k, v := range s.Extra {
		out.Extra[k] = v
	}
	return out
}

func readString(values map[string]any, key string) string {
	if values == nil {
		return ""
	}
	s, _ := values[key].(string)
	return s
}

// readCharacter looks a character field up in Values first, then in the
// envelope's top-level extension fields.
func readCharacter(s current.State, key string) string {
	if v, ok := s.Values[key].(string); ok && v != "" {
		return v
	}
	v, _ := s.Extra[key].(string)
	return v
}

func readUUID(values map[string]any, key string) uuid.UUID {
	switch v := values[key].(type) {
	case uuid.UUID:
		return v
	case string:
		if id, err := uuid.Parse(v); err == nil {
			return id
		}
	}
	return uuid.Nil
}

func readMemories(v any) []legacy.Memory {
	switch ms := v.(type) {
	case []current.Memory:
		out := MemoriesToLegacy(ms)
		if out == nil {
			out = []legacy.Memory{}
		}
		return out
	case []legacy.Memory:
		return append([]legacy.Memory{}, ms...)
	}
	return []legacy.Memory{}
}

func readGoals(v any) []legacy.Goal {
	switch gs := v.(type) {
	case []legacy.Goal:
		return cloneGoals(gs)
	case []current.Task:
		out := []legacy.Goal{}
		for _, t := range gs {
			if g := TaskToGoal(t); g != nil {
				out = append(out, *g)
			}
		}
		return out
	}
	return []legacy.Goal{}
}

func readActors(v any) []legacy.Actor {
	if actors, ok := v.([]legacy.Actor); ok {
		return append([]legacy.Actor{}, actors...)
	}
	return []legacy.Actor{}
}

func readActions(v any) []legacy.Action {
	if actions, ok := v.([]legacy.Action); ok {
		return append([]legacy.Action{}, actions...)
	}
	return []legacy.Action{}
}

func readEvaluators(v any) []legacy.Evaluator {
	if evs, ok := v.([]legacy.Evaluator); ok {
		return append([]legacy.Evaluator{}, evs...)
	}
	return []legacy.Evaluator{}
}

func cloneGoals(gs []legacy.Goal) []legacy.Goal {
	out := make([]legacy.Goal, len(gs))
	for i, g := range gs {
		out[i] = legacy.CloneGoal(g)
	}
	return out
}

func orEmptyMemories(ms []legacy.Memory) []legacy.Memory {
	if ms == nil {
		return []legacy.Memory{}
	}
	return ms
}
