// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

func testLegacyState() *legacy.State {
	return &legacy.State{
		AgentID:            uuid.MustParse("11111111-0000-4000-8000-000000000001"),
		AgentName:          "Ada",
		RoomID:             uuid.MustParse("11111111-0000-4000-8000-000000000002"),
		Bio:                "a helpful agent",
		Lore:               "remembers everything",
		MessageDirections:  "be concise",
		PostDirections:     "be verbose",
		Actors:             "Ada, Bob",
		Goals:              "ship the bridge",
		RecentMessages:     "hello\nworld",
		RecentInteractions: "",
		ActionNames:        "WAVE",
		Actions:            "WAVE: greet",
		ActionExamples:     "",
		EvaluatorNames:     "",
		Evaluators:         "",
		EvaluatorExamples:  "",
		Providers:          "",
		Text:               "context text",

		ActorsData:             []legacy.Actor{{ID: uuid.MustParse("11111111-0000-4000-8000-000000000003"), Name: "Bob"}},
		GoalsData:              []legacy.Goal{},
		RecentMessagesData:     []legacy.Memory{},
		RecentInteractionsData: []legacy.Memory{},
		ActionsData:            []legacy.Action{},
		EvaluatorsData:         []legacy.Evaluator{},
		Extra:                  map[string]any{"price": "$100"},
	}
}

func TestStateRoundTripLegacyFirst(t *testing.T) {
	in := testLegacyState()
	got := StateToLegacy(StateToCurrent(in))
	if !reflect.DeepEqual(in, got) {
		t.Errorf("legacy->current->legacy drift:\n  in:  %+v\n  out: %+v", in, got)
	}
}

func testCurrentState() current.State {
	s := current.NewState()
	s.Values["agentId"] = uuid.MustParse("22222222-0000-4000-8000-000000000001")
	s.Values["roomId"] = uuid.MustParse("22222222-0000-4000-8000-000000000002")
	s.Values["agentName"] = "Ada"
	s.Values["bio"] = "a helpful agent"
	s.Values["lore"] = "remembers everything"
	s.Values["messageDirections"] = "be concise"
	s.Values["postDirections"] = "be verbose"
	s.Values["actors"] = "Ada, Bob"
	s.Values["goals"] = "ship the bridge"
	s.Values["recentMessages"] = "hello\nworld"
	s.Values["recentInteractions"] = ""
	s.Values["actionNames"] = "WAVE"
	s.Values["actions"] = "WAVE: greet"
	s.Values["actionExamples"] = ""
	s.Values["evaluatorNames"] = ""
	s.Values["evaluators"] = ""
	s.Values["evaluatorExamples"] = ""
	s.Values["providers"] = ""
	s.Text = "context text"

	s.Data["actorsData"] = []legacy.Actor{{ID: uuid.MustParse("22222222-0000-4000-8000-000000000003"), Name: "Bob"}}
	s.Data["goalsData"] = []legacy.Goal{}
	s.Data["recentMessagesData"] = []current.Memory{
		{
			ID:        uuid.MustParse("22222222-0000-4000-8000-000000000004"),
			EntityID:  uuid.MustParse("22222222-0000-4000-8000-000000000005"),
			RoomID:    uuid.MustParse("22222222-0000-4000-8000-000000000002"),
			CreatedAt: 1700000000000,
			Content:   current.Content{Text: "hello", Actions: []string{"WAVE"}},
		},
	}
	s.Data["recentInteractionsData"] = []current.Memory{}
	s.Data["actionsData"] = []legacy.Action{}
	s.Data["evaluatorsData"] = []legacy.Evaluator{}
	s.Extra["price"] = "$100"
	return s
}

func TestStateRoundTripCurrentFirst(t *testing.T) {
	in := testCurrentState()
	got := StateToCurrent(StateToLegacy(in))
	if !reflect.DeepEqual(in, got) {
		t.Errorf("current->legacy->current drift:\n  in:  %+v\n  out: %+v", in, got)
	}
}

func TestStateDefaultCompleteness(t *testing.T) {
	state := StateToLegacy(current.NewState())

	strings := map[string]string{
		"agentName": state.AgentName, "bio": state.Bio, "lore": state.Lore,
		"messageDirections": state.MessageDirections, "postDirections": state.PostDirections,
		"actors": state.Actors, "goals": state.Goals,
		"recentMessages": state.RecentMessages, "recentInteractions": state.RecentInteractions,
		"actionNames": state.ActionNames, "actions": state.Actions,
		"actionExamples": state.ActionExamples, "evaluatorNames": state.EvaluatorNames,
		"evaluators": state.Evaluators, "evaluatorExamples": state.EvaluatorExamples,
		"providers": state.Providers, "text": state.Text,
	}
	for name, v := range strings {
		if v != "" {
			t.Errorf("field %s: expected empty default, got %q", name, v)
		}
	}

	if state.ActorsData == nil || state.GoalsData == nil ||
		state.RecentMessagesData == nil || state.RecentInteractionsData == nil ||
		state.ActionsData == nil || state.EvaluatorsData == nil {
		t.Error("expected every array field to default to an empty slice, found nil")
	}
}

// Character fields may live in Values or as top-level extension fields on
// the envelope; Values wins when both are present.
func TestStateCharacterFieldFallback(t *testing.T) {
	s := current.NewState()
	s.Extra["agentName"] = "FromEnvelope"
	s.Extra["bio"] = "envelope bio"
	s.Values["bio"] = "values bio"

	state := StateToLegacy(s)
	if state.AgentName != "FromEnvelope" {
		t.Errorf("agentName: expected envelope fallback, got %q", state.AgentName)
	}
	if state.Bio != "values bio" {
		t.Errorf("bio: expected Values to win, got %q", state.Bio)
	}
	if _, ok := state.Extra["agentName"]; ok {
		t.Error("character envelope field should not leak into Extra")
	}
}

func TestStateUnknownKeysPreserved(t *testing.T) {
	s := current.NewState()
	s.Values["customScalar"] = "yes"
	s.Data["customBlob"] = []int{1, 2, 3}

	state := StateToLegacy(s)
	if got := state.Extra["customScalar"]; got != "yes" {
		t.Errorf("customScalar: got %v", got)
	}
	if got, ok := state.Extra["customBlob"].([]int); !ok || len(got) != 3 {
		t.Errorf("customBlob: got %v", state.Extra["customBlob"])
	}
}

func TestStateRecentMessagesTranslate(t *testing.T) {
	userID := uuid.MustParse("11111111-0000-4000-8000-000000000009")
	s := current.NewState()
	s.Data["recentMessagesData"] = []current.Memory{
		{ID: uuid.New(), EntityID: userID, Content: current.Content{Text: "hi", Actions: []string{"WAVE"}}},
	}

	state := StateToLegacy(s)
	if len(state.RecentMessagesData) != 1 {
		t.Fatalf("expected 1 message, got %d", len(state.RecentMessagesData))
	}
	msg := state.RecentMessagesData[0]
	if msg.UserID != userID {
		t.Errorf("entityId should land in userId, got %s", msg.UserID)
	}
	if msg.Content.Action != "WAVE" {
		t.Errorf("first action should land in action, got %q", msg.Content.Action)
	}
}
