// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/errors"
)

func TestComposeStateFillsCharacterValues(t *testing.T) {
	r := New(current.Character{
		Name:              "Ada",
		Bio:               []string{"first", "second"},
		MessageDirections: "be kind",
	})

	state, err := r.ComposeState(context.Background(), current.Memory{RoomID: uuid.New()})
	if err != nil {
		t.Fatalf("ComposeState: %v", err)
	}
	if state.Values["agentName"] != "Ada" {
		t.Errorf("agentName: got %v", state.Values["agentName"])
	}
	if state.Values["bio"] != "first second" {
		t.Errorf("bio: got %v", state.Values["bio"])
	}
	if state.Values["messageDirections"] != "be kind" {
		t.Errorf("messageDirections: got %v", state.Values["messageDirections"])
	}
}

func TestComposeStateRecentMessagesOldestFirst(t *testing.T) {
	r := New(current.Character{Name: "Ada"})
	ctx := context.Background()
	roomID := uuid.New()

	for i, text := range []string{"first", "second", "third"} {
		_, err := r.CreateMemory(ctx, current.Memory{
			ID:        uuid.New(),
			RoomID:    roomID,
			CreatedAt: int64(1000 + i),
			Content:   current.Content{Text: text},
		}, MessageTable)
		if err != nil {
			t.Fatalf("CreateMemory: %v", err)
		}
	}

	state, err := r.ComposeState(ctx, current.Memory{RoomID: roomID})
	if err != nil {
		t.Fatalf("ComposeState: %v", err)
	}
	recent, ok := state.Data["recentMessagesData"].([]current.Memory)
	if !ok || len(recent) != 3 {
		t.Fatalf("recentMessagesData: %v", state.Data["recentMessagesData"])
	}
	if recent[0].Content.Text != "first" || recent[2].Content.Text != "third" {
		t.Errorf("expected oldest first, got %q..%q", recent[0].Content.Text, recent[2].Content.Text)
	}
	if state.Values["recentMessages"] != "first\nsecond\nthird" {
		t.Errorf("rendered block: %q", state.Values["recentMessages"])
	}
}

func TestComposeStateRunsProviders(t *testing.T) {
	r := New(current.Character{Name: "Ada"})
	if err := r.RegisterProvider(current.Provider{
		Name: "facts",
		Get: func(ctx context.Context, eng current.Engine, msg current.Memory, state *current.State) (current.ProviderResult, error) {
			return current.ProviderResult{
				Text:   "sky is blue",
				Values: map[string]any{"color": "blue"},
			}, nil
		},
	}); err != nil {
		t.Fatalf("RegisterProvider: %v", err)
	}
	if err := r.RegisterProvider(current.Provider{
		Name:    "secret",
		Private: true,
		Get: func(ctx context.Context, eng current.Engine, msg current.Memory, state *current.State) (current.ProviderResult, error) {
			return current.ProviderResult{Text: "should not appear"}, nil
		},
	}); err != nil {
		t.Fatalf("RegisterProvider: %v", err)
	}

	state, err := r.ComposeState(context.Background(), current.Memory{RoomID: uuid.New()})
	if err != nil {
		t.Fatalf("ComposeState: %v", err)
	}
	if !strings.Contains(state.Text, "sky is blue") {
		t.Errorf("provider text missing: %q", state.Text)
	}
	if strings.Contains(state.Text, "should not appear") {
		t.Error("private provider leaked into state text")
	}
	if state.Values["color"] != "blue" {
		t.Errorf("provider value missing: %v", state.Values["color"])
	}
}

func TestRegisterActionDuplicate(t *testing.T) {
	r := New(current.Character{Name: "Ada"})
	if err := r.RegisterAction(current.Action{Name: "WAVE"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	err := r.RegisterAction(current.Action{Name: "WAVE"})
	if !errors.IsDuplicate(err) {
		t.Errorf("expected duplicate error, got %v", err)
	}
	if got := len(r.Actions()); got != 1 {
		t.Errorf("actions: got %d", got)
	}
}

func TestUseModelUnavailable(t *testing.T) {
	r := New(current.Character{Name: "Ada"})
	_, err := r.UseModel(context.Background(), current.ModelTextSmall, nil)
	if errors.CodeOf(err) != errors.CodeUnavailable {
		t.Errorf("expected unavailable, got %v", err)
	}
	if r.HasModel(current.ModelTextSmall) {
		t.Error("HasModel should report false for unregistered kinds")
	}

	r.RegisterModel(current.ModelTextSmall, func(context.Context, map[string]any) (any, error) {
		return "ok", nil
	})
	if !r.HasModel(current.ModelTextSmall) {
		t.Error("HasModel should report true after registration")
	}
}

func TestSearchMemoriesFiltersRoomAndThreshold(t *testing.T) {
	r := New(current.Character{Name: "Ada"})
	ctx := context.Background()
	roomID := uuid.New()
	otherRoom := uuid.New()

	seed := []struct {
		room uuid.UUID
		vec  []float32
		text string
	}{
		{roomID, []float32{1, 0}, "exact"},
		{roomID, []float32{0.9, 0.1}, "close"},
		{roomID, []float32{0, 1}, "orthogonal"},
		{otherRoom, []float32{1, 0}, "wrong room"},
	}
	for i, m := range seed {
		_, err := r.CreateMemory(ctx, current.Memory{
			ID:        uuid.New(),
			RoomID:    m.room,
			CreatedAt: int64(i),
			Content:   current.Content{Text: m.text},
			Embedding: m.vec,
		}, "facts")
		if err != nil {
			t.Fatalf("CreateMemory: %v", err)
		}
	}

	got, err := r.SearchMemories(ctx, current.SearchQuery{
		Table:          "facts",
		RoomID:         roomID,
		Embedding:      []float32{1, 0},
		Count:          10,
		MatchThreshold: 0.5,
	})
	if err != nil {
		t.Fatalf("SearchMemories: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(got))
	}
	for _, m := range got {
		if m.RoomID != roomID {
			t.Errorf("hit from wrong room: %+v", m)
		}
		if m.Similarity == nil || *m.Similarity < 0.5 {
			t.Errorf("similarity missing or below threshold: %+v", m.Similarity)
		}
	}
	if got[0].Content.Text != "exact" {
		t.Errorf("expected best match first, got %q", got[0].Content.Text)
	}
}

func TestEventListeners(t *testing.T) {
	r := New(current.Character{Name: "Ada"})
	var seen []string
	r.OnEvent("message", func(payload map[string]any) {
		text, _ := payload["text"].(string)
		seen = append(seen, text)
	})
	r.EmitEvent(context.Background(), "message", map[string]any{"text": "hi"})
	r.EmitEvent(context.Background(), "other", map[string]any{"text": "nope"})
	if len(seen) != 1 || seen[0] != "hi" {
		t.Errorf("listener calls: %v", seen)
	}
}
