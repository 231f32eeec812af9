// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/engine"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/testkit"
)

func newTestFacade(t *testing.T) (*Facade, *engine.Runtime) {
	t.Helper()
	eng := engine.New(current.Character{
		Name: "Ada",
		Bio:  []string{"a helpful agent"},
	})
	f, err := New(context.Background(), eng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return f, eng
}

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(context.Background(), nil); err == nil {
		t.Fatal("expected construction to fail without an engine")
	}
}

func TestComposeStateWithPriorMessagesAndLegacyProvider(t *testing.T) {
	f, eng := newTestFacade(t)
	ctx := context.Background()
	roomID := uuid.New()
	userID := uuid.New()

	for _, text := range []string{"one", "two", "three"} {
		msg := testkit.Message(userID, roomID, text)
		if err := f.MessageManager().CreateMemory(ctx, msg, false); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	f.RegisterContextProvider(legacy.Provider{
		Name: "pricing",
		Get: func(ctx context.Context, rt legacy.Runtime, msg legacy.Memory, state *legacy.State) (legacy.ProviderResult, error) {
			return legacy.ProviderResult{Text: "price: $100"}, nil
		},
	})

	state, err := f.ComposeState(ctx, testkit.Message(userID, roomID, "how much?"), nil)
	if err != nil {
		t.Fatalf("ComposeState: %v", err)
	}

	if len(state.RecentMessagesData) != 3 {
		t.Errorf("recentMessagesData: expected 3 prior messages, got %d", len(state.RecentMessagesData))
	}
	if !strings.Contains(state.Providers, "# Additional Information") {
		t.Errorf("providers block missing header: %q", state.Providers)
	}
	if !strings.Contains(state.Providers, "price: $100") {
		t.Errorf("providers block missing provider text: %q", state.Providers)
	}
	if state.AgentName != "Ada" {
		t.Errorf("agentName: got %q", state.AgentName)
	}
	if state.RoomID != roomID {
		t.Errorf("roomId: got %s", state.RoomID)
	}
	_ = eng
}

func TestComposeStateCacheSkipsRecompose(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	var calls atomic.Int32
	f.RegisterContextProvider(legacy.Provider{
		Name: "counter",
		Get: func(ctx context.Context, rt legacy.Runtime, msg legacy.Memory, state *legacy.State) (legacy.ProviderResult, error) {
			calls.Add(1)
			return legacy.ProviderResult{Text: "counted"}, nil
		},
	})

	msg := testkit.Message(uuid.New(), uuid.New(), "cache me")
	if _, err := f.ComposeState(ctx, msg, nil); err != nil {
		t.Fatalf("first compose: %v", err)
	}
	if _, err := f.ComposeState(ctx, msg, nil); err != nil {
		t.Fatalf("second compose: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("provider ran %d times, cache should have served the second compose", got)
	}
}

func TestComposeStateExtraOverwrites(t *testing.T) {
	f, _ := newTestFacade(t)

	state, err := f.ComposeState(context.Background(),
		testkit.Message(uuid.New(), uuid.New(), "hi"),
		map[string]any{"goals": "take over the world", "customKey": 7})
	if err != nil {
		t.Fatalf("ComposeState: %v", err)
	}
	if state.Goals != "take over the world" {
		t.Errorf("extra should overwrite named field, got %q", state.Goals)
	}
	if state.Extra["customKey"] != 7 {
		t.Errorf("unknown extra key should land in Extra, got %v", state.Extra["customKey"])
	}
}

func TestProviderValuesDoNotOverrideEngineValues(t *testing.T) {
	f, _ := newTestFacade(t)

	f.RegisterContextProvider(legacy.Provider{
		Name: "sneaky",
		Get: func(ctx context.Context, rt legacy.Runtime, msg legacy.Memory, state *legacy.State) (legacy.ProviderResult, error) {
			return legacy.ProviderResult{Values: map[string]string{
				"agentName": "Impostor",
				"mood":      "sunny",
			}}, nil
		},
	})

	state, err := f.ComposeState(context.Background(), testkit.Message(uuid.New(), uuid.New(), "hi"), nil)
	if err != nil {
		t.Fatalf("ComposeState: %v", err)
	}
	if state.AgentName != "Ada" {
		t.Errorf("engine-sourced agentName overridden by provider: %q", state.AgentName)
	}
	if state.Extra["mood"] != "sunny" {
		t.Errorf("unclaimed provider value should land in Extra, got %v", state.Extra["mood"])
	}
}

func TestRegisterActionIdempotent(t *testing.T) {
	f, eng := newTestFacade(t)

	action := legacy.Action{Name: "WAVE", Description: "greet"}
	f.RegisterAction(action)
	f.RegisterAction(action)

	if got := len(eng.Actions()); got != 1 {
		t.Errorf("engine actions: expected exactly 1 entry, got %d", got)
	}
	if got := len(f.Actions()); got != 1 {
		t.Errorf("facade actions: expected exactly 1 entry, got %d", got)
	}
}

func TestValidatedActionsAppendedToState(t *testing.T) {
	f, _ := newTestFacade(t)

	f.RegisterAction(legacy.Action{
		Name:        "ALWAYS",
		Description: "always applies",
		Validate: func(ctx context.Context, rt legacy.Runtime, msg legacy.Memory, state *legacy.State) (bool, error) {
			return true, nil
		},
	})
	f.RegisterAction(legacy.Action{
		Name:        "NEVER",
		Description: "never applies",
		Validate: func(ctx context.Context, rt legacy.Runtime, msg legacy.Memory, state *legacy.State) (bool, error) {
			return false, nil
		},
	})

	state, err := f.ComposeState(context.Background(), testkit.Message(uuid.New(), uuid.New(), "hi"), nil)
	if err != nil {
		t.Fatalf("ComposeState: %v", err)
	}
	if len(state.ActionsData) != 1 || state.ActionsData[0].Name != "ALWAYS" {
		t.Errorf("expected only the passing action, got %+v", state.ActionsData)
	}
	if !strings.Contains(state.ActionNames, "ALWAYS") {
		t.Errorf("actionNames not synthesized: %q", state.ActionNames)
	}
}

func TestProcessActionsMatchesBySimile(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	var handled atomic.Int32
	f.RegisterAction(legacy.Action{
		Name:    "GREET",
		Similes: []string{"say hello"},
		Handler: func(ctx context.Context, rt legacy.Runtime, msg legacy.Memory, state *legacy.State, opts map[string]any, cb legacy.HandlerCallback) (any, error) {
			handled.Add(1)
			return nil, nil
		},
	})

	msg := testkit.Message(uuid.New(), uuid.New(), "hello")
	response := msg
	response.Content.Action = "SAY_HELLO"
	if err := f.ProcessActions(ctx, msg, []legacy.Memory{response}, nil, nil); err != nil {
		t.Fatalf("ProcessActions: %v", err)
	}
	if handled.Load() != 1 {
		t.Error("simile-matched action handler did not run")
	}
}

func TestEvaluateRunsApplicableEvaluators(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()

	f.RegisterEvaluator(legacy.Evaluator{
		Name:      "always",
		AlwaysRun: true,
	})
	f.RegisterEvaluator(legacy.Evaluator{
		Name: "onResponse",
		Validate: func(ctx context.Context, rt legacy.Runtime, msg legacy.Memory, state *legacy.State) (bool, error) {
			return true, nil
		},
	})

	msg := testkit.Message(uuid.New(), uuid.New(), "hi")
	ran, err := f.Evaluate(ctx, msg, nil, false)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(ran) != 1 || ran[0] != "always" {
		t.Errorf("didRespond=false should run only always-run evaluators, got %v", ran)
	}

	ran, err = f.Evaluate(ctx, msg, nil, true)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(ran) != 2 {
		t.Errorf("didRespond=true should run both evaluators, got %v", ran)
	}
}

func TestCompletionAndEmbedUseModels(t *testing.T) {
	eng := engine.New(current.Character{Name: "Ada"})
	eng.RegisterModel(current.ModelTextSmall, testkit.NewScriptedModel("generated text").Handle)
	eng.RegisterModel(current.ModelTextEmbedding, testkit.ConstEmbedding([]float32{0.5, 0.5}))

	f, err := New(context.Background(), eng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	text, err := f.Completion(ctx, legacy.CompletionRequest{Prompt: "hi"})
	if err != nil {
		t.Fatalf("Completion: %v", err)
	}
	if text != "generated text" {
		t.Errorf("Completion: got %q", text)
	}

	embedding, err := f.Embed(ctx, "some text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(embedding) != 2 {
		t.Errorf("Embed: got %v", embedding)
	}

	// Second call must come from the cache, not the model.
	cached, err := f.Embed(ctx, "some text")
	if err != nil {
		t.Fatalf("Embed cached: %v", err)
	}
	if len(cached) != 2 {
		t.Errorf("Embed cached: got %v", cached)
	}
}

func TestEnsureConnectionIdempotent(t *testing.T) {
	f, eng := newTestFacade(t)
	ctx := context.Background()
	userID := uuid.New()
	roomID := uuid.New()

	for i := 0; i < 2; i++ {
		if err := f.EnsureConnection(ctx, userID, roomID, "bob", "Bob", "test"); err != nil {
			t.Fatalf("EnsureConnection #%d: %v", i+1, err)
		}
	}

	participants, err := eng.GetParticipantsForRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("GetParticipantsForRoom: %v", err)
	}
	if len(participants) != 2 {
		t.Errorf("expected user and agent as participants, got %d", len(participants))
	}
}

func TestRegisterMemoryManagerSideTable(t *testing.T) {
	f, _ := newTestFacade(t)

	if f.GetMemoryManager("facts") != nil {
		t.Fatal("unexpected manager for unregistered table")
	}
	mgr := &fakeManager{table: "facts"}
	if err := f.RegisterMemoryManager(mgr); err != nil {
		t.Fatalf("RegisterMemoryManager: %v", err)
	}
	if f.GetMemoryManager("facts") != legacy.MemoryManager(mgr) {
		t.Error("registered manager not returned")
	}
	// Second registration keeps the first manager.
	if err := f.RegisterMemoryManager(&fakeManager{table: "facts"}); err != nil {
		t.Fatalf("duplicate RegisterMemoryManager: %v", err)
	}
	if f.GetMemoryManager("facts") != legacy.MemoryManager(mgr) {
		t.Error("duplicate registration replaced the original manager")
	}
}

type fakeManager struct {
	legacy.MemoryManager
	table string
}

func (m *fakeManager) TableName() string { return m.table }

func TestComposeStateFillsActorsAndGoals(t *testing.T) {
	f, _ := newTestFacade(t)
	ctx := context.Background()
	roomID := uuid.New()
	userID := uuid.New()

	if err := f.EnsureConnection(ctx, userID, roomID, "bob42", "Bob", "test"); err != nil {
		t.Fatalf("EnsureConnection: %v", err)
	}
	if err := f.CreateGoal(ctx, testkit.Goal(userID, roomID, "Ship v1")); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	state, err := f.ComposeState(ctx, testkit.Message(userID, roomID, "status?"), nil)
	if err != nil {
		t.Fatalf("ComposeState: %v", err)
	}
	if len(state.ActorsData) != 2 {
		t.Errorf("actorsData: expected user and agent, got %d", len(state.ActorsData))
	}
	if !strings.Contains(state.Actors, "Bob") {
		t.Errorf("actors block missing user: %q", state.Actors)
	}
	if len(state.GoalsData) != 1 || state.GoalsData[0].Name != "Ship v1" {
		t.Errorf("goalsData: %+v", state.GoalsData)
	}
	if !strings.Contains(state.Goals, "Ship v1") {
		t.Errorf("goals block: %q", state.Goals)
	}
}
