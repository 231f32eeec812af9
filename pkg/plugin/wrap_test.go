// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/engine"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

func TestBinderCachesFacadePerEngine(t *testing.T) {
	b := NewBinder()
	engA := engine.New(current.Character{Name: "A"})
	engB := engine.New(current.Character{Name: "B"})

	rtA1 := b.Runtime(engA)
	rtA2 := b.Runtime(engA)
	rtB := b.Runtime(engB)

	if rtA1 == nil || rtB == nil {
		t.Fatal("expected façades for both engines")
	}
	if rtA1 != rtA2 {
		t.Error("same engine should get the same façade")
	}
	if rtA1 == rtB {
		t.Error("different engines must not share a façade")
	}
}

func TestWrapActionTranslatesArguments(t *testing.T) {
	b := NewBinder()
	eng := engine.New(current.Character{Name: "Ada"})
	userID := uuid.New()

	var gotMsg legacy.Memory
	var gotRuntime legacy.Runtime
	wrapped := b.WrapAction(legacy.Action{
		Name: "INSPECT",
		Handler: func(ctx context.Context, rt legacy.Runtime, msg legacy.Memory, state *legacy.State, opts map[string]any, cb legacy.HandlerCallback) (any, error) {
			gotRuntime = rt
			gotMsg = msg
			return "done", nil
		},
	})

	msg := current.Memory{
		ID:       uuid.New(),
		EntityID: userID,
		RoomID:   uuid.New(),
		Content:  current.Content{Text: "look", Actions: []string{"INSPECT"}},
	}
	result, err := wrapped.Handler(context.Background(), eng, msg, nil, nil, nil)
	if err != nil {
		t.Fatalf("wrapped handler: %v", err)
	}
	if result != "done" {
		t.Errorf("result: got %v", result)
	}
	if gotMsg.UserID != userID {
		t.Errorf("entityId should arrive as userId, got %s", gotMsg.UserID)
	}
	if gotMsg.Content.Action != "INSPECT" {
		t.Errorf("first action should arrive as action, got %q", gotMsg.Content.Action)
	}
	if gotRuntime == nil {
		t.Error("handler should receive the binder's façade")
	}
	if gotRuntime != b.Runtime(eng) {
		t.Error("handler façade should come from the per-engine cache")
	}
}

func TestWrapBundle(t *testing.T) {
	b := NewBinder()

	var initialized bool
	bundle := legacy.Plugin{
		Name:        "compat-demo",
		Description: "demo bundle",
		Actions:     []legacy.Action{{Name: "WAVE", Description: "greet"}},
		Providers:   []legacy.Provider{{Name: "prices"}},
		Evaluators:  []legacy.Evaluator{{Name: "facts"}},
		Services:    []legacy.Service{&initTracker{initialized: &initialized}},
	}

	wrapped := b.Wrap(bundle)
	if wrapped.Name != "compat-demo" {
		t.Errorf("name: got %q", wrapped.Name)
	}
	if len(wrapped.Actions) != 1 || wrapped.Actions[0].Name != "WAVE" {
		t.Errorf("actions: %+v", wrapped.Actions)
	}
	if len(wrapped.Providers) != 1 || len(wrapped.Evaluators) != 1 || len(wrapped.Services) != 1 {
		t.Errorf("member counts: %d providers, %d evaluators, %d services",
			len(wrapped.Providers), len(wrapped.Evaluators), len(wrapped.Services))
	}
	if wrapped.Services[0].Name() != string(legacy.ServiceWebSearch) {
		t.Errorf("service name: got %q", wrapped.Services[0].Name())
	}
	if wrapped.Init == nil {
		t.Fatal("bundles with services need an init hook")
	}

	eng := engine.New(current.Character{Name: "Ada"})
	if err := wrapped.Init(context.Background(), eng); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !initialized {
		t.Error("init hook should initialize wrapped services")
	}
}

type initTracker struct {
	initialized *bool
}

func (s *initTracker) Type() legacy.ServiceType { return legacy.ServiceWebSearch }

func (s *initTracker) Initialize(context.Context, legacy.Runtime) error {
	*s.initialized = true
	return nil
}

func (s *initTracker) Stop(context.Context) error { return nil }
