// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

func testGoal() legacy.Goal {
	return legacy.Goal{
		ID:     uuid.MustParse("11111111-2222-4333-8444-555566667777"),
		Name:   "Ship v1",
		RoomID: uuid.MustParse("aaaaaaaa-bbbb-4ccc-8ddd-eeeeffff0000"),
		UserID: uuid.MustParse("99999999-8888-4777-8666-555544443333"),
		Status: legacy.GoalStatusInProgress,
		Objectives: []legacy.Objective{
			{ID: "1", Description: "write docs", Completed: true},
		},
		CreatedAt: 1700000000000,
	}
}

func TestGoalTaskRoundTrip(t *testing.T) {
	goal := testGoal()
	task := GoalToTask(goal)

	if !task.HasTag(GoalTag) {
		t.Fatalf("expected task to carry %q tag, got tags %v", GoalTag, task.Tags)
	}
	back := TaskToGoal(task)
	if back == nil {
		t.Fatal("expected tagged task to translate back")
	}
	if !reflect.DeepEqual(goal, *back) {
		t.Errorf("round trip drift:\n  in:  %+v\n  out: %+v", goal, *back)
	}
}

// The metadata bag must survive the engine's generic storage, which may
// serialize it to JSON and hand back generic types.
func TestGoalSurvivesJSONStorage(t *testing.T) {
	goal := testGoal()
	raw, err := json.Marshal(GoalToTask(goal))
	if err != nil {
		t.Fatalf("marshal task: %v", err)
	}
	var stored current.Task
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("unmarshal task: %v", err)
	}

	back := TaskToGoal(stored)
	if back == nil {
		t.Fatal("expected stored task to translate back")
	}
	if !reflect.DeepEqual(goal, *back) {
		t.Errorf("storage round trip drift:\n  in:  %+v\n  out: %+v", goal, *back)
	}
}

func TestTaskToGoalRejectsForeignTasks(t *testing.T) {
	valid := GoalToTask(testGoal())

	tests := []struct {
		name string
		task current.Task
	}{
		{
			name: "untagged",
			task: current.Task{ID: valid.ID, Name: valid.Name, Metadata: valid.Metadata},
		},
		{
			name: "tagged without metadata",
			task: current.Task{ID: valid.ID, Name: valid.Name, Tags: []string{GoalTag}},
		},
		{
			name: "missing status",
			task: withoutMeta(valid, "status"),
		},
		{
			name: "invalid status",
			task: withMeta(valid, "status", "paused"),
		},
		{
			name: "missing user",
			task: withoutMeta(valid, "userId"),
		},
		{
			name: "malformed user",
			task: withMeta(valid, "userId", "not-a-uuid"),
		},
		{
			name: "missing objectives",
			task: withoutMeta(valid, "objectives"),
		},
		{
			name: "malformed objectives",
			task: withMeta(valid, "objectives", []any{"not a map"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if goal := TaskToGoal(tt.task); goal != nil {
				t.Errorf("expected nil, got partially populated goal %+v", goal)
			}
		})
	}
}

func withMeta(task current.Task, key string, value any) current.Task {
	meta := map[string]any{}
	for k, v := range task.Metadata {
		meta[k] = v
	}
	meta[key] = value
	task.Metadata = meta
	return task
}

func withoutMeta(task current.Task, key string) current.Task {
	meta := map[string]any{}
	for k, v := range task.Metadata {
		if k != key {
			meta[k] = v
		}
	}
	task.Metadata = meta
	return task
}
