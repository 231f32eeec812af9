// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"text/tabwriter"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/translate"
)

type validateCheck struct {
	Name string `json:"name"`
	OK   bool   `json:"ok"`
	Note string `json:"note,omitempty"`
}

// runValidate round-trips built-in fixtures through the translators and
// reports any drift. Exit code 1 when a check fails.
func runValidate(global globalFlags) {
	checks := []validateCheck{
		checkGoalRoundTrip(),
		checkStateDefaults(),
		checkContentRoundTrip(),
	}

	failed := false
	for _, c := range checks {
		if !c.OK {
			failed = true
		}
	}

	if global.JSON {
		printJSON(checks)
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, c := range checks {
			status := "ok"
			if !c.OK {
				status = "FAIL"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", c.Name, status, c.Note)
		}
		w.Flush()
	}
	if failed {
		os.Exit(1)
	}
}

func checkGoalRoundTrip() validateCheck {
	goal := legacy.Goal{
		ID:     uuid.MustParse("4f9b2a7e-1111-4222-8333-444455556666"),
		Name:   "Ship v1",
		RoomID: uuid.MustParse("4f9b2a7e-aaaa-4bbb-8ccc-dddeeefff000"),
		UserID: uuid.MustParse("4f9b2a7e-9999-4888-8777-666655554444"),
		Status: legacy.GoalStatusInProgress,
		Objectives: []legacy.Objective{
			{ID: "1", Description: "write docs", Completed: true},
		},
		CreatedAt: 1700000000000,
	}
	task := translate.GoalToTask(goal)

	// The metadata bag must survive generic storage, so the round trip goes
	// through JSON like the engine's document columns do.
	raw, err := json.Marshal(task)
	if err != nil {
		return validateCheck{Name: "goal round-trip", Note: err.Error()}
	}
	var stored current.Task
	if err := json.Unmarshal(raw, &stored); err != nil {
		return validateCheck{Name: "goal round-trip", Note: err.Error()}
	}

	back := translate.TaskToGoal(stored)
	if back == nil {
		return validateCheck{Name: "goal round-trip", Note: "task did not translate back"}
	}
	if !reflect.DeepEqual(goal, *back) {
		return validateCheck{Name: "goal round-trip", Note: fmt.Sprintf("drift: %+v != %+v", goal, *back)}
	}
	return validateCheck{Name: "goal round-trip", OK: true}
}

func checkStateDefaults() validateCheck {
	state := translate.StateToLegacy(current.NewState())
	if state == nil {
		return validateCheck{Name: "state defaults", Note: "nil state"}
	}
	switch {
	case state.ActorsData == nil, state.GoalsData == nil,
		state.RecentMessagesData == nil, state.RecentInteractionsData == nil,
		state.ActionsData == nil, state.EvaluatorsData == nil:
		return validateCheck{Name: "state defaults", Note: "array field left nil"}
	}
	return validateCheck{Name: "state defaults", OK: true}
}

func checkContentRoundTrip() validateCheck {
	content := legacy.Content{Text: "hello", Action: "WAVE", Source: "cli"}
	back := translate.ContentToLegacy(translate.ContentToCurrent(content))
	if !reflect.DeepEqual(content, back) {
		return validateCheck{Name: "content round-trip", Note: fmt.Sprintf("drift: %+v != %+v", content, back)}
	}
	return validateCheck{Name: "content round-trip", OK: true}
}
