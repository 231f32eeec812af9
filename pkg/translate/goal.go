// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

// GoalTag marks a current task as having originated from a legacy goal.
// Only tasks carrying this tag are eligible for translation back into a
// goal; untagged tasks are foreign to the bridge.
const GoalTag = "legacy_goal"

// Metadata keys of the goal compatibility bag. The values are stored
// verbatim so a round trip through the engine's generic storage (including
// JSON serialization) reproduces the original goal.
const (
	goalMetaStatus     = "status"
	goalMetaUserID     = "userId"
	goalMetaObjectives = "objectives"
	goalMetaCreatedAt  = "createdAt"
)

// GoalToTask represents a legacy goal as a tagged current task. All
// goal-only fields go into the metadata bag.
func GoalToTask(g legacy.Goal) current.Task {
	objectives := make([]legacy.Objective, len(g.Objectives))
	copy(objectives, g.Objectives)
	return current.Task{
		ID:     g.ID,
		Name:   g.Name,
		RoomID: g.RoomID,
		Tags:   []string{GoalTag},
		Metadata: map[string]any{
			goalMetaStatus:     string(g.Status),
			goalMetaUserID:     g.UserID.String(),
			goalMetaObjectives: objectives,
			goalMetaCreatedAt:  g.CreatedAt,
		},
	}
}

// TaskToGoal translates a tagged task back into a goal. It returns nil for
// untagged tasks and for tagged tasks whose metadata bag is missing or
// malformed; it never returns a partially populated goal. Metadata values
// are accepted both in their in-process form and in the generic
// (JSON-decoded) form an engine's storage may hand back.
func TaskToGoal(t current.Task) *legacy.Goal {
	if !t.HasTag(GoalTag) || t.Metadata == nil {
		return nil
	}

	status, ok := goalStatus(t.Metadata[goalMetaStatus])
	if !ok {
		return nil
	}
	userID, ok := goalUserID(t.Metadata[goalMetaUserID])
	if !ok {
		return nil
	}
	objectives, ok := goalObjectives(t.Metadata[goalMetaObjectives])
	if !ok {
		return nil
	}

	return &legacy.Goal{
		ID:         t.ID,
		Name:       t.Name,
		RoomID:     t.RoomID,
		UserID:     userID,
		Status:     status,
		Objectives: objectives,
		CreatedAt:  goalCreatedAt(t.Metadata[goalMetaCreatedAt]),
	}
}

func goalStatus(v any) (legacy.GoalStatus, bool) {
	s, ok := v.(string)
	if !ok {
		if gs, isStatus := v.(legacy.GoalStatus); isStatus {
			s = string(gs)
		} else {
			return "", false
		}
	}
	switch legacy.GoalStatus(s) {
	case legacy.GoalStatusNotStarted, legacy.GoalStatusInProgress,
		legacy.GoalStatusDone, legacy.GoalStatusFailed:
		return legacy.GoalStatus(s), true
	}
	return "", false
}

func goalUserID(v any) (uuid.UUID, bool) {
	switch id := v.(type) {
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, false
		}
		return parsed, true
	case uuid.UUID:
		return id, true
	}
	return uuid.Nil, false
}

func goalObjectives(v any) ([]legacy.Objective, bool) {
	switch objs := v.(type) {
	case nil:
		return nil, false
	case []legacy.Objective:
		out := make([]legacy.Objective, len(objs))
		copy(out, objs)
		return out, true
	case []any:
		// JSON-decoded form from generic storage.
		out := make([]legacy.Objective, 0, len(objs))
		for _, raw := range objs {
			fields, ok := raw.(map[string]any)
			if !ok {
				return nil, false
			}
			obj := legacy.Objective{}
			obj.ID, _ = fields["id"].(string)
			obj.Description, _ = fields["description"].(string)
			obj.Completed, _ = fields["completed"].(bool)
			out = append(out, obj)
		}
		return out, true
	}
	return nil, false
}

func goalCreatedAt(v any) int64 {
	switch ts := v.(type) {
	case int64:
		return ts
	case int:
		return int64(ts)
	case float64:
		return int64(ts)
	case json.Number:
		n, _ := ts.Int64()
		return n
	}
	return 0
}
