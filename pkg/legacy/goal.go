// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package legacy

import "github.com/google/uuid"

// GoalStatus is the participant-scoped lifecycle of a goal.
type GoalStatus string

const (
	GoalStatusNotStarted GoalStatus = "not_started"
	GoalStatusInProgress GoalStatus = "in_progress"
	GoalStatusDone       GoalStatus = "done"
	GoalStatusFailed     GoalStatus = "failed"
)

// Objective is a sub-goal with a completion flag.
type Objective struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Goal is a tracked, possibly multi-step objective owned by a room and a
// participant.
type Goal struct {
	ID         uuid.UUID   `json:"id"`
	Name       string      `json:"name"`
	RoomID     uuid.UUID   `json:"roomId"`
	UserID     uuid.UUID   `json:"userId"`
	Status     GoalStatus  `json:"status"`
	Objectives []Objective `json:"objectives"`
	CreatedAt  int64       `json:"createdAt,omitempty"` // unix milliseconds
}

// GoalQuery filters goal lookups.
type GoalQuery struct {
	RoomID      uuid.UUID
	UserID      *uuid.UUID
	OnlyPending bool
	Count       int
}

// CloneGoal returns a deep copy of g.
func CloneGoal(g Goal) Goal {
	out := g
	if g.Objectives != nil {
		out.Objectives = make([]Objective, len(g.Objectives))
		copy(out.Objectives, g.Objectives)
	}
	return out
}
