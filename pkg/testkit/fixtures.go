// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package testkit

import (
	"time"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

// Message builds a legacy message memory with the minimum fields the bridge
// cares about.
func Message(userID, roomID uuid.UUID, text string) legacy.Memory {
	return legacy.Memory{
		ID:        uuid.New(),
		UserID:    userID,
		RoomID:    roomID,
		CreatedAt: time.Now().UnixMilli(),
		Content:   legacy.Content{Text: text},
	}
}

// Goal builds a legacy goal with one incomplete objective.
func Goal(userID, roomID uuid.UUID, name string) legacy.Goal {
	return legacy.Goal{
		ID:     uuid.New(),
		Name:   name,
		UserID: userID,
		RoomID: roomID,
		Status: legacy.GoalStatusInProgress,
		Objectives: []legacy.Objective{
			{ID: "1", Description: "first step", Completed: false},
		},
		CreatedAt: time.Now().UnixMilli(),
	}
}
