// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/engine"
	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/translate"
)

func newTestDB(t *testing.T) (*Database, *engine.Runtime) {
	t.Helper()
	eng := engine.New(current.Character{Name: "Ada"})
	return NewDatabase(eng), eng
}

func TestCreateRoomReturnsExistingID(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	roomID := uuid.New()

	first, err := db.CreateRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("first CreateRoom: %v", err)
	}
	second, err := db.CreateRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("second CreateRoom should swallow the duplicate: %v", err)
	}
	if first != roomID || second != roomID {
		t.Errorf("expected both calls to return %s, got %s and %s", roomID, first, second)
	}
}

func TestCreateRoomGeneratesID(t *testing.T) {
	db, _ := newTestDB(t)
	id, err := db.CreateRoom(context.Background(), uuid.Nil)
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if id == uuid.Nil {
		t.Error("expected a generated room id")
	}
}

func TestCreateMemoryDuplicateSwallowed(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	memory := legacy.Memory{
		ID:      uuid.New(),
		UserID:  uuid.New(),
		RoomID:  uuid.New(),
		Content: legacy.Content{Text: "once"},
	}
	if err := db.CreateMemory(ctx, memory, "messages", false); err != nil {
		t.Fatalf("first CreateMemory: %v", err)
	}
	if err := db.CreateMemory(ctx, memory, "messages", false); err != nil {
		t.Fatalf("duplicate CreateMemory should be swallowed: %v", err)
	}
	count, err := db.CountMemories(ctx, memory.RoomID, false, "messages")
	if err != nil {
		t.Fatalf("CountMemories: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}

func TestGoalsRoundTripThroughTasks(t *testing.T) {
	db, eng := newTestDB(t)
	ctx := context.Background()
	roomID := uuid.New()
	userID := uuid.New()

	goal := legacy.Goal{
		ID:     uuid.New(),
		Name:   "Ship v1",
		RoomID: roomID,
		UserID: userID,
		Status: legacy.GoalStatusInProgress,
		Objectives: []legacy.Objective{
			{ID: "1", Description: "write docs", Completed: true},
		},
		CreatedAt: 1700000000000,
	}
	if err := db.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}

	// A foreign task in the same room must not surface as a goal.
	if _, err := eng.CreateTask(ctx, current.Task{
		ID:     uuid.New(),
		Name:   "unrelated",
		RoomID: roomID,
		Tags:   []string{"housekeeping"},
	}); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	goals, err := db.GetGoals(ctx, legacy.GoalQuery{RoomID: roomID})
	if err != nil {
		t.Fatalf("GetGoals: %v", err)
	}
	if len(goals) != 1 {
		t.Fatalf("expected 1 goal, got %d", len(goals))
	}
	if goals[0].Name != "Ship v1" || goals[0].UserID != userID {
		t.Errorf("goal drift: %+v", goals[0])
	}
}

func TestGetGoalsOnlyPending(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	roomID := uuid.New()
	userID := uuid.New()

	statuses := []legacy.GoalStatus{
		legacy.GoalStatusNotStarted,
		legacy.GoalStatusInProgress,
		legacy.GoalStatusDone,
		legacy.GoalStatusFailed,
	}
	for i, status := range statuses {
		goal := legacy.Goal{
			ID:         uuid.New(),
			Name:       string(status),
			RoomID:     roomID,
			UserID:     userID,
			Status:     status,
			Objectives: []legacy.Objective{{ID: "1", Description: "step"}},
			CreatedAt:  int64(1700000000000 + i),
		}
		if err := db.CreateGoal(ctx, goal); err != nil {
			t.Fatalf("CreateGoal(%s): %v", status, err)
		}
	}

	goals, err := db.GetGoals(ctx, legacy.GoalQuery{RoomID: roomID, OnlyPending: true})
	if err != nil {
		t.Fatalf("GetGoals: %v", err)
	}
	if len(goals) != 2 {
		t.Fatalf("expected 2 pending goals, got %d", len(goals))
	}
	for _, g := range goals {
		if g.Status == legacy.GoalStatusDone || g.Status == legacy.GoalStatusFailed {
			t.Errorf("finished goal leaked into pending query: %+v", g)
		}
	}
}

func TestUpdateGoalStatus(t *testing.T) {
	db, eng := newTestDB(t)
	ctx := context.Background()

	goal := legacy.Goal{
		ID:         uuid.New(),
		Name:       "progress",
		RoomID:     uuid.New(),
		UserID:     uuid.New(),
		Status:     legacy.GoalStatusNotStarted,
		Objectives: []legacy.Objective{{ID: "1", Description: "step"}},
		CreatedAt:  1700000000000,
	}
	if err := db.CreateGoal(ctx, goal); err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if err := db.UpdateGoalStatus(ctx, goal.ID, legacy.GoalStatusDone); err != nil {
		t.Fatalf("UpdateGoalStatus: %v", err)
	}

	task, err := eng.GetTask(ctx, goal.ID)
	if err != nil || task == nil {
		t.Fatalf("GetTask: %v %v", task, err)
	}
	back := translate.TaskToGoal(*task)
	if back == nil || back.Status != legacy.GoalStatusDone {
		t.Errorf("status not updated: %+v", back)
	}
}

// notFoundTaskEngine reports missing tasks as an error rather than a nil
// task, the way remote-backed engines do.
type notFoundTaskEngine struct {
	*engine.Runtime
}

func (e *notFoundTaskEngine) GetTask(ctx context.Context, id uuid.UUID) (*current.Task, error) {
	return nil, errors.New(errors.CodeNotFound, "task not found", nil).WithContext("id", id.String())
}

func TestUpdateGoalStatusMissingGoal(t *testing.T) {
	ctx := context.Background()

	// An engine that hands back a nil task.
	db, _ := newTestDB(t)
	err := db.UpdateGoalStatus(ctx, uuid.New(), legacy.GoalStatusDone)
	if errors.CodeOf(err) != errors.CodeNotFound {
		t.Errorf("nil-task engine: expected not-found, got %v", err)
	}

	// An engine that reports the miss as an error.
	remote := NewDatabase(&notFoundTaskEngine{Runtime: engine.New(current.Character{Name: "Ada"})})
	err = remote.UpdateGoalStatus(ctx, uuid.New(), legacy.GoalStatusDone)
	if errors.CodeOf(err) != errors.CodeNotFound {
		t.Errorf("erroring engine: expected not-found, got %v", err)
	}
}

func TestAddParticipantDuplicateTolerated(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()
	userID, roomID := uuid.New(), uuid.New()

	if _, err := db.CreateRoom(ctx, roomID); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	for i := 0; i < 2; i++ {
		ok, err := db.AddParticipant(ctx, userID, roomID)
		if err != nil || !ok {
			t.Fatalf("AddParticipant #%d: ok=%v err=%v", i+1, ok, err)
		}
	}
	participants, err := db.GetParticipantsForRoom(ctx, roomID)
	if err != nil {
		t.Fatalf("GetParticipantsForRoom: %v", err)
	}
	if len(participants) != 1 {
		t.Errorf("expected 1 participant, got %d", len(participants))
	}
}

func TestAccountEntityMapping(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	account := legacy.Account{
		ID:       uuid.New(),
		Name:     "Bob",
		Username: "bob42",
		Email:    "bob@example.com",
	}
	created, err := db.CreateAccount(ctx, account)
	if err != nil || !created {
		t.Fatalf("CreateAccount: created=%v err=%v", created, err)
	}
	// Creating again reports not-created, without an error.
	created, err = db.CreateAccount(ctx, account)
	if err != nil {
		t.Fatalf("duplicate CreateAccount: %v", err)
	}
	if created {
		t.Error("duplicate account reported as newly created")
	}

	got, err := db.GetAccountByID(ctx, account.ID)
	if err != nil {
		t.Fatalf("GetAccountByID: %v", err)
	}
	if got == nil || got.Name != "Bob" || got.Username != "bob42" || got.Email != "bob@example.com" {
		t.Errorf("account drift: %+v", got)
	}
}

func TestGetCachedEmbeddingsMissAndHit(t *testing.T) {
	db, _ := newTestDB(t)
	ctx := context.Background()

	if _, ok, err := db.GetCachedEmbeddings(ctx, "unseen"); err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}
	if err := db.SetCache(ctx, EmbeddingCachePrefix+"seen", []byte("[0.25,0.75]")); err != nil {
		t.Fatalf("SetCache: %v", err)
	}
	embedding, ok, err := db.GetCachedEmbeddings(ctx, "seen")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if len(embedding) != 2 || embedding[1] != 0.75 {
		t.Errorf("embedding drift: %v", embedding)
	}
}
