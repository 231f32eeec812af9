// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package proxy presents legacy-shaped persistence interfaces backed by
// current-engine operations, translating shapes at the boundary. Duplicate
// class errors from the engine are swallowed: legacy callers historically
// tolerated re-creation races and must not regress. All other delegate
// failures are logged with the originating call and returned unchanged.
package proxy

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/telemetry"
	"github.com/wtfsayo/agentbridge/pkg/translate"
)

// EmbeddingCachePrefix keys content-addressed embedding cache rows. The
// façade's Embed helper writes through it; GetCachedEmbeddings reads it.
const EmbeddingCachePrefix = "embedding:"

// Database implements legacy.DatabaseAdapter on top of a current engine.
type Database struct {
	engine current.Engine
	log    *slog.Logger
}

var _ legacy.DatabaseAdapter = (*Database)(nil)

// NewDatabase creates the adapter proxy.
func NewDatabase(engine current.Engine) *Database {
	return &Database{engine: engine, log: engine.Logger()}
}

func (d *Database) GetAccountByID(ctx context.Context, userID uuid.UUID) (*legacy.Account, error) {
	entity, err := d.engine.GetEntity(ctx, userID)
	if err != nil {
		return nil, d.fail(ctx, "getAccountById", err)
	}
	if entity == nil {
		return nil, nil
	}
	account := entityToAccount(*entity)
	return &account, nil
}

func (d *Database) CreateAccount(ctx context.Context, account legacy.Account) (bool, error) {
	entity := current.Entity{
		ID:       account.ID,
		Names:    []string{account.Name, account.Username},
		Metadata: map[string]any{"email": account.Email},
	}
	for k, v := range account.Details {
		entity.Metadata[k] = v
	}
	if _, err := d.engine.CreateEntity(ctx, entity); err != nil {
		if errors.IsDuplicate(err) {
			d.swallow(ctx, "createAccount")
			return false, nil
		}
		return false, d.fail(ctx, "createAccount", err)
	}
	return true, nil
}

func (d *Database) GetMemories(ctx context.Context, table string, q legacy.MemoryQuery) ([]legacy.Memory, error) {
	memories, err := d.engine.GetMemories(ctx, current.MemoryQuery{
		Table:   table,
		RoomID:  q.RoomID,
		Count:   q.Count,
		Unique:  q.Unique,
		Start:   q.Start,
		End:     q.End,
		AgentID: q.AgentID,
	})
	if err != nil {
		return nil, d.fail(ctx, "getMemories", err)
	}
	telemetry.BridgeMetrics().RecordTranslate(ctx, "memory", "to_legacy")
	return translate.MemoriesToLegacy(memories), nil
}

func (d *Database) GetMemoryByID(ctx context.Context, id uuid.UUID) (*legacy.Memory, error) {
	m, err := d.engine.GetMemoryByID(ctx, id)
	if err != nil {
		return nil, d.fail(ctx, "getMemoryById", err)
	}
	if m == nil {
		return nil, nil
	}
	out := translate.MemoryToLegacy(*m)
	return &out, nil
}

func (d *Database) CreateMemory(ctx context.Context, memory legacy.Memory, table string, unique bool) error {
	memory.Unique = memory.Unique || unique
	telemetry.BridgeMetrics().RecordTranslate(ctx, "memory", "to_current")
	if _, err := d.engine.CreateMemory(ctx, translate.MemoryToCurrent(memory), table); err != nil {
		if errors.IsDuplicate(err) {
			d.swallow(ctx, "createMemory")
			return nil
		}
		return d.fail(ctx, "createMemory", err)
	}
	return nil
}

func (d *Database) SearchMemories(ctx context.Context, table string, embedding []float32, q legacy.SearchQuery) ([]legacy.Memory, error) {
	memories, err := d.engine.SearchMemories(ctx, current.SearchQuery{
		Table:          table,
		RoomID:         q.RoomID,
		Embedding:      embedding,
		Count:          q.Count,
		MatchThreshold: q.MatchThreshold,
		Unique:         q.Unique,
	})
	if err != nil {
		return nil, d.fail(ctx, "searchMemories", err)
	}
	telemetry.BridgeMetrics().RecordTranslate(ctx, "memory", "to_legacy")
	return translate.MemoriesToLegacy(memories), nil
}

// RemoveMemory accepts the legacy table parameter but does not need it: the
// current operation addresses memories by id alone.
func (d *Database) RemoveMemory(ctx context.Context, id uuid.UUID, _ string) error {
	if err := d.engine.DeleteMemory(ctx, id); err != nil {
		return d.fail(ctx, "removeMemory", err)
	}
	return nil
}

func (d *Database) RemoveAllMemories(ctx context.Context, roomID uuid.UUID, table string) error {
	if err := d.engine.DeleteAllMemories(ctx, roomID, table); err != nil {
		return d.fail(ctx, "removeAllMemories", err)
	}
	return nil
}

func (d *Database) CountMemories(ctx context.Context, roomID uuid.UUID, unique bool, table string) (int, error) {
	count, err := d.engine.CountMemories(ctx, roomID, unique, table)
	if err != nil {
		return 0, d.fail(ctx, "countMemories", err)
	}
	return count, nil
}

func (d *Database) GetGoals(ctx context.Context, q legacy.GoalQuery) ([]legacy.Goal, error) {
	tasks, err := d.engine.GetTasks(ctx, current.TaskQuery{
		RoomID: q.RoomID,
		Tags:   []string{translate.GoalTag},
	})
	if err != nil {
		return nil, d.fail(ctx, "getGoals", err)
	}
	telemetry.BridgeMetrics().RecordTranslate(ctx, "goal", "to_legacy")
	var out []legacy.Goal
	for _, task := range tasks {
		goal := translate.TaskToGoal(task)
		if goal == nil {
			continue
		}
		if q.UserID != nil && goal.UserID != *q.UserID {
			continue
		}
		if q.OnlyPending && goal.Status != legacy.GoalStatusNotStarted && goal.Status != legacy.GoalStatusInProgress {
			continue
		}
		out = append(out, *goal)
		if q.Count > 0 && len(out) == q.Count {
			break
		}
	}
	return out, nil
}

func (d *Database) CreateGoal(ctx context.Context, goal legacy.Goal) error {
	telemetry.BridgeMetrics().RecordTranslate(ctx, "goal", "to_current")
	if _, err := d.engine.CreateTask(ctx, translate.GoalToTask(goal)); err != nil {
		if errors.IsDuplicate(err) {
			d.swallow(ctx, "createGoal")
			return nil
		}
		return d.fail(ctx, "createGoal", err)
	}
	return nil
}

func (d *Database) UpdateGoal(ctx context.Context, goal legacy.Goal) error {
	telemetry.BridgeMetrics().RecordTranslate(ctx, "goal", "to_current")
	if err := d.engine.UpdateTask(ctx, translate.GoalToTask(goal)); err != nil {
		return d.fail(ctx, "updateGoal", err)
	}
	return nil
}

func (d *Database) UpdateGoalStatus(ctx context.Context, goalID uuid.UUID, status legacy.GoalStatus) error {
	task, err := d.engine.GetTask(ctx, goalID)
	if err != nil {
		// Engines are split on missing tasks: some hand back a nil task,
		// others an error. Both land in the same not-found result here.
		if errors.IsNotFound(err) {
			task = nil
		} else {
			return d.fail(ctx, "updateGoalStatus", err)
		}
	}
	if task == nil {
		return errors.New(errors.CodeNotFound, "goal not found", nil).WithContext("id", goalID.String())
	}
	goal := translate.TaskToGoal(*task)
	if goal == nil {
		return errors.New(errors.CodeInvalidInput, "task is not a legacy goal", nil).WithContext("id", goalID.String())
	}
	goal.Status = status
	if err := d.engine.UpdateTask(ctx, translate.GoalToTask(*goal)); err != nil {
		return d.fail(ctx, "updateGoalStatus", err)
	}
	return nil
}

func (d *Database) RemoveGoal(ctx context.Context, goalID uuid.UUID) error {
	if err := d.engine.DeleteTask(ctx, goalID); err != nil {
		return d.fail(ctx, "removeGoal", err)
	}
	return nil
}

func (d *Database) RemoveAllGoals(ctx context.Context, roomID uuid.UUID) error {
	tasks, err := d.engine.GetTasks(ctx, current.TaskQuery{
		RoomID: roomID,
		Tags:   []string{translate.GoalTag},
	})
	if err != nil {
		return d.fail(ctx, "removeAllGoals", err)
	}
	for _, task := range tasks {
		if err := d.engine.DeleteTask(ctx, task.ID); err != nil {
			return d.fail(ctx, "removeAllGoals", err)
		}
	}
	return nil
}

func (d *Database) GetRoom(ctx context.Context, roomID uuid.UUID) (*legacy.Room, error) {
	room, err := d.engine.GetRoom(ctx, roomID)
	if err != nil {
		return nil, d.fail(ctx, "getRoom", err)
	}
	if room == nil {
		return nil, nil
	}
	return &legacy.Room{ID: room.ID, Source: room.Source, Name: room.Name}, nil
}

// CreateRoom returns the room id. Creating a room that already exists
// returns the existing id and does not create a second row.
func (d *Database) CreateRoom(ctx context.Context, roomID uuid.UUID) (uuid.UUID, error) {
	if roomID == uuid.Nil {
		roomID = uuid.New()
	}
	if _, err := d.engine.CreateRoom(ctx, current.Room{ID: roomID}); err != nil {
		if errors.IsDuplicate(err) {
			d.swallow(ctx, "createRoom")
			return roomID, nil
		}
		return uuid.Nil, d.fail(ctx, "createRoom", err)
	}
	return roomID, nil
}

func (d *Database) RemoveRoom(ctx context.Context, roomID uuid.UUID) error {
	if err := d.engine.DeleteRoom(ctx, roomID); err != nil {
		return d.fail(ctx, "removeRoom", err)
	}
	return nil
}

func (d *Database) GetRoomsForParticipant(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rooms, err := d.engine.GetRoomsForParticipant(ctx, userID)
	if err != nil {
		return nil, d.fail(ctx, "getRoomsForParticipant", err)
	}
	return rooms, nil
}

func (d *Database) GetRoomsForParticipants(ctx context.Context, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	rooms, err := d.engine.GetRoomsForParticipants(ctx, userIDs)
	if err != nil {
		return nil, d.fail(ctx, "getRoomsForParticipants", err)
	}
	return rooms, nil
}

func (d *Database) AddParticipant(ctx context.Context, userID, roomID uuid.UUID) (bool, error) {
	if err := d.engine.AddParticipant(ctx, userID, roomID); err != nil {
		if errors.IsDuplicate(err) {
			d.swallow(ctx, "addParticipant")
			return true, nil
		}
		return false, d.fail(ctx, "addParticipant", err)
	}
	return true, nil
}

func (d *Database) RemoveParticipant(ctx context.Context, userID, roomID uuid.UUID) (bool, error) {
	if err := d.engine.RemoveParticipant(ctx, userID, roomID); err != nil {
		return false, d.fail(ctx, "removeParticipant", err)
	}
	return true, nil
}

func (d *Database) GetParticipantsForRoom(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error) {
	participants, err := d.engine.GetParticipantsForRoom(ctx, roomID)
	if err != nil {
		return nil, d.fail(ctx, "getParticipantsForRoom", err)
	}
	return participants, nil
}

func (d *Database) GetParticipantsForAccount(ctx context.Context, userID uuid.UUID) ([]legacy.Account, error) {
	rooms, err := d.engine.GetRoomsForParticipant(ctx, userID)
	if err != nil {
		return nil, d.fail(ctx, "getParticipantsForAccount", err)
	}
	seen := map[uuid.UUID]bool{}
	var out []legacy.Account
	for _, roomID := range rooms {
		participants, err := d.engine.GetParticipantsForRoom(ctx, roomID)
		if err != nil {
			return nil, d.fail(ctx, "getParticipantsForAccount", err)
		}
		for _, participantID := range participants {
			if seen[participantID] {
				continue
			}
			seen[participantID] = true
			entity, err := d.engine.GetEntity(ctx, participantID)
			if err != nil {
				return nil, d.fail(ctx, "getParticipantsForAccount", err)
			}
			if entity != nil {
				out = append(out, entityToAccount(*entity))
			}
		}
	}
	return out, nil
}

func (d *Database) GetRelationship(ctx context.Context, userA, userB uuid.UUID) (*legacy.Relationship, error) {
	rel, err := d.engine.GetRelationship(ctx, userA, userB)
	if err != nil {
		return nil, d.fail(ctx, "getRelationship", err)
	}
	if rel == nil {
		return nil, nil
	}
	out := translate.RelationshipToLegacy(*rel)
	return &out, nil
}

func (d *Database) GetRelationships(ctx context.Context, userID uuid.UUID) ([]legacy.Relationship, error) {
	rels, err := d.engine.GetRelationships(ctx, userID)
	if err != nil {
		return nil, d.fail(ctx, "getRelationships", err)
	}
	out := make([]legacy.Relationship, len(rels))
	for i, rel := range rels {
		out[i] = translate.RelationshipToLegacy(rel)
	}
	return out, nil
}

func (d *Database) CreateRelationship(ctx context.Context, userA, userB uuid.UUID) (bool, error) {
	err := d.engine.CreateRelationship(ctx, current.Relationship{
		SourceEntity: userA,
		TargetEntity: userB,
	})
	if err != nil {
		if errors.IsDuplicate(err) {
			d.swallow(ctx, "createRelationship")
			return true, nil
		}
		return false, d.fail(ctx, "createRelationship", err)
	}
	return true, nil
}

func (d *Database) GetCachedEmbeddings(ctx context.Context, content string) ([]float32, bool, error) {
	raw, ok, err := d.engine.GetCache(ctx, EmbeddingCachePrefix+content)
	if err != nil {
		return nil, false, d.fail(ctx, "getCachedEmbeddings", err)
	}
	if !ok {
		return nil, false, nil
	}
	var embedding []float32
	if err := json.Unmarshal(raw, &embedding); err != nil {
		// A corrupt cache row is a miss, not a failure.
		d.log.Warn("proxy.db.cache.decode", slog.String("error", err.Error()))
		return nil, false, nil
	}
	return embedding, true, nil
}

func (d *Database) SetCache(ctx context.Context, key string, value []byte) error {
	if err := d.engine.SetCache(ctx, key, value); err != nil {
		return d.fail(ctx, "setCache", err)
	}
	return nil
}

func (d *Database) GetCache(ctx context.Context, key string) ([]byte, bool, error) {
	value, ok, err := d.engine.GetCache(ctx, key)
	if err != nil {
		return nil, false, d.fail(ctx, "getCache", err)
	}
	return value, ok, nil
}

// fail logs a delegate failure with the originating legacy call and returns
// the error unchanged so the caller's error handling still applies.
func (d *Database) fail(ctx context.Context, op string, err error) error {
	d.log.ErrorContext(ctx, "proxy.db.delegate.error",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return err
}

func (d *Database) swallow(ctx context.Context, op string) {
	telemetry.BridgeMetrics().RecordDuplicateSwallowed(ctx, op)
	d.log.DebugContext(ctx, "proxy.db.duplicate.swallowed", slog.String("op", op))
}

func entityToAccount(e current.Entity) legacy.Account {
	account := legacy.Account{ID: e.ID, Details: e.Metadata}
	if len(e.Names) > 0 {
		account.Name = e.Names[0]
	}
	if len(e.Names) > 1 {
		account.Username = e.Names[1]
	}
	if email, ok := e.Metadata["email"].(string); ok {
		account.Email = email
	}
	return account
}
