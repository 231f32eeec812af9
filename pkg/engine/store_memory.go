// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/errors"
)

// MemStore is an in-process Store.
type MemStore struct {
	mu sync.RWMutex

	memories      map[uuid.UUID]current.Memory
	memoryTables  map[uuid.UUID]string
	tasks         map[uuid.UUID]current.Task
	rooms         map[uuid.UUID]current.Room
	entities      map[uuid.UUID]current.Entity
	participants  map[uuid.UUID]map[uuid.UUID]bool // roomID -> entityID set
	relationships []current.Relationship
	cache         map[string][]byte
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		memories:     map[uuid.UUID]current.Memory{},
		memoryTables: map[uuid.UUID]string{},
		tasks:        map[uuid.UUID]current.Task{},
		rooms:        map[uuid.UUID]current.Room{},
		entities:     map[uuid.UUID]current.Entity{},
		participants: map[uuid.UUID]map[uuid.UUID]bool{},
		cache:        map[string][]byte{},
	}
}

func (s *MemStore) CreateMemory(_ context.Context, m current.Memory, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memories[m.ID]; ok {
		return errors.New(errors.CodeDuplicate, "memory already exists", nil).WithContext("id", m.ID.String())
	}
	s.memories[m.ID] = m
	s.memoryTables[m.ID] = table
	return nil
}

func (s *MemStore) GetMemory(_ context.Context, id uuid.UUID) (*current.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.memories[id]
	if !ok {
		return nil, nil
	}
	return &m, nil
}

func (s *MemStore) ListMemories(_ context.Context, q current.MemoryQuery) ([]current.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []current.Memory
	for id, m := range s.memories {
		if q.Table != "" && s.memoryTables[id] != q.Table {
			continue
		}
		if q.RoomID != uuid.Nil && m.RoomID != q.RoomID {
			continue
		}
		if q.Unique && !m.Unique() {
			continue
		}
		if q.Start != 0 && m.CreatedAt < q.Start {
			continue
		}
		if q.End != 0 && m.CreatedAt >= q.End {
			continue
		}
		if q.AgentID != nil && m.AgentID != *q.AgentID {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	if q.Count > 0 && len(out) > q.Count {
		out = out[:q.Count]
	}
	return out, nil
}

func (s *MemStore) UpdateMemory(_ context.Context, m current.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.memories[m.ID]; !ok {
		return errors.New(errors.CodeNotFound, "memory not found", nil).WithContext("id", m.ID.String())
	}
	s.memories[m.ID] = m
	return nil
}

func (s *MemStore) DeleteMemory(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memories, id)
	delete(s.memoryTables, id)
	return nil
}

func (s *MemStore) DeleteMemoriesByRoom(_ context.Context, roomID uuid.UUID, table string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, m := range s.memories {
		if m.RoomID == roomID && (table == "" || s.memoryTables[id] == table) {
			delete(s.memories, id)
			delete(s.memoryTables, id)
		}
	}
	return nil
}

func (s *MemStore) CountMemories(_ context.Context, roomID uuid.UUID, unique bool, table string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for id, m := range s.memories {
		if m.RoomID != roomID {
			continue
		}
		if table != "" && s.memoryTables[id] != table {
			continue
		}
		if unique && !m.Unique() {
			continue
		}
		count++
	}
	return count, nil
}

func (s *MemStore) CreateTask(_ context.Context, t current.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; ok {
		return errors.New(errors.CodeDuplicate, "task already exists", nil).WithContext("id", t.ID.String())
	}
	s.tasks[t.ID] = t
	return nil
}

func (s *MemStore) GetTask(_ context.Context, id uuid.UUID) (*current.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *MemStore) ListTasks(_ context.Context, q current.TaskQuery) ([]current.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []current.Task
	for _, t := range s.tasks {
		if q.RoomID != uuid.Nil && t.RoomID != q.RoomID {
			continue
		}
		if q.Name != "" && t.Name != q.Name {
			continue
		}
		if !hasAllTags(t, q.Tags) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt > out[j].UpdatedAt })
	return out, nil
}

func (s *MemStore) UpdateTask(_ context.Context, t current.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return errors.New(errors.CodeNotFound, "task not found", nil).WithContext("id", t.ID.String())
	}
	s.tasks[t.ID] = t
	return nil
}

func (s *MemStore) DeleteTask(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	return nil
}

func (s *MemStore) CreateRoom(_ context.Context, room current.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.ID]; ok {
		return errors.New(errors.CodeDuplicate, "room already exists", nil).WithContext("id", room.ID.String())
	}
	s.rooms[room.ID] = room
	return nil
}

func (s *MemStore) GetRoom(_ context.Context, id uuid.UUID) (*current.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	if !ok {
		return nil, nil
	}
	return &room, nil
}

func (s *MemStore) DeleteRoom(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, id)
	delete(s.participants, id)
	return nil
}

func (s *MemStore) AddParticipant(_ context.Context, entityID, roomID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.participants[roomID]
	if !ok {
		set = map[uuid.UUID]bool{}
		s.participants[roomID] = set
	}
	if set[entityID] {
		return errors.New(errors.CodeDuplicate, "participant already exists", nil)
	}
	set[entityID] = true
	return nil
}

func (s *MemStore) RemoveParticipant(_ context.Context, entityID, roomID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.participants[roomID]; ok {
		delete(set, entityID)
	}
	return nil
}

func (s *MemStore) ListParticipants(_ context.Context, roomID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []uuid.UUID
	for id := range s.participants[roomID] {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (s *MemStore) ListRoomsForEntity(_ context.Context, entityID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []uuid.UUID
	for roomID, set := range s.participants {
		if set[entityID] {
			out = append(out, roomID)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (s *MemStore) CreateEntity(_ context.Context, e current.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[e.ID]; ok {
		return errors.New(errors.CodeDuplicate, "entity already exists", nil).WithContext("id", e.ID.String())
	}
	s.entities[e.ID] = e
	return nil
}

func (s *MemStore) GetEntity(_ context.Context, id uuid.UUID) (*current.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (s *MemStore) CreateRelationship(_ context.Context, r current.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, got := range s.relationships {
		if got.SourceEntity == r.SourceEntity && got.TargetEntity == r.TargetEntity {
			return errors.New(errors.CodeDuplicate, "relationship already exists", nil)
		}
	}
	s.relationships = append(s.relationships, r)
	return nil
}

func (s *MemStore) GetRelationship(_ context.Context, sourceID, targetID uuid.UUID) (*current.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.relationships {
		if r.SourceEntity == sourceID && r.TargetEntity == targetID {
			out := r
			return &out, nil
		}
	}
	return nil, nil
}

func (s *MemStore) ListRelationships(_ context.Context, entityID uuid.UUID) ([]current.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []current.Relationship
	for _, r := range s.relationships {
		if r.SourceEntity == entityID || r.TargetEntity == entityID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemStore) SetCache(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemStore) GetCache(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.cache[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Close implements Store; the in-memory store has nothing to release.
func (s *MemStore) Close() error { return nil }

func hasAllTags(t current.Task, tags []string) bool {
	for _, tag := range tags {
		if !t.HasTag(tag) {
			return false
		}
	}
	return true
}
