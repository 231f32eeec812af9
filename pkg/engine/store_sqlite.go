// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/errors"
)

// SQLiteStore persists the reference engine's rows in a SQLite database.
// Entities are stored as JSON documents with the columns needed for
// filtering broken out.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and ensures schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.New(errors.CodeInit, "open sqlite", err).WithContext("path", path)
	}
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLiteStore wraps an existing database handle and ensures schema.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	store := &SQLiteStore{db: db}
	if err := store.ensureSchema(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			agent_id TEXT NOT NULL,
			tbl TEXT NOT NULL,
			uniq INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS memories_room ON memories(room_id, tbl, created_at)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			room_id TEXT NOT NULL,
			name TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL,
			doc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rooms (
			id TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS participants (
			entity_id TEXT NOT NULL,
			room_id TEXT NOT NULL,
			PRIMARY KEY (entity_id, room_id)
		)`,
		`CREATE TABLE IF NOT EXISTS entities (
			id TEXT PRIMARY KEY,
			doc TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS relationships (
			source_id TEXT NOT NULL,
			target_id TEXT NOT NULL,
			doc TEXT NOT NULL,
			PRIMARY KEY (source_id, target_id)
		)`,
		`CREATE TABLE IF NOT EXISTS cache (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return errors.New(errors.CodeInit, "ensure sqlite schema", err)
		}
	}
	return nil
}

func (s *SQLiteStore) CreateMemory(ctx context.Context, m current.Memory, table string) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	uniq := 0
	if m.Unique() {
		uniq = 1
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO memories (id, room_id, agent_id, tbl, uniq, created_at, doc) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID.String(), m.RoomID.String(), m.AgentID.String(), table, uniq, m.CreatedAt, string(doc))
	return wrapSQLiteErr("create memory", err)
}

func (s *SQLiteStore) GetMemory(ctx context.Context, id uuid.UUID) (*current.Memory, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doc FROM memories WHERE id = ?`, id.String())
	return scanMemory(row)
}

func (s *SQLiteStore) ListMemories(ctx context.Context, q current.MemoryQuery) ([]current.Memory, error) {
	query := `SELECT doc FROM memories WHERE 1=1`
	var args []any
	if q.Table != "" {
		query += ` AND tbl = ?`
		args = append(args, q.Table)
	}
	if q.RoomID != uuid.Nil {
		query += ` AND room_id = ?`
		args = append(args, q.RoomID.String())
	}
	if q.Unique {
		query += ` AND uniq = 1`
	}
	if q.Start != 0 {
		query += ` AND created_at >= ?`
		args = append(args, q.Start)
	}
	if q.End != 0 {
		query += ` AND created_at < ?`
		args = append(args, q.End)
	}
	if q.AgentID != nil {
		query += ` AND agent_id = ?`
		args = append(args, q.AgentID.String())
	}
	query += ` ORDER BY created_at DESC`
	if q.Count > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Count)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []current.Memory
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var m current.Memory
		if err := json.Unmarshal([]byte(doc), &m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateMemory(ctx context.Context, m current.Memory) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return err
	}
	uniq := 0
	if m.Unique() {
		uniq = 1
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET doc = ?, uniq = ?, created_at = ? WHERE id = ?`,
		string(doc), uniq, m.CreatedAt, m.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.CodeNotFound, "memory not found", nil).WithContext("id", m.ID.String())
	}
	return nil
}

func (s *SQLiteStore) DeleteMemory(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id.String())
	return err
}

func (s *SQLiteStore) DeleteMemoriesByRoom(ctx context.Context, roomID uuid.UUID, table string) error {
	if table == "" {
		_, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE room_id = ?`, roomID.String())
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE room_id = ? AND tbl = ?`, roomID.String(), table)
	return err
}

func (s *SQLiteStore) CountMemories(ctx context.Context, roomID uuid.UUID, unique bool, table string) (int, error) {
	query := `SELECT COUNT(*) FROM memories WHERE room_id = ?`
	args := []any{roomID.String()}
	if table != "" {
		query += ` AND tbl = ?`
		args = append(args, table)
	}
	if unique {
		query += ` AND uniq = 1`
	}
	var count int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&count)
	return count, err
}

func (s *SQLiteStore) CreateTask(ctx context.Context, t current.Task) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, room_id, name, tags, updated_at, doc) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.RoomID.String(), t.Name, strings.Join(t.Tags, ","), t.UpdatedAt, string(doc))
	return wrapSQLiteErr("create task", err)
}

func (s *SQLiteStore) GetTask(ctx context.Context, id uuid.UUID) (*current.Task, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM tasks WHERE id = ?`, id.String()).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var t current.Task
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *SQLiteStore) ListTasks(ctx context.Context, q current.TaskQuery) ([]current.Task, error) {
	query := `SELECT doc FROM tasks WHERE 1=1`
	var args []any
	if q.RoomID != uuid.Nil {
		query += ` AND room_id = ?`
		args = append(args, q.RoomID.String())
	}
	if q.Name != "" {
		query += ` AND name = ?`
		args = append(args, q.Name)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []current.Task
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t current.Task
		if err := json.Unmarshal([]byte(doc), &t); err != nil {
			return nil, err
		}
		// Tag filtering happens on the decoded row; the tags column exists
		// only for human inspection.
		if !hasAllTags(t, q.Tags) {
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, t current.Task) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET name = ?, tags = ?, updated_at = ?, doc = ? WHERE id = ?`,
		t.Name, strings.Join(t.Tags, ","), t.UpdatedAt, string(doc), t.ID.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.CodeNotFound, "task not found", nil).WithContext("id", t.ID.String())
	}
	return nil
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String())
	return err
}

func (s *SQLiteStore) CreateRoom(ctx context.Context, room current.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO rooms (id, doc) VALUES (?, ?)`, room.ID.String(), string(doc))
	return wrapSQLiteErr("create room", err)
}

func (s *SQLiteStore) GetRoom(ctx context.Context, id uuid.UUID) (*current.Room, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM rooms WHERE id = ?`, id.String()).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var room current.Room
	if err := json.Unmarshal([]byte(doc), &room); err != nil {
		return nil, err
	}
	return &room, nil
}

func (s *SQLiteStore) DeleteRoom(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM participants WHERE room_id = ?`, id.String()); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id.String())
	return err
}

func (s *SQLiteStore) AddParticipant(ctx context.Context, entityID, roomID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (entity_id, room_id) VALUES (?, ?)`,
		entityID.String(), roomID.String())
	return wrapSQLiteErr("add participant", err)
}

func (s *SQLiteStore) RemoveParticipant(ctx context.Context, entityID, roomID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM participants WHERE entity_id = ? AND room_id = ?`,
		entityID.String(), roomID.String())
	return err
}

func (s *SQLiteStore) ListParticipants(ctx context.Context, roomID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT entity_id FROM participants WHERE room_id = ? ORDER BY entity_id`, roomID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUUIDs(rows)
}

func (s *SQLiteStore) ListRoomsForEntity(ctx context.Context, entityID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT room_id FROM participants WHERE entity_id = ? ORDER BY room_id`, entityID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUUIDs(rows)
}

func (s *SQLiteStore) CreateEntity(ctx context.Context, e current.Entity) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO entities (id, doc) VALUES (?, ?)`, e.ID.String(), string(doc))
	return wrapSQLiteErr("create entity", err)
}

func (s *SQLiteStore) GetEntity(ctx context.Context, id uuid.UUID) (*current.Entity, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM entities WHERE id = ?`, id.String()).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var e current.Entity
	if err := json.Unmarshal([]byte(doc), &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) CreateRelationship(ctx context.Context, r current.Relationship) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO relationships (source_id, target_id, doc) VALUES (?, ?, ?)`,
		r.SourceEntity.String(), r.TargetEntity.String(), string(doc))
	return wrapSQLiteErr("create relationship", err)
}

func (s *SQLiteStore) GetRelationship(ctx context.Context, sourceID, targetID uuid.UUID) (*current.Relationship, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM relationships WHERE source_id = ? AND target_id = ?`,
		sourceID.String(), targetID.String()).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var r current.Relationship
	if err := json.Unmarshal([]byte(doc), &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) ListRelationships(ctx context.Context, entityID uuid.UUID) ([]current.Relationship, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT doc FROM relationships WHERE source_id = ? OR target_id = ?`,
		entityID.String(), entityID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []current.Relationship
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var r current.Relationship
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SetCache(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}

func (s *SQLiteStore) GetCache(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM cache WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func scanMemory(row *sql.Row) (*current.Memory, error) {
	var doc string
	err := row.Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m current.Memory
	if err := json.Unmarshal([]byte(doc), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanUUIDs(rows *sql.Rows) ([]uuid.UUID, error) {
	var out []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// wrapSQLiteErr classifies unique-constraint violations as duplicate-class
// errors so proxies can swallow them.
func wrapSQLiteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(strings.ToLower(err.Error()), "unique constraint") ||
		strings.Contains(err.Error(), "constraint failed") {
		return errors.New(errors.CodeDuplicate, op+": already exists", err)
	}
	return err
}
