// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package legacy

import (
	"context"

	"github.com/google/uuid"
)

// Character is the agent persona as the old generation sees it.
type Character struct {
	Name              string   `json:"name"`
	Bio               []string `json:"bio"`
	Lore              []string `json:"lore"`
	MessageDirections string   `json:"messageDirections,omitempty"`
	PostDirections    string   `json:"postDirections,omitempty"`
}

// CompletionRequest asks the runtime for generated text.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
	StopSeqs    []string
	Large       bool
}

// Runtime is the full old-generation runtime contract. The bridge façade
// implements every method on top of a current-generation engine; plugins
// keep calling this interface unmodified.
type Runtime interface {
	AgentID() uuid.UUID
	Character() Character

	DatabaseAdapter() DatabaseAdapter
	MessageManager() MemoryManager
	DescriptionManager() MemoryManager
	DocumentsManager() MemoryManager
	KnowledgeManager() KnowledgeManager

	// GetMemoryManager returns the manager registered for table, or nil.
	GetMemoryManager(table string) MemoryManager
	RegisterMemoryManager(mgr MemoryManager) error

	// ComposeState builds the flat conversational state for msg. Extra keys
	// are merged last and overwrite unconditionally.
	ComposeState(ctx context.Context, msg Memory, extra map[string]any) (*State, error)

	// UpdateRecentMessageState refreshes the recent-message fields of a
	// previously composed state.
	UpdateRecentMessageState(ctx context.Context, state *State) (*State, error)

	RegisterAction(action Action)
	RegisterEvaluator(evaluator Evaluator)
	RegisterContextProvider(provider Provider)
	Actions() []Action
	Evaluators() []Evaluator
	Providers() []Provider

	// ProcessActions dispatches the action named by each response message.
	ProcessActions(ctx context.Context, msg Memory, responses []Memory, state *State, cb HandlerCallback) error

	// Evaluate runs all applicable evaluators and returns their names.
	Evaluate(ctx context.Context, msg Memory, state *State, didRespond bool) ([]string, error)

	EnsureConnection(ctx context.Context, userID, roomID uuid.UUID, userName, screenName, source string) error
	EnsureUserExists(ctx context.Context, userID uuid.UUID, userName, name, source string) error
	EnsureParticipantInRoom(ctx context.Context, userID, roomID uuid.UUID) error
	EnsureRoomExists(ctx context.Context, roomID uuid.UUID) error

	// GetService returns the capability registered or resolvable for t, or
	// nil when the capability is unavailable.
	GetService(t ServiceType) Service
	RegisterService(svc Service) error

	Completion(ctx context.Context, req CompletionRequest) (string, error)
	Embed(ctx context.Context, text string) ([]float32, error)

	GetGoals(ctx context.Context, q GoalQuery) ([]Goal, error)
	CreateGoal(ctx context.Context, goal Goal) error
	UpdateGoal(ctx context.Context, goal Goal) error

	// Stop tears down resolver-owned resources (browsers, remote clients).
	Stop(ctx context.Context) error
}
