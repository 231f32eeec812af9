// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/telemetry"
	"github.com/wtfsayo/agentbridge/pkg/translate"
)

const additionalInfoHeader = "# Additional Information"

// ComposeState builds the flat conversational state for msg:
//
//  1. the message is translated to the engine's shape,
//  2. the engine composes its own state (running its provider pipeline),
//  3. that state is flattened, defaults filled,
//  4. providers registered only on this façade run against the flat state
//     and contribute an additional-information block,
//  5. registered actions and evaluators are validated concurrently and the
//     passing ones appended,
//  6. caller-supplied extra keys merge last and overwrite unconditionally.
//
// The per-message cache short-circuits steps 1-5 when the same message is
// composed twice. It is advisory: a miss just re-derives.
func (f *Facade) ComposeState(ctx context.Context, msg legacy.Memory, extra map[string]any) (*legacy.State, error) {
	ctx, span := f.tracer.Start(ctx, "bridge.ComposeState")
	defer span.End()
	started := time.Now()

	if cached := f.cachedState(msg.ID); cached != nil {
		telemetry.BridgeMetrics().RecordCompose(ctx, time.Since(started), true)
		applyExtra(cached, extra)
		return cached, nil
	}

	engineState, err := f.engine.ComposeState(ctx, translate.MemoryToCurrent(msg))
	if err != nil {
		return nil, fmt.Errorf("compose state: %w", err)
	}
	state := translate.StateToLegacy(engineState)

	if err := f.fetchRoomContext(ctx, msg, state); err != nil {
		return nil, err
	}
	if err := f.runLegacyProviders(ctx, msg, state); err != nil {
		return nil, err
	}
	if err := f.validateComponents(ctx, msg, state); err != nil {
		return nil, err
	}

	f.storeState(msg.ID, state)
	telemetry.BridgeMetrics().RecordCompose(ctx, time.Since(started), false)
	f.log.DebugContext(ctx, "bridge.compose",
		slog.String("message", msg.ID.String()),
		slog.Int("actions", len(state.ActionsData)),
		slog.Int("evaluators", len(state.EvaluatorsData)),
	)

	applyExtra(state, extra)
	return state, nil
}

// UpdateRecentMessageState refreshes the recent-message fields of state and
// any cached states for the same room.
func (f *Facade) UpdateRecentMessageState(ctx context.Context, state *legacy.State) (*legacy.State, error) {
	if state == nil {
		return nil, nil
	}
	recent, err := f.MessageManager().GetMemories(ctx, legacy.MemoryQuery{
		RoomID: state.RoomID,
		Count:  32,
	})
	if err != nil {
		return nil, err
	}
	// Listings come newest first; render oldest first.
	for left, right := 0, len(recent)-1; left < right; left, right = left+1, right-1 {
		recent[left], recent[right] = recent[right], recent[left]
	}
	state.RecentMessagesData = recent
	state.RecentMessages = renderLegacyMessages(recent)

	f.cacheMu.Lock()
	for id, cached := range f.stateCache {
		if cached.RoomID == state.RoomID {
			refreshed := legacy.CloneState(cached)
			refreshed.RecentMessagesData = append([]legacy.Memory(nil), recent...)
			refreshed.RecentMessages = state.RecentMessages
			f.stateCache[id] = refreshed
		}
	}
	f.cacheMu.Unlock()
	return state, nil
}

// fetchRoomContext fills the actor and goal fields of state. Both lookups
// run concurrently; fields already populated by the engine are kept.
func (f *Facade) fetchRoomContext(ctx context.Context, msg legacy.Memory, state *legacy.State) error {
	var actors []legacy.Actor
	var goals []legacy.Goal

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := f.db.GetParticipantsForRoom(gctx, msg.RoomID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			account, err := f.db.GetAccountByID(gctx, id)
			if err != nil {
				return err
			}
			if account == nil {
				actors = append(actors, legacy.Actor{ID: id})
				continue
			}
			actors = append(actors, legacy.Actor{
				ID:       account.ID,
				Name:     account.Name,
				Username: account.Username,
			})
		}
		return nil
	})
	g.Go(func() error {
		var err error
		goals, err = f.db.GetGoals(gctx, legacy.GoalQuery{
			RoomID:      msg.RoomID,
			OnlyPending: true,
			Count:       10,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if len(state.ActorsData) == 0 {
		state.ActorsData = actors
	}
	if state.Actors == "" {
		state.Actors = renderActors(state.ActorsData)
	}
	if len(state.GoalsData) == 0 {
		state.GoalsData = goals
	}
	if state.Goals == "" {
		state.Goals = renderGoals(state.GoalsData)
	}
	return nil
}

// runLegacyProviders invokes providers registered only on the façade, fans
// their calls out, and folds non-empty texts into one block under the
// additional-information header. Scalar results merge only into fields not
// already populated: engine-sourced values win over legacy providers.
func (f *Facade) runLegacyProviders(ctx context.Context, msg legacy.Memory, state *legacy.State) error {
	engineNames := map[string]bool{}
	for _, p := range f.engine.Providers() {
		engineNames[p.Name] = true
	}
	f.mu.RLock()
	var pending []legacy.Provider
	for _, p := range f.providers {
		if p.Name != "" && engineNames[p.Name] {
			continue
		}
		pending = append(pending, p)
	}
	f.mu.RUnlock()
	if len(pending) == 0 {
		return nil
	}

	results := make([]legacy.ProviderResult, len(pending))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range pending {
		if p.Get == nil {
			continue
		}
		g.Go(func() error {
			res, err := p.Get(gctx, f, msg, legacy.CloneState(state))
			if err != nil {
				return fmt.Errorf("provider %q: %w", p.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var texts []string
	for _, res := range results {
		if res.Text != "" {
			texts = append(texts, res.Text)
		}
		for k, v := range res.Values {
			setIfUnset(state, k, v)
		}
	}
	if len(texts) > 0 {
		block := additionalInfoHeader + "\n\n" + strings.Join(texts, "\n")
		if state.Providers == "" {
			state.Providers = block
		} else {
			state.Providers += "\n" + block
		}
	}
	return nil
}

// validateComponents runs every registered action and evaluator validator
// concurrently and appends the passing ones to the state's data arrays.
// Rendered blocks are synthesized only when not already set.
func (f *Facade) validateComponents(ctx context.Context, msg legacy.Memory, state *legacy.State) error {
	f.mu.RLock()
	actions := append([]legacy.Action(nil), f.actions...)
	evaluators := append([]legacy.Evaluator(nil), f.evaluators...)
	f.mu.RUnlock()

	actionOK := make([]bool, len(actions))
	evaluatorOK := make([]bool, len(evaluators))
	snapshot := legacy.CloneState(state)

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range actions {
		if a.Validate == nil {
			actionOK[i] = true
			continue
		}
		g.Go(func() error {
			ok, err := a.Validate(gctx, f, msg, snapshot)
			if err != nil {
				return fmt.Errorf("validate action %q: %w", a.Name, err)
			}
			actionOK[i] = ok
			return nil
		})
	}
	for i, e := range evaluators {
		if e.Validate == nil {
			evaluatorOK[i] = e.AlwaysRun
			continue
		}
		g.Go(func() error {
			ok, err := e.Validate(gctx, f, msg, snapshot)
			if err != nil {
				return fmt.Errorf("validate evaluator %q: %w", e.Name, err)
			}
			evaluatorOK[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var passedActions []legacy.Action
	for i, ok := range actionOK {
		if ok {
			passedActions = append(passedActions, actions[i])
		}
	}
	var passedEvaluators []legacy.Evaluator
	for i, ok := range evaluatorOK {
		if ok {
			passedEvaluators = append(passedEvaluators, evaluators[i])
		}
	}

	state.ActionsData = append(state.ActionsData, passedActions...)
	state.EvaluatorsData = append(state.EvaluatorsData, passedEvaluators...)
	if state.ActionNames == "" {
		state.ActionNames = renderActionNames(state.ActionsData)
	}
	if state.Actions == "" {
		state.Actions = renderActions(state.ActionsData)
	}
	if state.ActionExamples == "" {
		state.ActionExamples = renderActionExamples(state.ActionsData)
	}
	if state.EvaluatorNames == "" {
		state.EvaluatorNames = renderEvaluatorNames(state.EvaluatorsData)
	}
	if state.Evaluators == "" {
		state.Evaluators = renderEvaluators(state.EvaluatorsData)
	}
	if state.EvaluatorExamples == "" {
		state.EvaluatorExamples = renderEvaluatorExamples(state.EvaluatorsData)
	}
	return nil
}

func (f *Facade) cachedState(id uuid.UUID) *legacy.State {
	if id == uuid.Nil {
		return nil
	}
	f.cacheMu.RLock()
	defer f.cacheMu.RUnlock()
	return legacy.CloneState(f.stateCache[id])
}

func (f *Facade) storeState(id uuid.UUID, state *legacy.State) {
	if id == uuid.Nil {
		return
	}
	f.cacheMu.Lock()
	defer f.cacheMu.Unlock()
	f.stateCache[id] = legacy.CloneState(state)
}

// applyExtra merges caller-supplied keys last, overwriting unconditionally.
func applyExtra(state *legacy.State, extra map[string]any) {
	for k, v := range extra {
		if !setNamedField(state, k, v, true) {
			if state.Extra == nil {
				state.Extra = map[string]any{}
			}
			state.Extra[k] = v
		}
	}
}

// setIfUnset writes a provider value into the named field only when that
// field is still empty; unknown names land in Extra the same way.
func setIfUnset(state *legacy.State, key, value string) {
	if setNamedField(state, key, value, false) {
		return
	}
	if state.Extra == nil {
		state.Extra = map[string]any{}
	}
	if _, ok := state.Extra[key]; !ok {
		state.Extra[key] = value
	}
}

// setNamedField assigns v to the string field named by key. It reports false
// when key is not a named string field or v is not a string. With overwrite
// false, populated fields are left alone (and true is still returned, since
// the key was recognized).
func setNamedField(state *legacy.State, key string, v any, overwrite bool) bool {
	text, ok := v.(string)
	if !ok {
		return false
	}
	target := namedField(state, key)
	if target == nil {
		return false
	}
	if *target == "" || overwrite {
		*target = text
	}
	return true
}

func namedField(state *legacy.State, key string) *string {
	switch key {
	case "agentName":
		return &state.AgentName
	case "bio":
		return &state.Bio
	case "lore":
		return &state.Lore
	case "messageDirections":
		return &state.MessageDirections
	case "postDirections":
		return &state.PostDirections
	case "actors":
		return &state.Actors
	case "goals":
		return &state.Goals
	case "recentMessages":
		return &state.RecentMessages
	case "recentInteractions":
		return &state.RecentInteractions
	case "actionNames":
		return &state.ActionNames
	case "actions":
		return &state.Actions
	case "actionExamples":
		return &state.ActionExamples
	case "evaluatorNames":
		return &state.EvaluatorNames
	case "evaluators":
		return &state.Evaluators
	case "evaluatorExamples":
		return &state.EvaluatorExamples
	case "providers":
		return &state.Providers
	case "text":
		return &state.Text
	}
	return nil
}

func renderLegacyMessages(ms []legacy.Memory) string {
	var sb strings.Builder
	for i, m := range ms {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(m.Content.Text)
	}
	return sb.String()
}

func renderActors(actors []legacy.Actor) string {
	var sb strings.Builder
	for i, a := range actors {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(a.Name)
		if a.Username != "" {
			sb.WriteString(" (")
			sb.WriteString(a.Username)
			sb.WriteByte(')')
		}
	}
	return sb.String()
}

func renderGoals(goals []legacy.Goal) string {
	var sb strings.Builder
	for i, g := range goals {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(g.Name)
		sb.WriteString(" (")
		sb.WriteString(string(g.Status))
		sb.WriteByte(')')
	}
	return sb.String()
}

func renderActionNames(actions []legacy.Action) string {
	names := make([]string, len(actions))
	for i, a := range actions {
		names[i] = a.Name
	}
	return strings.Join(names, ", ")
}

func renderActions(actions []legacy.Action) string {
	lines := make([]string, len(actions))
	for i, a := range actions {
		lines[i] = a.Name + ": " + a.Description
	}
	return strings.Join(lines, "\n")
}

func renderActionExamples(actions []legacy.Action) string {
	var sb strings.Builder
	for _, a := range actions {
		for _, group := range a.Examples {
			for _, ex := range group {
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString(ex.User)
				sb.WriteString(": ")
				sb.WriteString(ex.Content.Text)
			}
		}
	}
	return sb.String()
}

func renderEvaluatorNames(evaluators []legacy.Evaluator) string {
	names := make([]string, len(evaluators))
	for i, e := range evaluators {
		names[i] = e.Name
	}
	return strings.Join(names, ", ")
}

func renderEvaluators(evaluators []legacy.Evaluator) string {
	lines := make([]string, len(evaluators))
	for i, e := range evaluators {
		lines[i] = e.Name + ": " + e.Description
	}
	return strings.Join(lines, "\n")
}

func renderEvaluatorExamples(evaluators []legacy.Evaluator) string {
	var sb strings.Builder
	for _, e := range evaluators {
		for _, ex := range e.Examples {
			if sb.Len() > 0 {
				sb.WriteByte('\n')
			}
			sb.WriteString(ex.Context)
			if ex.Outcome != "" {
				sb.WriteString(" -> ")
				sb.WriteString(ex.Outcome)
			}
		}
	}
	return sb.String()
}
