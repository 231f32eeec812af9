// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package current defines the newer-generation runtime contract consumed by
// the bridge: two-part conversational state, entityId-addressed memories,
// generic tasks and a model-invocation primitive.
package current

// State is the composed conversational context in its two-part shape:
// Values holds rendered/scalar fields, Data holds structured arrays, and
// Extra holds top-level extension fields of the envelope.
type State struct {
	Values map[string]any `json:"values"`
	Data   map[string]any `json:"data"`
	Text   string         `json:"text"`
	Extra  map[string]any `json:"-"`
}

// NewState returns a State with allocated maps.
func NewState() State {
	return State{
		Values: map[string]any{},
		Data:   map[string]any{},
		Extra:  map[string]any{},
	}
}

// CloneState copies s, including its maps.
func CloneState(s State) State {
	return State{
		Values: cloneAnyMap(s.Values),
		Data:   cloneAnyMap(s.Data),
		Text:   s.Text,
		Extra:  cloneAnyMap(s.Extra),
	}
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
