// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package translate

import "github.com/google/uuid"

// idNamespace is the fixed namespace for deterministic id derivation. Both
// generations must derive the same id from the same seed string, so this
// value never changes.
var idNamespace = uuid.MustParse("b0f6c8d4-0000-4000-8000-a9e1c84d2b11")

// UniqueID derives a stable UUID from an arbitrary seed string. If the seed
// already parses as a UUID it is returned unchanged.
func UniqueID(seed string) uuid.UUID {
	if id, err := uuid.Parse(seed); err == nil {
		return id
	}
	return uuid.NewSHA1(idNamespace, []byte(seed))
}

func copyUUIDPtr(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	out := *id
	return &out
}

func copyAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyFloats(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
