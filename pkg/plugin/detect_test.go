// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package plugin

import "testing"

func TestDetectExplicitTagWins(t *testing.T) {
	tests := []struct {
		name   string
		bundle map[string]any
		want   Shape
	}{
		{
			name:   "shape tag",
			bundle: map[string]any{"shape": "current", "actions": []any{map[string]any{"similes": []any{"x"}}}},
			want:   ShapeCurrent,
		},
		{
			name:   "compat tag",
			bundle: map[string]any{"compat": "legacy", "init": true},
			want:   ShapeLegacy,
		},
		{
			name:   "version tag",
			bundle: map[string]any{"version": "legacy"},
			want:   ShapeLegacy,
		},
		{
			name:   "semver version falls through to heuristic",
			bundle: map[string]any{"version": "1.2.3", "init": true},
			want:   ShapeCurrent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.bundle); got != tt.want {
				t.Errorf("Detect: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectHeuristic(t *testing.T) {
	tests := []struct {
		name   string
		bundle map[string]any
		want   Shape
	}{
		{
			name:   "init hook reads current",
			bundle: map[string]any{"init": map[string]any{}},
			want:   ShapeCurrent,
		},
		{
			name:   "similes read legacy",
			bundle: map[string]any{"actions": []any{map[string]any{"name": "WAVE", "similes": []any{"greet"}}}},
			want:   ShapeLegacy,
		},
		{
			name:   "legacy-only top-level field",
			bundle: map[string]any{"clients": []any{"discord"}},
			want:   ShapeLegacy,
		},
		{
			name:   "bare actions stay unknown",
			bundle: map[string]any{"actions": []any{map[string]any{"name": "WAVE"}}},
			want:   ShapeUnknown,
		},
		{
			name:   "nil bundle",
			bundle: nil,
			want:   ShapeUnknown,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Detect(tt.bundle); got != tt.want {
				t.Errorf("Detect: got %q, want %q", got, tt.want)
			}
		})
	}
}
