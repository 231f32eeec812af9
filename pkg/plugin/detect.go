// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package plugin

// Shape classifies which generation of the plugin contract a bundle was
// written against.
type Shape string

const (
	ShapeLegacy  Shape = "legacy"
	ShapeCurrent Shape = "current"
	ShapeUnknown Shape = "unknown"
)

// Detect classifies a decoded plugin bundle (a generic map, as parsed from
// JSON or YAML). An explicit "shape", "compat" or "version" tag always wins.
// Without one, the structural heuristic applies: actions carrying similes
// and no init hook read as legacy, an init hook reads as current. The
// heuristic can misclassify a current bundle that happens to carry a
// similes-like field, which is why manifests should tag their shape.
func Detect(bundle map[string]any) Shape {
	if bundle == nil {
		return ShapeUnknown
	}
	for _, key := range []string{"shape", "compat", "version"} {
		if tag, ok := bundle[key].(string); ok {
			switch Shape(tag) {
			case ShapeLegacy:
				return ShapeLegacy
			case ShapeCurrent:
				return ShapeCurrent
			}
		}
	}

	if _, ok := bundle["init"]; ok {
		return ShapeCurrent
	}
	if actionsHaveSimiles(bundle["actions"]) {
		return ShapeLegacy
	}
	for _, key := range legacyOnlyFields {
		if _, ok := bundle[key]; ok {
			return ShapeLegacy
		}
	}
	return ShapeUnknown
}

// Top-level fields that only the old plugin contract defines.
var legacyOnlyFields = []string{"clients", "adapters"}

func actionsHaveSimiles(v any) bool {
	actions, ok := v.([]any)
	if !ok {
		return false
	}
	for _, item := range actions {
		action, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if _, ok := action["similes"]; ok {
			return true
		}
	}
	return false
}
