// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wtfsayo/agentbridge/pkg/errors"
)

// Manifest describes a plugin bundle on disk: identity, declared shape and
// the members a loader should expect.
type Manifest struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Description string `yaml:"description,omitempty"`
	// Shape is the explicit generation tag: "legacy" or "current". Bundles
	// without it fall back to structural detection.
	Shape Shape `yaml:"shape,omitempty"`

	Actions    []string          `yaml:"actions,omitempty"`
	Providers  []string          `yaml:"providers,omitempty"`
	Evaluators []string          `yaml:"evaluators,omitempty"`
	Services   []ServiceManifest `yaml:"services,omitempty"`
}

// ServiceManifest declares one capability the bundle provides.
type ServiceManifest struct {
	Type     string `yaml:"type"`
	Endpoint string `yaml:"endpoint,omitempty"`
}

// LoadManifest reads and parses a YAML manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "read manifest", err).WithContext("path", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.CodeInvalidInput, "parse manifest", err).WithContext("path", path)
	}
	if m.Name == "" {
		return nil, errors.New(errors.CodeInvalidInput, "manifest requires a name", nil).WithContext("path", path)
	}
	return &m, nil
}

// DetectShape returns the manifest's declared shape, or classifies it
// structurally when the tag is missing.
func (m *Manifest) DetectShape() Shape {
	if m.Shape == ShapeLegacy || m.Shape == ShapeCurrent {
		return m.Shape
	}
	bundle := map[string]any{}
	if len(m.Services) > 0 {
		// Typed capability declarations only exist in the old contract.
		bundle["adapters"] = true
	}
	return Detect(bundle)
}
