// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package plugin

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plugin.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
name: web-tools
version: 0.3.0
shape: legacy
actions:
  - SEARCH
  - BROWSE
services:
  - type: web_search
    endpoint: http://localhost:8080
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "web-tools" || m.Version != "0.3.0" {
		t.Errorf("identity drift: %+v", m)
	}
	if len(m.Actions) != 2 || m.Actions[0] != "SEARCH" {
		t.Errorf("actions: %v", m.Actions)
	}
	if len(m.Services) != 1 || m.Services[0].Type != "web_search" {
		t.Errorf("services: %+v", m.Services)
	}
	if got := m.DetectShape(); got != ShapeLegacy {
		t.Errorf("declared shape: got %q", got)
	}
}

func TestLoadManifestRequiresName(t *testing.T) {
	path := writeManifest(t, "version: 1.0.0\n")
	if _, err := LoadManifest(path); err == nil {
		t.Error("expected an error for a nameless manifest")
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	if _, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing manifest")
	}
}

func TestDetectShapeStructural(t *testing.T) {
	withServices := &Manifest{Name: "x", Services: []ServiceManifest{{Type: "pdf"}}}
	if got := withServices.DetectShape(); got != ShapeLegacy {
		t.Errorf("service declarations should read legacy, got %q", got)
	}
	bare := &Manifest{Name: "x", Actions: []string{"WAVE"}}
	if got := bare.DetectShape(); got != ShapeUnknown {
		t.Errorf("bare manifest should stay unknown, got %q", got)
	}
}
