// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log defaults: %+v", cfg.Log)
	}
	if cfg.Engine.Store != "memory" || cfg.Engine.Vector != "memory" {
		t.Errorf("engine defaults: %+v", cfg.Engine)
	}
	if cfg.Services.BrowserEnabled {
		t.Error("browser should default off")
	}
	if cfg.Services.WebSearchTool != "web_search" {
		t.Errorf("web search tool default: %q", cfg.Services.WebSearchTool)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	content := []byte(`
log:
  level: debug
engine:
  store: sqlite
  sqlite_path: /tmp/bridge.db
services:
  browser_enabled: true
  mcp_command: npx
  mcp_args:
    - "-y"
    - "@modelcontextprotocol/server-brave-search"
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level: %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("untouched default changed: %q", cfg.Log.Format)
	}
	if cfg.Engine.Store != "sqlite" || cfg.Engine.SQLitePath != "/tmp/bridge.db" {
		t.Errorf("engine: %+v", cfg.Engine)
	}
	if !cfg.Services.BrowserEnabled || cfg.Services.MCPCommand != "npx" {
		t.Errorf("services: %+v", cfg.Services)
	}
	if len(cfg.Services.MCPArgs) != 2 {
		t.Errorf("mcp args: %v", cfg.Services.MCPArgs)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: warn\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("AGENTBRIDGE_LOG_LEVEL", "error")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("env should win over file, got %q", cfg.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
