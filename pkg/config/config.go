// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads bridge configuration from defaults, an optional YAML
// file and AGENTBRIDGE_-prefixed environment variables, in that order.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Engine    EngineConfig    `koanf:"engine"`
	Services  ServicesConfig  `koanf:"services"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type TelemetryConfig struct {
	Exporter     string `koanf:"exporter"` // stdout, otlp
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	OTLPInsecure bool   `koanf:"otlp_insecure"`
}

// EngineConfig configures the reference engine used for development and
// tests. Production deployments pass in their own engine.
type EngineConfig struct {
	Store      string `koanf:"store"` // memory, sqlite
	SQLitePath string `koanf:"sqlite_path"`
	Vector     string `koanf:"vector"` // memory, qdrant
	QdrantAddr string `koanf:"qdrant_addr"`
	AgentName  string `koanf:"agent_name"`
}

// ServicesConfig configures optional capability adapters.
type ServicesConfig struct {
	BrowserEnabled bool   `koanf:"browser_enabled"`
	CacheDir       string `koanf:"cache_dir"`
	// MCP endpoint for tool-backed capabilities. Empty disables them.
	MCPCommand    string   `koanf:"mcp_command"`
	MCPArgs       []string `koanf:"mcp_args"`
	WebSearchTool string   `koanf:"web_search_tool"`
}

// Load reads configuration. Path may be empty to skip the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Defaults
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("telemetry.exporter", "stdout")
	k.Set("engine.store", "memory")
	k.Set("engine.sqlite_path", "agentbridge.db")
	k.Set("engine.vector", "memory")
	k.Set("engine.qdrant_addr", "localhost:6334")
	k.Set("engine.agent_name", "agent")
	k.Set("services.browser_enabled", false)
	k.Set("services.cache_dir", ".agentbridge-cache")
	k.Set("services.web_search_tool", "web_search")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// AGENTBRIDGE_LOG_LEVEL -> log.level
	if err := k.Load(env.Provider("AGENTBRIDGE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "AGENTBRIDGE_")), "_", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
