// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

const mcpInitTimeout = 10 * time.Second

// webSearchService answers searches through an MCP tool served by a stdio
// subprocess. The subprocess starts during Initialize so resolution fails
// fast when the command is broken.
type webSearchService struct {
	command string
	args    []string
	tool    string

	mu  sync.Mutex
	cli *client.Client
}

var _ legacy.WebSearchService = (*webSearchService)(nil)

func (s *webSearchService) Type() legacy.ServiceType { return legacy.ServiceWebSearch }

func (s *webSearchService) Initialize(ctx context.Context, _ legacy.Runtime) error {
	cli, err := client.NewStdioMCPClient(s.command, nil, s.args...)
	if err != nil {
		return errors.New(errors.CodeInit, "start mcp client", err).WithContext("command", s.command)
	}
	if err := cli.Start(ctx); err != nil {
		return errors.New(errors.CodeInit, "start mcp transport", err)
	}

	initCtx, cancel := context.WithTimeout(ctx, mcpInitTimeout)
	defer cancel()
	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: "agentbridge", Version: "0.1.0"}
	if _, err := cli.Initialize(initCtx, req); err != nil {
		cli.Close()
		return errors.New(errors.CodeInit, "initialize mcp session", err)
	}

	s.mu.Lock()
	s.cli = cli
	s.mu.Unlock()
	return nil
}

func (s *webSearchService) Stop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cli == nil {
		return nil
	}
	err := s.cli.Close()
	s.cli = nil
	return err
}

func (s *webSearchService) Search(ctx context.Context, query string) (string, error) {
	s.mu.Lock()
	cli := s.cli
	s.mu.Unlock()
	if cli == nil {
		return "", errors.New(errors.CodeUnavailable, "web search not initialized", nil)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = s.tool
	req.Params.Arguments = map[string]any{"query": query}
	result, err := cli.CallTool(ctx, req)
	if err != nil {
		return "", errors.New(errors.CodeDelegate, "call search tool", err).WithContext("tool", s.tool)
	}
	if result.IsError {
		return "", errors.New(errors.CodeDelegate, "search tool reported an error", nil).WithContext("tool", s.tool)
	}

	var parts []string
	for _, item := range result.Content {
		switch content := item.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}
