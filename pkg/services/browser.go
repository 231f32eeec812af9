// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

const pageTimeout = 30 * time.Second

// browserService fetches pages with a headless browser. The browser is
// launched on first fetch, not at resolution time, so an unused capability
// never spawns a process.
type browserService struct {
	mu      sync.Mutex
	browser *rod.Browser
}

var _ legacy.BrowserService = (*browserService)(nil)

func (s *browserService) Type() legacy.ServiceType { return legacy.ServiceBrowser }

func (s *browserService) Initialize(context.Context, legacy.Runtime) error { return nil }

func (s *browserService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser == nil {
		return nil
	}
	err := s.browser.Close()
	s.browser = nil
	return err
}

func (s *browserService) Fetch(ctx context.Context, pageURL string) (*legacy.PageContent, error) {
	browser, err := s.connect()
	if err != nil {
		return nil, err
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, errors.New(errors.CodeDelegate, "open page", err)
	}
	defer page.Close()

	page = page.Context(ctx).Timeout(pageTimeout)
	if err := page.Navigate(pageURL); err != nil {
		return nil, errors.New(errors.CodeDelegate, "navigate", err).WithContext("url", pageURL)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, errors.New(errors.CodeDelegate, "wait load", err).WithContext("url", pageURL)
	}
	info, err := page.Info()
	if err != nil {
		return nil, errors.New(errors.CodeDelegate, "page info", err)
	}
	body, err := page.HTML()
	if err != nil {
		return nil, errors.New(errors.CodeDelegate, "page html", err)
	}
	return &legacy.PageContent{URL: info.URL, Title: info.Title, Body: body}, nil
}

// connect launches the shared browser on first use. The browser outlives
// any one Fetch and carries no request context; only pages are bound to the
// caller's context. Stop tears it down.
func (s *browserService) connect() (*rod.Browser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.browser != nil {
		return s.browser, nil
	}
	controlURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		return nil, errors.New(errors.CodeUnavailable, "launch browser", err)
	}
	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, errors.New(errors.CodeUnavailable, "connect browser", err)
	}
	s.browser = browser
	return browser, nil
}
