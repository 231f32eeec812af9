// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package translate converts single entities between the legacy and current
// contract shapes. Every function is pure and total: nil or zero input
// yields a minimally populated default, never an error. Arrays are copied,
// never aliased, so mutation on one side of the bridge cannot leak to the
// other.
package translate

import (
	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

// ContentToCurrent converts legacy content. A single action string becomes
// a one-element actions array; an empty string becomes an absent array.
func ContentToCurrent(c legacy.Content) current.Content {
	out := current.Content{
		Text:      c.Text,
		Source:    c.Source,
		URL:       c.URL,
		InReplyTo: copyUUIDPtr(c.InReplyTo),
		Extra:     copyAnyMap(c.Extra),
	}
	if c.Action != "" {
		out.Actions = []string{c.Action}
	}
	for _, att := range c.Attachments {
		out.Attachments = append(out.Attachments, mediaToCurrent(att))
	}
	return out
}

// ContentToLegacy converts current content. Only the first element of the
// actions array survives; callers that need the full list must stay on the
// current shape.
func ContentToLegacy(c current.Content) legacy.Content {
	out := legacy.Content{
		Text:      c.Text,
		Source:    c.Source,
		URL:       c.URL,
		InReplyTo: copyUUIDPtr(c.InReplyTo),
		Extra:     copyAnyMap(c.Extra),
	}
	if len(c.Actions) > 0 {
		out.Action = c.Actions[0]
	}
	for _, att := range c.Attachments {
		out.Attachments = append(out.Attachments, mediaToLegacy(att))
	}
	return out
}

// ExampleToCurrent converts a legacy action example; the speaker slot is
// renamed user -> name.
func ExampleToCurrent(ex legacy.ActionExample) current.ActionExample {
	return current.ActionExample{
		Name:    ex.User,
		Content: ContentToCurrent(ex.Content),
	}
}

// ExampleToLegacy converts a current action example; the speaker slot is
// renamed name -> user.
func ExampleToLegacy(ex current.ActionExample) legacy.ActionExample {
	return legacy.ActionExample{
		User:    ex.Name,
		Content: ContentToLegacy(ex.Content),
	}
}

// ExamplesToCurrent converts grouped example dialogs.
func ExamplesToCurrent(groups [][]legacy.ActionExample) [][]current.ActionExample {
	if groups == nil {
		return nil
	}
	out := make([][]current.ActionExample, len(groups))
	for i, group := range groups {
		out[i] = make([]current.ActionExample, len(group))
		for j, ex := range group {
			out[i][j] = ExampleToCurrent(ex)
		}
	}
	return out
}

// ExamplesToLegacy converts grouped example dialogs.
func ExamplesToLegacy(groups [][]current.ActionExample) [][]legacy.ActionExample {
	if groups == nil {
		return nil
	}
	out := make([][]legacy.ActionExample, len(groups))
	for i, group := range groups {
		out[i] = make([]legacy.ActionExample, len(group))
		for j, ex := range group {
			out[i][j] = ExampleToLegacy(ex)
		}
	}
	return out
}

func mediaToCurrent(m legacy.Media) current.Media {
	return current.Media{
		ID:          m.ID,
		URL:         m.URL,
		Title:       m.Title,
		Source:      m.Source,
		Description: m.Description,
		Text:        m.Text,
		Extra:       copyAnyMap(m.Extra),
	}
}

func mediaToLegacy(m current.Media) legacy.Media {
	return legacy.Media{
		ID:          m.ID,
		URL:         m.URL,
		Title:       m.Title,
		Source:      m.Source,
		Description: m.Description,
		Text:        m.Text,
		Extra:       copyAnyMap(m.Extra),
	}
}
