// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/telemetry"
	"github.com/wtfsayo/agentbridge/pkg/translate"
)

const (
	documentsTable = "documents"
	fragmentsTable = "fragments"

	// fragmentSize bounds how much text goes into one searchable fragment.
	fragmentSize = 1200

	knowledgeMatchThreshold = 0.7
	knowledgeResultCount    = 5
)

// Knowledge implements the legacy knowledge manager on top of the engine's
// generic memory storage: whole items land in the documents table, split
// pieces with embeddings in the fragments table.
type Knowledge struct {
	engine current.Engine
	log    *slog.Logger
}

var _ legacy.KnowledgeManager = (*Knowledge)(nil)

// NewKnowledge creates the knowledge proxy.
func NewKnowledge(engine current.Engine) *Knowledge {
	return &Knowledge{engine: engine, log: engine.Logger()}
}

// Set stores the item and indexes its text for retrieval. Storing the same
// item twice is a no-op, matching legacy semantics.
func (k *Knowledge) Set(ctx context.Context, item legacy.KnowledgeItem) error {
	doc := translate.KnowledgeToMemory(item)
	if _, err := k.engine.CreateMemory(ctx, doc, documentsTable); err != nil {
		if errors.IsDuplicate(err) {
			telemetry.BridgeMetrics().RecordDuplicateSwallowed(ctx, "knowledge.set")
			k.log.DebugContext(ctx, "proxy.knowledge.duplicate.swallowed")
			return nil
		}
		return k.fail(ctx, "set", err)
	}
	for n, piece := range splitText(item.Content.Text, fragmentSize) {
		embedding, err := k.embed(ctx, piece)
		if err != nil {
			return k.fail(ctx, "set", err)
		}
		fragment := current.Memory{
			ID:        translate.UniqueID(fmt.Sprintf("%s-fragment-%d", item.ID, n)),
			Content:   current.Content{Text: piece, Source: item.ID.String()},
			Embedding: embedding,
		}
		if _, err := k.engine.CreateMemory(ctx, fragment, fragmentsTable); err != nil {
			if errors.IsDuplicate(err) {
				continue
			}
			return k.fail(ctx, "set", err)
		}
	}
	return nil
}

// Get retrieves knowledge relevant to the message by embedding its text and
// searching the fragments table. A message without text, or a runtime
// without an embedding model, yields no items rather than an error.
func (k *Knowledge) Get(ctx context.Context, msg legacy.Memory) ([]legacy.KnowledgeItem, error) {
	if strings.TrimSpace(msg.Content.Text) == "" {
		return nil, nil
	}
	embedding, err := k.embed(ctx, msg.Content.Text)
	if err != nil {
		if errors.IsUnavailable(err) {
			k.log.DebugContext(ctx, "proxy.knowledge.embedding.unavailable")
			return nil, nil
		}
		return nil, k.fail(ctx, "get", err)
	}
	// Fragments are stored without a room: knowledge is agent-global.
	fragments, err := k.engine.SearchMemories(ctx, current.SearchQuery{
		Table:          fragmentsTable,
		Embedding:      embedding,
		Count:          knowledgeResultCount,
		MatchThreshold: knowledgeMatchThreshold,
	})
	if err != nil {
		return nil, k.fail(ctx, "get", err)
	}
	items := make([]legacy.KnowledgeItem, 0, len(fragments))
	for _, fragment := range fragments {
		items = append(items, translate.MemoryToKnowledge(fragment))
	}
	return items, nil
}

func (k *Knowledge) embed(ctx context.Context, text string) ([]float32, error) {
	result, err := k.engine.UseModel(ctx, current.ModelTextEmbedding, map[string]any{
		current.ParamText: text,
	})
	if err != nil {
		return nil, err
	}
	embedding, ok := result.([]float32)
	if !ok {
		return nil, errors.New(errors.CodeDelegate, "embedding model returned unexpected shape", nil)
	}
	return embedding, nil
}

func (k *Knowledge) fail(ctx context.Context, op string, err error) error {
	k.log.ErrorContext(ctx, "proxy.knowledge.delegate.error",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return err
}

// splitText cuts text into pieces of at most size runes, preferring to break
// at whitespace.
func splitText(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	runes := []rune(text)
	var out []string
	for len(runes) > size {
		cut := size
		for cut > size/2 && !isSpace(runes[cut]) {
			cut--
		}
		if cut <= size/2 {
			cut = size
		}
		out = append(out, strings.TrimSpace(string(runes[:cut])))
		runes = runes[cut:]
	}
	if piece := strings.TrimSpace(string(runes)); piece != "" {
		out = append(out, piece)
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}
