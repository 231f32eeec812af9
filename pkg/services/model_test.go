// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/engine"
	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
	"github.com/wtfsayo/agentbridge/pkg/testkit"
)

// A model failure must surface to the caller unchanged, with a log line
// naming the capability and the model that produced it.
func TestGenerateLogsAndRethrowsModelError(t *testing.T) {
	var logs bytes.Buffer
	eng := engine.New(current.Character{Name: "Ada"},
		engine.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	modelErr := errors.New(errors.CodeDelegate, "model backend down", nil)
	scripted := testkit.NewScriptedModel()
	scripted.Err = modelErr
	eng.RegisterModel(current.ModelTextSmall, scripted.Handle)

	svc := &textService{engine: eng}
	_, err := svc.Generate(context.Background(), "hi", legacy.GenerateOptions{})
	if err != modelErr {
		t.Fatalf("expected the model error unchanged, got %v", err)
	}

	out := logs.String()
	if !strings.Contains(out, "services.model.delegate.error") {
		t.Errorf("missing delegate error log line:\n%s", out)
	}
	if !strings.Contains(out, "service=text_generation") {
		t.Errorf("log line should name the capability:\n%s", out)
	}
	if !strings.Contains(out, string(current.ModelTextSmall)) {
		t.Errorf("log line should name the model tag:\n%s", out)
	}
}

func TestTranscribeLogsAndRethrowsModelError(t *testing.T) {
	var logs bytes.Buffer
	eng := engine.New(current.Character{Name: "Ada"},
		engine.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	modelErr := errors.New(errors.CodeDelegate, "model backend down", nil)
	scripted := testkit.NewScriptedModel()
	scripted.Err = modelErr
	eng.RegisterModel(current.ModelTranscription, scripted.Handle)

	svc := &transcriptionService{engine: eng}
	_, err := svc.Transcribe(context.Background(), []byte{0x00})
	if err != modelErr {
		t.Fatalf("expected the model error unchanged, got %v", err)
	}
	if !strings.Contains(logs.String(), "services.model.delegate.error") {
		t.Errorf("missing delegate error log line:\n%s", logs.String())
	}
}
