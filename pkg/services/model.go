// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/wtfsayo/agentbridge/pkg/current"
	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

// The adapters in this file synthesize old-generation capabilities from the
// engine's generic model interface. They hold no resources of their own, so
// Initialize and Stop are no-ops.

// modelFail logs a model delegation failure, naming the capability and the
// model tag that produced it, and hands the error back unchanged.
func modelFail(ctx context.Context, eng current.Engine, service legacy.ServiceType, model current.ModelType, err error) error {
	eng.Logger().ErrorContext(ctx, "services.model.delegate.error",
		slog.String("service", string(service)),
		slog.String("model", string(model)),
		slog.String("error", err.Error()),
	)
	return err
}

type transcriptionService struct {
	engine current.Engine
}

var _ legacy.TranscriptionService = (*transcriptionService)(nil)

func (s *transcriptionService) Type() legacy.ServiceType { return legacy.ServiceTranscription }

func (s *transcriptionService) Initialize(context.Context, legacy.Runtime) error { return nil }

func (s *transcriptionService) Stop(context.Context) error { return nil }

func (s *transcriptionService) Transcribe(ctx context.Context, audio []byte) (string, error) {
	result, err := s.engine.UseModel(ctx, current.ModelTranscription, map[string]any{
		current.ParamAudio: audio,
	})
	if err != nil {
		return "", modelFail(ctx, s.engine, legacy.ServiceTranscription, current.ModelTranscription, err)
	}
	text, ok := result.(string)
	if !ok {
		return "", errors.New(errors.CodeDelegate, "transcription model returned unexpected shape", nil)
	}
	return text, nil
}

type imageService struct {
	engine current.Engine
}

var _ legacy.ImageDescriptionService = (*imageService)(nil)

func (s *imageService) Type() legacy.ServiceType { return legacy.ServiceImageDescription }

func (s *imageService) Initialize(context.Context, legacy.Runtime) error { return nil }

func (s *imageService) Stop(context.Context) error { return nil }

func (s *imageService) Describe(ctx context.Context, imageURL string) (*legacy.ImageDescription, error) {
	result, err := s.engine.UseModel(ctx, current.ModelImageDescription, map[string]any{
		current.ParamImageURL: imageURL,
	})
	if err != nil {
		return nil, modelFail(ctx, s.engine, legacy.ServiceImageDescription, current.ModelImageDescription, err)
	}
	switch v := result.(type) {
	case *legacy.ImageDescription:
		return v, nil
	case map[string]any:
		desc := &legacy.ImageDescription{}
		if title, ok := v["title"].(string); ok {
			desc.Title = title
		}
		if text, ok := v["description"].(string); ok {
			desc.Description = text
		}
		return desc, nil
	case string:
		// Plain-text models give one blob. The first line doubles as title.
		title, body, found := strings.Cut(v, "\n")
		if !found {
			return &legacy.ImageDescription{Title: v, Description: v}, nil
		}
		return &legacy.ImageDescription{Title: title, Description: strings.TrimSpace(body)}, nil
	}
	return nil, errors.New(errors.CodeDelegate, "image model returned unexpected shape", nil)
}

type textService struct {
	engine current.Engine
}

var _ legacy.TextGenerationService = (*textService)(nil)

func (s *textService) Type() legacy.ServiceType { return legacy.ServiceTextGeneration }

func (s *textService) Initialize(context.Context, legacy.Runtime) error { return nil }

func (s *textService) Stop(context.Context) error { return nil }

func (s *textService) Generate(ctx context.Context, prompt string, opts legacy.GenerateOptions) (string, error) {
	model := current.ModelTextSmall
	if opts.Large {
		model = current.ModelTextLarge
	}
	params := map[string]any{current.ParamPrompt: prompt}
	if opts.Temperature > 0 {
		params[current.ParamTemperature] = opts.Temperature
	}
	if opts.MaxTokens > 0 {
		params[current.ParamMaxTokens] = opts.MaxTokens
	}
	if len(opts.StopSeqs) > 0 {
		params[current.ParamStop] = opts.StopSeqs
	}
	result, err := s.engine.UseModel(ctx, model, params)
	if err != nil {
		return "", modelFail(ctx, s.engine, legacy.ServiceTextGeneration, model, err)
	}
	text, ok := result.(string)
	if !ok {
		return "", errors.New(errors.CodeDelegate, "text model returned unexpected shape", nil)
	}
	return text, nil
}

type speechService struct {
	engine current.Engine
}

var _ legacy.SpeechService = (*speechService)(nil)

func (s *speechService) Type() legacy.ServiceType { return legacy.ServiceSpeechGeneration }

func (s *speechService) Initialize(context.Context, legacy.Runtime) error { return nil }

func (s *speechService) Stop(context.Context) error { return nil }

func (s *speechService) Synthesize(ctx context.Context, text string) (io.Reader, error) {
	result, err := s.engine.UseModel(ctx, current.ModelTextToSpeech, map[string]any{
		current.ParamText: text,
	})
	if err != nil {
		return nil, modelFail(ctx, s.engine, legacy.ServiceSpeechGeneration, current.ModelTextToSpeech, err)
	}
	switch v := result.(type) {
	case io.Reader:
		return v, nil
	case []byte:
		return bytes.NewReader(v), nil
	}
	return nil, errors.New(errors.CodeDelegate, "speech model returned unexpected shape", nil)
}
