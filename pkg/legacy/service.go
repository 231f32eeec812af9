// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package legacy

import (
	"context"
	"io"
)

// ServiceType identifies a pluggable capability by name. Every service
// implementation declares its type explicitly; callers never infer a
// capability from an object's method shape.
type ServiceType string

const (
	ServiceTranscription    ServiceType = "transcription"
	ServiceImageDescription ServiceType = "image_description"
	ServiceTextGeneration   ServiceType = "text_generation"
	ServiceSpeechGeneration ServiceType = "speech_generation"
	ServiceBrowser          ServiceType = "browser"
	ServicePDF              ServiceType = "pdf"
	ServiceVideo            ServiceType = "video"
	ServiceWebSearch        ServiceType = "web_search"
	ServiceFile             ServiceType = "file"
)

// Service is the base contract for a capability implementation.
type Service interface {
	// Type returns the declared capability tag.
	Type() ServiceType

	// Initialize prepares the service. It is called once, before first use,
	// with the runtime that owns the service.
	Initialize(ctx context.Context, rt Runtime) error

	// Stop releases any live resources held by the service.
	Stop(ctx context.Context) error
}

// TranscriptionService converts audio to text. A nil/empty result means
// "no transcription", not an error.
type TranscriptionService interface {
	Service
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

// ImageDescription is the normalized result of describing an image.
type ImageDescription struct {
	Title       string
	Description string
}

// ImageDescriptionService describes the content of an image by URL.
type ImageDescriptionService interface {
	Service
	Describe(ctx context.Context, imageURL string) (*ImageDescription, error)
}

// GenerateOptions tune a text generation call.
type GenerateOptions struct {
	Temperature float64
	MaxTokens   int
	StopSeqs    []string
	Large       bool
}

// TextGenerationService produces text from a prompt.
type TextGenerationService interface {
	Service
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// SpeechService synthesizes speech audio from text.
type SpeechService interface {
	Service
	Synthesize(ctx context.Context, text string) (io.Reader, error)
}

// PageContent is the result of fetching a web page.
type PageContent struct {
	URL   string
	Title string
	Body  string
}

// BrowserService fetches and renders web pages.
type BrowserService interface {
	Service
	Fetch(ctx context.Context, pageURL string) (*PageContent, error)
}

// PDFService extracts text from a PDF document.
type PDFService interface {
	Service
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// VideoService resolves a video URL into a downloadable media description.
type VideoService interface {
	Service
	ProcessURL(ctx context.Context, videoURL string) (*Media, error)
}

// WebSearchService runs a web search and returns rendered result text.
type WebSearchService interface {
	Service
	Search(ctx context.Context, query string) (string, error)
}

// FileService is a simple keyed blob store (cache directory semantics).
type FileService interface {
	Service
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}
