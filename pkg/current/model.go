// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package current

// ModelType tags a generic model invocation with the kind of model wanted.
type ModelType string

const (
	ModelTextSmall        ModelType = "TEXT_SMALL"
	ModelTextLarge        ModelType = "TEXT_LARGE"
	ModelTextEmbedding    ModelType = "TEXT_EMBEDDING"
	ModelImage            ModelType = "IMAGE"
	ModelImageDescription ModelType = "IMAGE_DESCRIPTION"
	ModelTranscription    ModelType = "TRANSCRIPTION"
	ModelTextToSpeech     ModelType = "TEXT_TO_SPEECH"
)

// Well-known keys of the model parameter bag.
const (
	ParamPrompt      = "prompt"
	ParamText        = "text"
	ParamAudio       = "audio"
	ParamImageURL    = "imageUrl"
	ParamTemperature = "temperature"
	ParamMaxTokens   = "maxTokens"
	ParamStop        = "stop"
)
