package openai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

// TranscriberConfig holds configuration for the Whisper transcriber.
type TranscriberConfig struct {
	APIKey string // Required
}

// Transcriber implements speech recognition using the Whisper API.
type Transcriber struct {
	client oai.Client
	hasKey bool
	logger *zap.Logger
}

// Ensure Transcriber implements the repositories.Transcriber interface
var _ repositories.Transcriber = (*Transcriber)(nil)

// NewTranscriber creates a Whisper transcription adapter.
func NewTranscriber(config TranscriberConfig, logger *zap.Logger) *Transcriber {
	return &Transcriber{
		client: oai.NewClient(option.WithAPIKey(config.APIKey)),
		hasKey: config.APIKey != "",
		logger: logger,
	}
}

// TranscribeAudio converts audio data to text. Unlike the rewrite
// adapters, transcription has no meaningful fallback: an error here is an
// error for the caller.
func (t *Transcriber) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if !t.hasKey {
		return "", errMissingAPIKey
	}
	if len(audioData) == 0 {
		return "", fmt.Errorf("audio data cannot be empty")
	}

	filename, contentType := audioFileInfo(config.Encoding)
	params := oai.AudioTranscriptionNewParams{
		Model: oai.AudioModelWhisper1,
		File:  oai.File(bytes.NewReader(audioData), filename, contentType),
	}
	if config.Language != "" {
		params.Language = param.NewOpt(config.Language)
	}

	transcription, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcribe audio: %w", err)
	}

	t.logger.Debug("Transcription completed",
		zap.Int("audioBytes", len(audioData)),
		zap.Int("transcriptLength", len(transcription.Text)))
	return transcription.Text, nil
}

func audioFileInfo(encoding string) (filename, contentType string) {
	switch strings.ToLower(encoding) {
	case "webm", "webm_opus":
		return "audio.webm", "audio/webm"
	case "mp3":
		return "audio.mp3", "audio/mpeg"
	case "ogg", "ogg_opus":
		return "audio.ogg", "audio/ogg"
	default:
		return "audio.wav", "audio/wav"
	}
}
