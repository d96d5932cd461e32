package openai

import (
	"context"
	"fmt"
	"io"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

const (
	defaultSpeechModel = "tts-1"
	defaultSpeechVoice = "alloy"
	defaultSpeechSpeed = 1.0
)

// SynthesizerConfig holds configuration for the speech synthesis adapter.
type SynthesizerConfig struct {
	APIKey string // Required
	Model  string // Optional: synthesis model (default: "tts-1")
	Voice  string // Optional: default voice (default: "alloy")
}

// Synthesizer implements text-to-speech using the OpenAI audio API.
type Synthesizer struct {
	client       oai.Client
	hasKey       bool
	defaultModel string
	defaultVoice string
	logger       *zap.Logger
}

// Ensure Synthesizer implements the repositories.SpeechSynthesizer interface
var _ repositories.SpeechSynthesizer = (*Synthesizer)(nil)

// NewSynthesizer creates a speech synthesis adapter.
func NewSynthesizer(config SynthesizerConfig, logger *zap.Logger) *Synthesizer {
	model := config.Model
	if model == "" {
		model = defaultSpeechModel
	}
	voice := config.Voice
	if voice == "" {
		voice = defaultSpeechVoice
	}
	return &Synthesizer{
		client:       oai.NewClient(option.WithAPIKey(config.APIKey)),
		hasKey:       config.APIKey != "",
		defaultModel: model,
		defaultVoice: voice,
		logger:       logger,
	}
}

// SynthesizeSpeech converts text to MP3 audio bytes. Synthesis errors
// propagate: unlike coaching rewrites there is no local fallback for audio.
func (s *Synthesizer) SynthesizeSpeech(ctx context.Context, text string, opts repositories.SpeechOptions) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}
	if !s.hasKey {
		return nil, errMissingAPIKey
	}

	model := opts.Model
	if model == "" {
		model = s.defaultModel
	}
	voice := opts.Voice
	if voice == "" {
		voice = s.defaultVoice
	}
	speed := opts.Speed
	if speed == 0 {
		speed = defaultSpeechSpeed
	}
	if speed < 0.25 || speed > 4.0 {
		return nil, fmt.Errorf("speed must be between 0.25 and 4.0, got %g", speed)
	}

	resp, err := s.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Model: oai.SpeechModel(model),
		Voice: oai.AudioSpeechNewParamsVoice(voice),
		Input: text,
		Speed: param.NewOpt(speed),
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize speech: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesized audio: %w", err)
	}

	s.logger.Debug("Speech synthesized",
		zap.String("voice", voice),
		zap.String("model", model),
		zap.Int("audioBytes", len(audio)))
	return audio, nil
}
