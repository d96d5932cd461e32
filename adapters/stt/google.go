package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

const (
	defaultSampleRate = 16000
	defaultLanguage   = "en-US"
)

// GoogleTranscriber implements speech recognition using Google Cloud
// Speech-to-Text. Credentials come from the ambient application default
// credentials, the standard mechanism for Google Cloud clients.
type GoogleTranscriber struct {
	logger *zap.Logger
}

// Ensure GoogleTranscriber implements the repositories.Transcriber interface
var _ repositories.Transcriber = (*GoogleTranscriber)(nil)

// NewGoogleTranscriber creates a Cloud Speech transcription adapter.
func NewGoogleTranscriber(logger *zap.Logger) *GoogleTranscriber {
	return &GoogleTranscriber{logger: logger}
}

// TranscribeAudio converts audio data to text with a single recognize call.
func (g *GoogleTranscriber) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	if len(audioData) == 0 {
		return "", fmt.Errorf("audio data cannot be empty")
	}

	encoding, err := audioEncoding(config.Encoding)
	if err != nil {
		return "", err
	}
	sampleRate := config.SampleRate
	if sampleRate == 0 {
		sampleRate = defaultSampleRate
	}
	language := config.Language
	if language == "" {
		language = defaultLanguage
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:        encoding,
			SampleRateHertz: int32(sampleRate),
			LanguageCode:    language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audioData},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to recognize audio: %w", err)
	}

	var parts []string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			parts = append(parts, result.Alternatives[0].Transcript)
		}
	}
	transcript := strings.Join(parts, " ")
	if transcript == "" {
		return "", fmt.Errorf("no speech detected in audio")
	}

	g.logger.Debug("Transcription completed",
		zap.Int("audioBytes", len(audioData)),
		zap.Int("transcriptLength", len(transcript)))
	return transcript, nil
}

// audioEncoding converts an encoding name to the Speech API enum.
func audioEncoding(encoding string) (speechpb.RecognitionConfig_AudioEncoding, error) {
	switch strings.ToUpper(encoding) {
	case "", "WAV", "LINEAR16":
		return speechpb.RecognitionConfig_LINEAR16, nil
	case "FLAC":
		return speechpb.RecognitionConfig_FLAC, nil
	case "MULAW":
		return speechpb.RecognitionConfig_MULAW, nil
	case "OGG", "OGG_OPUS":
		return speechpb.RecognitionConfig_OGG_OPUS, nil
	case "WEBM", "WEBM_OPUS":
		return speechpb.RecognitionConfig_WEBM_OPUS, nil
	default:
		return speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, fmt.Errorf("unsupported encoding: %s", encoding)
	}
}
