package stt

import (
	"context"
	"testing"

	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

func TestAudioEncoding(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		want     speechpb.RecognitionConfig_AudioEncoding
		wantErr  bool
	}{
		{"empty defaults to linear16", "", speechpb.RecognitionConfig_LINEAR16, false},
		{"wav", "WAV", speechpb.RecognitionConfig_LINEAR16, false},
		{"lowercase wav", "wav", speechpb.RecognitionConfig_LINEAR16, false},
		{"webm opus", "WEBM_OPUS", speechpb.RecognitionConfig_WEBM_OPUS, false},
		{"ogg", "ogg", speechpb.RecognitionConfig_OGG_OPUS, false},
		{"flac", "FLAC", speechpb.RecognitionConfig_FLAC, false},
		{"unsupported", "AIFF", speechpb.RecognitionConfig_ENCODING_UNSPECIFIED, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := audioEncoding(tt.encoding)
			if (err != nil) != tt.wantErr {
				t.Fatalf("audioEncoding(%q) error = %v, wantErr %v", tt.encoding, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("audioEncoding(%q) = %v, want %v", tt.encoding, got, tt.want)
			}
		})
	}
}

func TestTranscribeAudioEmptyData(t *testing.T) {
	g := NewGoogleTranscriber(zap.NewNop())
	if _, err := g.TranscribeAudio(context.Background(), nil, repositories.AudioConfig{}); err == nil {
		t.Fatal("expected error for empty audio data")
	}
}
