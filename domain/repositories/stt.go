package repositories

import "context"

// Transcriber abstracts speech recognition services.
type Transcriber interface {
	// TranscribeAudio converts audio data to text.
	TranscribeAudio(ctx context.Context, audioData []byte, config AudioConfig) (string, error)
}

// AudioConfig represents audio configuration for speech recognition.
type AudioConfig struct {
	SampleRate int    `json:"sample_rate"`
	Encoding   string `json:"encoding"`
	Language   string `json:"language"`
}
