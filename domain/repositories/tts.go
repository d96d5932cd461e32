package repositories

import "context"

// SpeechOptions selects the voice characteristics for synthesis.
type SpeechOptions struct {
	Voice string  `json:"voice"`
	Speed float64 `json:"speed"`
	Model string  `json:"model"`
}

// SpeechSynthesizer abstracts text-to-speech services.
type SpeechSynthesizer interface {
	// SynthesizeSpeech converts text to audio bytes.
	SynthesizeSpeech(ctx context.Context, text string, opts SpeechOptions) ([]byte, error)
}
