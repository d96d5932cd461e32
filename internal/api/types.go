package api

import (
	"time"

	"github.com/Gchen0124/ai-voice-coach/domain/entities"
)

// CoachingRequest is the payload for text-only coaching.
type CoachingRequest struct {
	Message string `json:"message"`
}

// VoiceMessageRequest is the JSON fallback payload for voice message
// processing when no audio file is uploaded.
type VoiceMessageRequest struct {
	Transcript string `json:"transcript"`
}

// VoiceMessageResponse is the response payload for a processed message.
type VoiceMessageResponse struct {
	ID          string                     `json:"id"`
	UserMessage string                     `json:"userMessage"`
	Responses   entities.CoachingResponses `json:"responses"`
	Timestamp   time.Time                  `json:"timestamp"`
}

// CoachingResponse is the response payload for unstored coaching.
type CoachingResponse struct {
	UserMessage string                     `json:"userMessage"`
	Responses   entities.CoachingResponses `json:"responses"`
}

// SpeechRequest is the payload for speech synthesis.
type SpeechRequest struct {
	Text  string  `json:"text"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
	Model string  `json:"model,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
