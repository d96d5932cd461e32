package entities

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RewriteSource identifies where a rewrite came from.
type RewriteSource string

const (
	// RewriteSourceProvider marks a rewrite produced by the AI provider.
	RewriteSourceProvider RewriteSource = "provider"
	// RewriteSourceFallback marks a rewrite produced by the deterministic
	// local transforms after a provider failure or missing credentials.
	RewriteSourceFallback RewriteSource = "fallback"
)

// RewriteResult is a single coaching rewrite together with its provenance.
// Fallback results are still valid responses; callers that care (tests,
// diagnostics) can inspect Source and Reason.
type RewriteResult struct {
	Text   string        `json:"text"`
	Source RewriteSource `json:"source"`
	Reason string        `json:"reason,omitempty"`
}

// Provider wraps text as a provider-generated rewrite.
func Provider(text string) RewriteResult {
	return RewriteResult{Text: text, Source: RewriteSourceProvider}
}

// Fallback wraps text as a locally generated rewrite with the reason the
// provider was bypassed.
func Fallback(text, reason string) RewriteResult {
	return RewriteResult{Text: text, Source: RewriteSourceFallback, Reason: reason}
}

// IsFallback reports whether the rewrite was produced locally.
func (r RewriteResult) IsFallback() bool {
	return r.Source == RewriteSourceFallback
}

// CoachingResponses bundles the three coaching rewrites and the
// conversational reply for one user message.
type CoachingResponses struct {
	Accent    RewriteResult `json:"accent" bson:"accent"`
	Language  RewriteResult `json:"language" bson:"language"`
	Executive RewriteResult `json:"executive" bson:"executive"`
	AI        RewriteResult `json:"ai" bson:"ai"`
}

// VoiceMessage is one processed user message together with its responses.
type VoiceMessage struct {
	ID          string            `json:"id" bson:"_id,omitempty"`
	UserMessage string            `json:"userMessage" bson:"user_message"`
	AudioURL    string            `json:"audioUrl,omitempty" bson:"audio_url,omitempty"`
	Responses   CoachingResponses `json:"responses" bson:"responses"`
	Timestamp   time.Time         `json:"timestamp" bson:"timestamp"`
}

// NewVoiceMessage creates a voice message with a fresh ID and timestamp.
func NewVoiceMessage(userMessage string, responses CoachingResponses) *VoiceMessage {
	return &VoiceMessage{
		ID:          uuid.NewString(),
		UserMessage: userMessage,
		Responses:   responses,
		Timestamp:   time.Now(),
	}
}

// Validate validates the voice message data.
func (m *VoiceMessage) Validate() error {
	if m.UserMessage == "" {
		return errors.New("user message is required")
	}
	return nil
}
