package gemini

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Gchen0124/ai-voice-coach/domain/entities"
	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

const (
	defaultModel = "gemini-2.0-flash"

	systemPrompt = "You are a helpful AI assistant having a natural conversation. " +
		"Provide thoughtful, conversational responses that acknowledge the user's " +
		"message and continue the dialogue naturally. Keep it concise but engaging."
)

// Config holds configuration for the conversational reply adapter.
type Config struct {
	APIKey string // Required for provider replies; empty degrades to canned replies
	Model  string // Optional: generation model (default: "gemini-2.0-flash")
}

// Conversationalist implements the conversational AI reply using Gemini.
// Provider failures never surface to the caller: a canned coaching reply is
// returned instead, marked as a fallback.
type Conversationalist struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// Ensure Conversationalist implements the repositories.Conversationalist interface
var _ repositories.Conversationalist = (*Conversationalist)(nil)

// New creates a conversational reply adapter. A missing key is not an
// error: the adapter runs in fallback-only mode.
func New(ctx context.Context, config Config, logger *zap.Logger) (*Conversationalist, error) {
	model := config.Model
	if model == "" {
		model = defaultModel
	}
	c := &Conversationalist{model: model, logger: logger}

	if config.APIKey == "" {
		logger.Warn("Gemini API key not found, conversational replies will use canned responses")
		return c, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	c.client = client
	return c, nil
}

// Reply generates the conversational response to a user message.
func (c *Conversationalist) Reply(ctx context.Context, userMessage string) entities.RewriteResult {
	if c.client == nil {
		return entities.Fallback(cannedReply(userMessage), "gemini api key is not configured")
	}

	contents := []*genai.Content{
		genai.NewContentFromText(userMessage, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		c.logger.Warn("Conversational reply failed, using canned response", zap.Error(err))
		return entities.Fallback(cannedReply(userMessage), err.Error())
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		c.logger.Warn("No content generated, using canned response")
		return entities.Fallback(cannedReply(userMessage), "empty model response")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	if strings.TrimSpace(text) == "" {
		c.logger.Warn("Conversational reply was empty, using canned response")
		return entities.Fallback(cannedReply(userMessage), "empty model response")
	}
	return entities.Provider(text)
}

func cannedReply(userMessage string) string {
	if strings.Contains(userMessage, "sample") {
		return "I understand you're working with our coaching system. This platform provides " +
			"comprehensive voice training across multiple dimensions including accent refinement, " +
			"language enhancement, and executive communication skills."
	}
	return "I understand you're working with our coaching system. " +
		"How can I assist you further with your communication goals?"
}
