package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/domain/entities"
	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

const defaultChatModel = "gpt-5"

var errMissingAPIKey = errors.New("openai api key is not configured")

const (
	accentPrompt = "You are an accent coach. Take the user's message and correct only minor " +
		"grammar mistakes while keeping the exact same meaning and natural flow. If there are " +
		"no grammar issues, return the message unchanged. Keep the same tone and style. " +
		"Always respond with JSON format: {\"message\": \"your corrected version\"}"

	languagePrompt = "You are a language coach. Transform the user's message into a more " +
		"authentic, natural, professional, and concise expression while maintaining the exact " +
		"same meaning. Make it sound more native and polished. " +
		"Always respond with JSON format: {\"message\": \"improved version\"}"

	executivePrompt = "You are a CEO/founder/executive communication coach. Transform the " +
		"user's message into how a professional executive would express the same idea. Make it " +
		"more authoritative, clear, and business-appropriate while preserving the core meaning. " +
		"Always respond with JSON format: {\"message\": \"executive version\"}"
)

var fillerWords = regexp.MustCompile(`(?i)\b(um|uh|like)\b`)

// CoachConfig holds configuration for the coaching rewrite adapter.
type CoachConfig struct {
	APIKey string // Required for provider rewrites; empty degrades to local transforms
	Model  string // Optional: chat model (default: "gpt-5")
}

// Coach implements the coaching rewrites using the OpenAI chat API. Without
// a key, or when the provider fails, it degrades to deterministic local
// transforms marked as fallback results.
type Coach struct {
	client oai.Client
	model  string
	hasKey bool
	logger *zap.Logger
}

// Ensure Coach implements the repositories.Coach interface
var _ repositories.Coach = (*Coach)(nil)

// NewCoach creates a coaching rewrite adapter.
func NewCoach(config CoachConfig, logger *zap.Logger) *Coach {
	model := config.Model
	if model == "" {
		model = defaultChatModel
	}
	if config.APIKey == "" {
		logger.Warn("OpenAI API key not found, coaching rewrites will use local transforms")
	}
	return &Coach{
		client: oai.NewClient(option.WithAPIKey(config.APIKey)),
		model:  model,
		hasKey: config.APIKey != "",
		logger: logger,
	}
}

// Rewrite produces the three style rewrites concurrently. Each style
// degrades independently: one provider failure does not take down the
// other two rewrites.
func (c *Coach) Rewrite(ctx context.Context, userMessage string) (accent, language, executive entities.RewriteResult) {
	if !c.hasKey {
		reason := errMissingAPIKey.Error()
		return entities.Fallback(accentFallback(userMessage), reason),
			entities.Fallback(languageFallback(userMessage), reason),
			entities.Fallback(executiveFallback(userMessage), reason)
	}

	type styleJob struct {
		prompt   string
		fallback func(string) string
		result   *entities.RewriteResult
	}
	jobs := []styleJob{
		{accentPrompt, accentFallback, &accent},
		{languagePrompt, languageFallback, &language},
		{executivePrompt, executiveFallback, &executive},
	}

	var wg sync.WaitGroup
	for _, job := range jobs {
		wg.Add(1)
		go func(job styleJob) {
			defer wg.Done()
			text, err := c.rewriteOne(ctx, job.prompt, userMessage)
			if err != nil {
				c.logger.Warn("Coaching rewrite failed, using local transform", zap.Error(err))
				*job.result = entities.Fallback(job.fallback(userMessage), err.Error())
				return
			}
			*job.result = entities.Provider(text)
		}(job)
	}
	wg.Wait()
	return accent, language, executive
}

func (c *Coach) rewriteOne(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(systemPrompt),
			oai.UserMessage(userMessage),
		},
		ResponseFormat: oai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}

	content := resp.Choices[0].Message.Content
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err == nil && parsed.Message != "" {
		return parsed.Message, nil
	}
	if strings.TrimSpace(content) != "" {
		return content, nil
	}
	return "", fmt.Errorf("empty completion content")
}

// accentFallback strips filler words. A message that was nothing but
// filler comes back unchanged rather than empty.
func accentFallback(msg string) string {
	cleaned := strings.Join(strings.Fields(fillerWords.ReplaceAllString(msg, "")), " ")
	if cleaned == "" {
		return msg
	}
	return cleaned
}

func languageFallback(msg string) string {
	out := strings.Replace(msg, "This is", "This exemplifies", 1)
	return strings.Replace(out, "demonstrates", "showcases", 1)
}

func executiveFallback(msg string) string {
	return strings.Replace(msg, "This is a sample", "This represents a professional communication", 1)
}
