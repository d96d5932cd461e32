package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/domain/entities"
	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

// ErrEmptyMessage is returned when neither audio nor a usable transcript
// was provided.
var ErrEmptyMessage = errors.New("message cannot be empty")

// CoachingService orchestrates one voice message through the pipeline:
// transcription, the three style rewrites, the conversational reply, and
// persistence.
type CoachingService struct {
	transcriber repositories.Transcriber
	coach       repositories.Coach
	conversist  repositories.Conversationalist
	messages    repositories.VoiceMessageRepository
	logger      *zap.Logger
}

// NewCoachingService creates a new coaching service
func NewCoachingService(
	transcriber repositories.Transcriber,
	coach repositories.Coach,
	conversist repositories.Conversationalist,
	messages repositories.VoiceMessageRepository,
	logger *zap.Logger,
) *CoachingService {
	return &CoachingService{
		transcriber: transcriber,
		coach:       coach,
		conversist:  conversist,
		messages:    messages,
		logger:      logger,
	}
}

// ProcessAudio transcribes the audio, generates all responses, and stores
// the resulting voice message. Transcription failures abort the pipeline;
// rewrite and reply failures degrade to fallbacks inside the adapters.
func (s *CoachingService) ProcessAudio(ctx context.Context, audioData []byte, audioConfig repositories.AudioConfig) (*entities.VoiceMessage, error) {
	if len(audioData) == 0 {
		return nil, ErrEmptyMessage
	}

	transcript, err := s.transcriber.TranscribeAudio(ctx, audioData, audioConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to transcribe audio: %w", err)
	}
	return s.ProcessText(ctx, transcript)
}

// ProcessText generates all responses for an already transcribed message
// and stores the resulting voice message.
func (s *CoachingService) ProcessText(ctx context.Context, userMessage string) (*entities.VoiceMessage, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return nil, ErrEmptyMessage
	}

	responses := s.generateResponses(ctx, userMessage)

	message := entities.NewVoiceMessage(userMessage, responses)
	if err := s.messages.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to store voice message: %w", err)
	}

	s.logger.Info("Voice message processed",
		zap.String("id", message.ID),
		zap.Bool("aiFallback", responses.AI.IsFallback()))
	return message, nil
}

// Coach generates responses without persisting them, for the endpoint
// that exercises the coaching pipeline directly.
func (s *CoachingService) Coach(ctx context.Context, userMessage string) (entities.CoachingResponses, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return entities.CoachingResponses{}, ErrEmptyMessage
	}
	return s.generateResponses(ctx, userMessage), nil
}

// History returns all stored voice messages, newest first.
func (s *CoachingService) History(ctx context.Context) ([]*entities.VoiceMessage, error) {
	return s.messages.GetAll(ctx)
}

// Get returns one stored voice message by ID.
func (s *CoachingService) Get(ctx context.Context, id string) (*entities.VoiceMessage, error) {
	return s.messages.GetByID(ctx, id)
}

// generateResponses runs the rewrites and the conversational reply
// concurrently; both sides have their own fallback behavior so this never
// fails.
func (s *CoachingService) generateResponses(ctx context.Context, userMessage string) entities.CoachingResponses {
	var responses entities.CoachingResponses

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		responses.Accent, responses.Language, responses.Executive = s.coach.Rewrite(ctx, userMessage)
	}()
	go func() {
		defer wg.Done()
		responses.AI = s.conversist.Reply(ctx, userMessage)
	}()
	wg.Wait()

	return responses
}
