package repositories

import (
	"context"
	"errors"

	"github.com/Gchen0124/ai-voice-coach/domain/entities"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// VoiceMessageRepository defines data access methods for voice messages.
type VoiceMessageRepository interface {
	Create(ctx context.Context, message *entities.VoiceMessage) error
	// GetAll returns all stored messages, newest first.
	GetAll(ctx context.Context) ([]*entities.VoiceMessage, error)
	// GetByID returns the message with the given ID, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*entities.VoiceMessage, error)
}
