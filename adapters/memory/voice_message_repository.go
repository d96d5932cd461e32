package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Gchen0124/ai-voice-coach/domain/entities"
	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

// VoiceMessageRepository is an in-memory implementation of the voice
// message store. It is the default backend and suitable for single-node
// deployments; history does not survive a restart.
type VoiceMessageRepository struct {
	mu       sync.RWMutex
	messages map[string]*entities.VoiceMessage
}

// Ensure VoiceMessageRepository implements the repository interface
var _ repositories.VoiceMessageRepository = (*VoiceMessageRepository)(nil)

// NewVoiceMessageRepository creates an empty in-memory repository.
func NewVoiceMessageRepository() *VoiceMessageRepository {
	return &VoiceMessageRepository{
		messages: make(map[string]*entities.VoiceMessage),
	}
}

// Create implements repositories.VoiceMessageRepository
func (m *VoiceMessageRepository) Create(ctx context.Context, message *entities.VoiceMessage) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if err := message.Validate(); err != nil {
		return err
	}
	if message.ID == "" {
		return errors.New("message ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Store a copy to prevent external modifications
	messageCopy := *message
	m.messages[message.ID] = &messageCopy
	return nil
}

// GetAll implements repositories.VoiceMessageRepository
func (m *VoiceMessageRepository) GetAll(ctx context.Context) ([]*entities.VoiceMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*entities.VoiceMessage, 0, len(m.messages))
	for _, message := range m.messages {
		messageCopy := *message
		result = append(result, &messageCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp.After(result[j].Timestamp)
	})
	return result, nil
}

// GetByID implements repositories.VoiceMessageRepository
func (m *VoiceMessageRepository) GetByID(ctx context.Context, id string) (*entities.VoiceMessage, error) {
	if id == "" {
		return nil, errors.New("message ID cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	message, exists := m.messages[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	messageCopy := *message
	return &messageCopy, nil
}
