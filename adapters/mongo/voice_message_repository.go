package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Gchen0124/ai-voice-coach/domain/entities"
	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

type VoiceMessageRepository struct {
	collection *mongo.Collection
}

// NewVoiceMessageRepository creates a new MongoDB voice message repository
func NewVoiceMessageRepository(db *mongo.Database) repositories.VoiceMessageRepository {
	return &VoiceMessageRepository{
		collection: db.Collection("voice_messages"),
	}
}

// Create implements repositories.VoiceMessageRepository
func (r *VoiceMessageRepository) Create(ctx context.Context, message *entities.VoiceMessage) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if err := message.Validate(); err != nil {
		return err
	}

	if _, err := r.collection.InsertOne(ctx, message); err != nil {
		return fmt.Errorf("failed to create voice message: %w", err)
	}
	return nil
}

// GetAll implements repositories.VoiceMessageRepository
func (r *VoiceMessageRepository) GetAll(ctx context.Context) ([]*entities.VoiceMessage, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list voice messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []*entities.VoiceMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode voice messages: %w", err)
	}
	if messages == nil {
		messages = []*entities.VoiceMessage{}
	}
	return messages, nil
}

// GetByID implements repositories.VoiceMessageRepository
func (r *VoiceMessageRepository) GetByID(ctx context.Context, id string) (*entities.VoiceMessage, error) {
	if id == "" {
		return nil, errors.New("message ID cannot be empty")
	}

	var message entities.VoiceMessage
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&message)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get voice message %s: %w", id, err)
	}
	return &message, nil
}
