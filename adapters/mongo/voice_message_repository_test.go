package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Gchen0124/ai-voice-coach/domain/entities"
	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

// TestVoiceMessageRepository_Integration tests the MongoDB voice message
// repository. It requires a running MongoDB instance (skipped if
// MONGODB_URI is not set).
func TestVoiceMessageRepository_Integration(t *testing.T) {
	mongoURI := os.Getenv("MONGODB_URI")
	if mongoURI == "" {
		t.Skip("Skipping MongoDB integration test - MONGODB_URI not set")
	}

	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	testDB := client.Database("ai_voice_coach_test")
	defer testDB.Drop(ctx)

	repo := NewVoiceMessageRepository(testDB)

	t.Run("CreateAndGetByID", func(t *testing.T) {
		message := entities.NewVoiceMessage("hello coach", entities.CoachingResponses{
			Accent: entities.Provider("hello, coach"),
			AI:     entities.Fallback("hi there", "missing credentials"),
		})

		if err := repo.Create(ctx, message); err != nil {
			t.Fatalf("Failed to create voice message: %v", err)
		}

		retrieved, err := repo.GetByID(ctx, message.ID)
		if err != nil {
			t.Fatalf("Failed to get voice message: %v", err)
		}

		if retrieved.UserMessage != "hello coach" {
			t.Errorf("Expected user message %q, got %q", "hello coach", retrieved.UserMessage)
		}
		if retrieved.Responses.Accent.Text != "hello, coach" {
			t.Errorf("Expected accent rewrite to round-trip, got %+v", retrieved.Responses.Accent)
		}
		if !retrieved.Responses.AI.IsFallback() {
			t.Error("Expected fallback provenance to round-trip")
		}
	})

	t.Run("GetAllNewestFirst", func(t *testing.T) {
		older := entities.NewVoiceMessage("older message", entities.CoachingResponses{})
		older.Timestamp = time.Now().Add(-time.Hour)
		newer := entities.NewVoiceMessage("newer message", entities.CoachingResponses{})

		if err := repo.Create(ctx, older); err != nil {
			t.Fatalf("Failed to create older message: %v", err)
		}
		if err := repo.Create(ctx, newer); err != nil {
			t.Fatalf("Failed to create newer message: %v", err)
		}

		all, err := repo.GetAll(ctx)
		if err != nil {
			t.Fatalf("Failed to list voice messages: %v", err)
		}

		newerIdx, olderIdx := -1, -1
		for i, m := range all {
			switch m.UserMessage {
			case "newer message":
				newerIdx = i
			case "older message":
				olderIdx = i
			}
		}
		if newerIdx == -1 || olderIdx == -1 {
			t.Fatalf("Expected both messages in listing, got %d entries", len(all))
		}
		if newerIdx > olderIdx {
			t.Errorf("Expected newest first, got newer at %d and older at %d", newerIdx, olderIdx)
		}
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "no-such-id")
		if !errors.Is(err, repositories.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})
}

// TestVoiceMessageRepository_Unit tests validation paths that do not
// require a MongoDB connection.
func TestVoiceMessageRepository_Unit(t *testing.T) {
	repo := &VoiceMessageRepository{}
	ctx := context.Background()

	if err := repo.Create(ctx, nil); err == nil {
		t.Error("Expected error for nil message")
	}
	if err := repo.Create(ctx, &entities.VoiceMessage{}); err == nil {
		t.Error("Expected error for message without user text")
	}
	if _, err := repo.GetByID(ctx, ""); err == nil {
		t.Error("Expected error for empty message ID")
	}
}
