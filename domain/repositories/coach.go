package repositories

import (
	"context"

	"github.com/Gchen0124/ai-voice-coach/domain/entities"
)

// Coach produces the three style rewrites for a user message. Provider
// failures are absorbed: implementations fall back to deterministic local
// transforms and mark the results accordingly, they never return an error
// for a non-empty message.
type Coach interface {
	Rewrite(ctx context.Context, userMessage string) (accent, language, executive entities.RewriteResult)
}

// Conversationalist generates the conversational AI reply to a user message.
// Same recovery contract as Coach: fallback, never fail.
type Conversationalist interface {
	Reply(ctx context.Context, userMessage string) entities.RewriteResult
}
