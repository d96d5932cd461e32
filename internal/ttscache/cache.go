package ttscache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
)

// Cache memoizes synthesized speech so repeated playback of the same
// coaching response does not re-bill the synthesis provider. Entries are
// keyed by the full synthesis request: text, voice, speed, and model.
type Cache struct {
	synth  repositories.SpeechSynthesizer
	logger *zap.Logger

	mu      sync.RWMutex
	entries map[string][]byte
}

// New wraps a synthesizer with an in-memory cache.
func New(synth repositories.SpeechSynthesizer, logger *zap.Logger) *Cache {
	return &Cache{
		synth:   synth,
		logger:  logger,
		entries: make(map[string][]byte),
	}
}

// GetOrSynthesize returns cached audio for the request, synthesizing and
// storing it on a miss. Synthesis failures are not cached.
func (c *Cache) GetOrSynthesize(ctx context.Context, text string, opts repositories.SpeechOptions) ([]byte, error) {
	key := cacheKey(text, opts)

	c.mu.RLock()
	audio, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		c.logger.Debug("TTS cache hit", zap.String("key", key))
		return audio, nil
	}

	c.logger.Debug("TTS cache miss", zap.String("key", key))
	audio, err := c.synth.SynthesizeSpeech(ctx, text, opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = audio
	c.mu.Unlock()
	return audio, nil
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheKey(text string, opts repositories.SpeechOptions) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%s|%g|%s", text, opts.Voice, opts.Speed, opts.Model)))
	return hex.EncodeToString(sum[:])
}
