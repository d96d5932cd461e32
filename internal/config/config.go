package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config stores runtime configuration for the voice coach server.
type Config struct {
	Port string

	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Realtime RealtimeConfig
	Storage  StorageConfig

	// Transcriber selects the speech-to-text backend: "openai" (whisper)
	// or "google" (Cloud Speech).
	Transcriber string
}

// OpenAIConfig holds credentials and model choices for the OpenAI adapters.
type OpenAIConfig struct {
	APIKey    string
	ChatModel string
	TTSModel  string
	TTSVoice  string
}

// GeminiConfig holds credentials for the conversational reply provider.
type GeminiConfig struct {
	APIKey string
	Model  string
}

// RealtimeConfig holds settings for the duplex speech-to-speech session.
type RealtimeConfig struct {
	Model string
	Voice string
}

// StorageConfig selects the voice message store backend.
type StorageConfig struct {
	// Backend is "memory" (default) or "mongo".
	Backend  string
	MongoURI string
	MongoDB  string
}

// Load resolves configuration from environment variables and defaults.
func Load() (Config, error) {
	cfg := Config{
		Port: envOrDefault("PORT", "8080"),
		OpenAI: OpenAIConfig{
			APIKey:    strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			ChatModel: envOrDefault("OPENAI_CHAT_MODEL", "gpt-5"),
			TTSModel:  envOrDefault("OPENAI_TTS_MODEL", "tts-1"),
			TTSVoice:  envOrDefault("OPENAI_TTS_VOICE", "alloy"),
		},
		Gemini: GeminiConfig{
			APIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			Model:  envOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		},
		Realtime: RealtimeConfig{
			Model: envOrDefault("REALTIME_MODEL", "gpt-5-realtime-preview"),
			Voice: envOrDefault("REALTIME_VOICE", "alloy"),
		},
		Storage: StorageConfig{
			Backend:  envOrDefault("STORAGE_BACKEND", "memory"),
			MongoURI: envOrDefault("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDB:  envOrDefault("MONGODB_DATABASE", "voicecoach"),
		},
		Transcriber: envOrDefault("TRANSCRIBER", "openai"),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "mongo":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be memory or mongo, got %q", c.Storage.Backend)
	}
	switch c.Transcriber {
	case "openai", "google":
	default:
		return fmt.Errorf("TRANSCRIBER must be openai or google, got %q", c.Transcriber)
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return fmt.Errorf("PORT must be a valid port number, got %q", c.Port)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
