package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
	"github.com/Gchen0124/ai-voice-coach/internal/realtime"
	"github.com/Gchen0124/ai-voice-coach/internal/ttscache"
	"github.com/Gchen0124/ai-voice-coach/usecase"
)

// Server bundles the handlers' dependencies.
type Server struct {
	coaching *usecase.CoachingService
	speech   *ttscache.Cache
	realtime realtime.Config
	dialer   realtime.Dialer
	logger   *zap.Logger
}

// NewServer creates the API server. The dialer establishes the upstream
// connection for each bridged realtime session.
func NewServer(coaching *usecase.CoachingService, speech *ttscache.Cache, realtimeCfg realtime.Config, dialer realtime.Dialer, logger *zap.Logger) *Server {
	return &Server{
		coaching: coaching,
		speech:   speech,
		realtime: realtimeCfg,
		dialer:   dialer,
		logger:   logger,
	}
}

// InitRoutes initializes all API routes
func (s *Server) InitRoutes(e *echo.Echo) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "ai-voice-coach",
		})
	})

	api := e.Group("/api")
	api.POST("/voice-message", s.processVoiceMessage)
	api.GET("/voice-messages", s.listVoiceMessages)
	api.GET("/voice-messages/:id", s.getVoiceMessage)
	api.POST("/coaching", s.coachMessage)
	api.POST("/tts", s.synthesizeSpeech)

	// Browser bridge to the duplex speech session
	e.GET("/api/realtime", s.handleRealtime)
}

// processVoiceMessage accepts either a multipart audio upload or a JSON
// body with a ready transcript.
func (s *Server) processVoiceMessage(c echo.Context) error {
	ctx := c.Request().Context()

	if file, err := c.FormFile("audio"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			s.logger.Error("Failed to open uploaded audio", zap.Error(err))
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_audio",
				Message: "Could not read uploaded audio",
			})
		}
		defer src.Close()

		audioData, err := io.ReadAll(src)
		if err != nil {
			s.logger.Error("Failed to read uploaded audio", zap.Error(err))
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_audio",
				Message: "Could not read uploaded audio",
			})
		}

		message, err := s.coaching.ProcessAudio(ctx, audioData, repositories.AudioConfig{
			Encoding: encodingFromFilename(file.Filename),
		})
		if err != nil {
			s.logger.Error("Failed to process voice message", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "processing_failed",
				Message: "Failed to process voice message",
			})
		}
		return c.JSON(http.StatusOK, VoiceMessageResponse{
			ID:          message.ID,
			UserMessage: message.UserMessage,
			Responses:   message.Responses,
			Timestamp:   message.Timestamp,
		})
	}

	var req VoiceMessageRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Transcript) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_input",
			Message: "Audio file or transcript required",
		})
	}

	message, err := s.coaching.ProcessText(ctx, req.Transcript)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyMessage) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "missing_input",
				Message: "Audio file or transcript required",
			})
		}
		s.logger.Error("Failed to process voice message", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "processing_failed",
			Message: "Failed to process voice message",
		})
	}
	return c.JSON(http.StatusOK, VoiceMessageResponse{
		ID:          message.ID,
		UserMessage: message.UserMessage,
		Responses:   message.Responses,
		Timestamp:   message.Timestamp,
	})
}

func (s *Server) listVoiceMessages(c echo.Context) error {
	messages, err := s.coaching.History(c.Request().Context())
	if err != nil {
		s.logger.Error("Failed to fetch voice messages", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "fetch_failed",
			Message: "Failed to fetch voice messages",
		})
	}
	return c.JSON(http.StatusOK, messages)
}

func (s *Server) getVoiceMessage(c echo.Context) error {
	message, err := s.coaching.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "Voice message not found",
			})
		}
		s.logger.Error("Failed to fetch voice message", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "fetch_failed",
			Message: "Failed to fetch voice message",
		})
	}
	return c.JSON(http.StatusOK, message)
}

func (s *Server) coachMessage(c echo.Context) error {
	var req CoachingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	responses, err := s.coaching.Coach(c.Request().Context(), req.Message)
	if err != nil {
		if errors.Is(err, usecase.ErrEmptyMessage) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "missing_fields",
				Message: "Message is required",
			})
		}
		s.logger.Error("Failed to generate coaching responses", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "coaching_failed",
			Message: "Failed to generate coaching responses",
		})
	}
	return c.JSON(http.StatusOK, CoachingResponse{
		UserMessage: strings.TrimSpace(req.Message),
		Responses:   responses,
	})
}

func (s *Server) synthesizeSpeech(c echo.Context) error {
	var req SpeechRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Text is required",
		})
	}

	audio, err := s.speech.GetOrSynthesize(c.Request().Context(), req.Text, repositories.SpeechOptions{
		Voice: req.Voice,
		Speed: req.Speed,
		Model: req.Model,
	})
	if err != nil {
		s.logger.Error("Failed to synthesize speech", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "synthesis_failed",
			Message: "Failed to generate speech",
		})
	}
	return c.Blob(http.StatusOK, "audio/mpeg", audio)
}

func encodingFromFilename(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".webm":
		return "webm"
	case ".mp3":
		return "mp3"
	case ".ogg":
		return "ogg"
	default:
		return "wav"
	}
}
