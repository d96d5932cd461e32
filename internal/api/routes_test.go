package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Gchen0124/ai-voice-coach/adapters/memory"
	"github.com/Gchen0124/ai-voice-coach/domain/entities"
	"github.com/Gchen0124/ai-voice-coach/domain/repositories"
	"github.com/Gchen0124/ai-voice-coach/internal/realtime"
	"github.com/Gchen0124/ai-voice-coach/internal/ttscache"
	"github.com/Gchen0124/ai-voice-coach/usecase"
)

type stubTranscriber struct{}

func (stubTranscriber) TranscribeAudio(ctx context.Context, audioData []byte, config repositories.AudioConfig) (string, error) {
	return "transcribed text", nil
}

type stubCoach struct{}

func (stubCoach) Rewrite(ctx context.Context, msg string) (accent, language, executive entities.RewriteResult) {
	return entities.Provider("a:" + msg), entities.Provider("l:" + msg), entities.Provider("e:" + msg)
}

type stubConversationalist struct{}

func (stubConversationalist) Reply(ctx context.Context, msg string) entities.RewriteResult {
	return entities.Provider("reply:" + msg)
}

type stubSynthesizer struct {
	calls int
}

func (s *stubSynthesizer) SynthesizeSpeech(ctx context.Context, text string, opts repositories.SpeechOptions) ([]byte, error) {
	s.calls++
	return []byte("mp3:" + text), nil
}

func newTestServer() (*Server, *memory.VoiceMessageRepository, *stubSynthesizer) {
	repo := memory.NewVoiceMessageRepository()
	coaching := usecase.NewCoachingService(stubTranscriber{}, stubCoach{}, stubConversationalist{}, repo, zap.NewNop())
	synth := &stubSynthesizer{}
	speech := ttscache.New(synth, zap.NewNop())
	return NewServer(coaching, speech, realtime.Config{}, realtime.WebsocketDialer{}, zap.NewNop()), repo, synth
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func TestHealthEndpoint(t *testing.T) {
	s, _, _ := newTestServer()
	e := echo.New()
	s.InitRoutes(e)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestProcessVoiceMessageWithTranscript(t *testing.T) {
	s, repo, _ := newTestServer()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/api/voice-message", `{"transcript":"hello coach"}`)
	c := e.NewContext(req, rec)

	if err := s.processVoiceMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp VoiceMessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.UserMessage != "hello coach" {
		t.Errorf("userMessage = %q", resp.UserMessage)
	}
	if resp.Responses.Accent.Text != "a:hello coach" {
		t.Errorf("accent = %q", resp.Responses.Accent.Text)
	}

	if _, err := repo.GetByID(context.Background(), resp.ID); err != nil {
		t.Errorf("message was not stored: %v", err)
	}
}

func TestProcessVoiceMessageWithoutInput(t *testing.T) {
	s, _, _ := newTestServer()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/api/voice-message", `{}`)
	c := e.NewContext(req, rec)

	if err := s.processVoiceMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListVoiceMessages(t *testing.T) {
	s, repo, _ := newTestServer()
	e := echo.New()

	msg := entities.NewVoiceMessage("stored", entities.CoachingResponses{})
	if err := repo.Create(context.Background(), msg); err != nil {
		t.Fatal(err)
	}

	req, rec := jsonRequest(http.MethodGet, "/api/voice-messages", "")
	c := e.NewContext(req, rec)

	if err := s.listVoiceMessages(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var messages []*entities.VoiceMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &messages); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if len(messages) != 1 || messages[0].UserMessage != "stored" {
		t.Errorf("unexpected messages: %+v", messages)
	}
}

func TestGetVoiceMessageNotFound(t *testing.T) {
	s, _, _ := newTestServer()
	e := echo.New()

	req, rec := jsonRequest(http.MethodGet, "/api/voice-messages/missing", "")
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	if err := s.getVoiceMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCoachMessage(t *testing.T) {
	s, repo, _ := newTestServer()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/api/coaching", `{"message":"check this"}`)
	c := e.NewContext(req, rec)

	if err := s.coachMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp CoachingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if resp.Responses.AI.Text != "reply:check this" {
		t.Errorf("ai = %q", resp.Responses.AI.Text)
	}

	// Coaching endpoint does not persist.
	all, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Error("expected no stored messages")
	}
}

func TestCoachMessageMissingField(t *testing.T) {
	s, _, _ := newTestServer()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/api/coaching", `{"message":""}`)
	c := e.NewContext(req, rec)

	if err := s.coachMessage(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSynthesizeSpeechCaches(t *testing.T) {
	s, _, synth := newTestServer()
	e := echo.New()

	for i := 0; i < 2; i++ {
		req, rec := jsonRequest(http.MethodPost, "/api/tts", `{"text":"hello","voice":"alloy"}`)
		c := e.NewContext(req, rec)
		if err := s.synthesizeSpeech(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := rec.Header().Get(echo.HeaderContentType); got != "audio/mpeg" {
			t.Errorf("content type = %q, want audio/mpeg", got)
		}
	}

	if synth.calls != 1 {
		t.Errorf("expected 1 synthesis call across repeated requests, got %d", synth.calls)
	}
}

func TestSynthesizeSpeechMissingText(t *testing.T) {
	s, _, _ := newTestServer()
	e := echo.New()

	req, rec := jsonRequest(http.MethodPost, "/api/tts", `{"text":"  "}`)
	c := e.NewContext(req, rec)

	if err := s.synthesizeSpeech(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
