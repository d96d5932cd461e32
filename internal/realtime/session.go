package realtime

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle phase of a session.
type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateOpen       State = "open"
	StateClosing    State = "closing"
	StateClosed     State = "closed"
	StateFailed     State = "failed"
)

// ErrMissingAPIKey is returned by Connect when no credential is configured.
// It is a configuration problem, not a transport failure, so the session
// stays idle and reconnectable.
var ErrMissingAPIKey = errors.New("realtime: api key is not configured")

// Config holds the settings for one session.
type Config struct {
	APIKey       string
	Model        string
	Voice        string
	Instructions string
}

// Message is one surfaced conversation entry.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Session owns one duplex connection to the speech-to-speech endpoint and
// all conversation state derived from it. Sessions are independent: two
// sessions never share transcripts, messages, or captured audio.
type Session struct {
	cfg       Config
	dialer    Dialer
	scheduler *Scheduler
	corr      *Correlator
	input     AudioInput
	logger    *zap.Logger

	mu        sync.Mutex
	state     State
	err       error
	epoch     uint64
	transport Transport

	onEvent           func(ServerEvent)
	seen              map[string]struct{}
	events            []ServerEvent
	messages          []Message
	transcriptParts   []string
	lastAssistantText string

	capture     CaptureStream
	captureDone chan struct{}
}

// NewSession creates an idle session. The output and input may be nil; a
// nil output drops synthesized audio with a warning and a nil input makes
// StartRecording fail.
func NewSession(cfg Config, dialer Dialer, out AudioOutput, input AudioInput, logger *zap.Logger) *Session {
	return &Session{
		cfg:       cfg,
		dialer:    dialer,
		scheduler: NewScheduler(out, logger),
		corr:      NewCorrelator(),
		input:     input,
		logger:    logger,
		state:     StateIdle,
		seen:      make(map[string]struct{}),
	}
}

// Connect dials the endpoint, configures the model session, and starts the
// read loop. Calling Connect while already connecting or open is a no-op.
// A Disconnect issued while the handshake is in flight wins: the late
// connection is closed and discarded.
func (s *Session) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.cfg.APIKey == "" {
		s.mu.Unlock()
		return ErrMissingAPIKey
	}
	if s.state == StateConnecting || s.state == StateOpen {
		s.mu.Unlock()
		return nil
	}
	s.state = StateConnecting
	s.err = nil
	s.epoch++
	epoch := s.epoch
	s.mu.Unlock()

	tr, err := s.dialer.Dial(ctx, s.cfg.Model, s.cfg.APIKey)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		if err == nil {
			tr.Close()
		}
		return nil
	}
	if err != nil {
		s.state = StateFailed
		s.err = err
		s.mu.Unlock()
		return fmt.Errorf("connect realtime session: %w", err)
	}
	s.transport = tr
	s.mu.Unlock()

	if err := tr.WriteJSON(newSessionUpdate(s.cfg.Voice, s.cfg.Instructions)); err != nil {
		tr.Close()
		s.mu.Lock()
		if s.epoch == epoch {
			s.state = StateFailed
			s.err = err
			s.transport = nil
		}
		s.mu.Unlock()
		return fmt.Errorf("configure realtime session: %w", err)
	}

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		tr.Close()
		return nil
	}
	s.state = StateOpen
	s.scheduler.Reset()
	s.mu.Unlock()

	s.logger.Info("Realtime session open",
		zap.String("model", s.cfg.Model),
		zap.String("voice", s.cfg.Voice))

	go s.readLoop(tr, epoch)
	return nil
}

// Disconnect tears the connection down and stops any active recording.
// It is idempotent and leaves the session reconnectable. A handshake in
// flight when Disconnect is called is invalidated and its connection
// discarded when it lands.
func (s *Session) Disconnect() {
	s.StopRecording()

	s.mu.Lock()
	if s.state == StateClosed || s.state == StateIdle || s.state == StateClosing {
		s.mu.Unlock()
		return
	}
	s.state = StateClosing
	s.epoch++
	tr := s.transport
	s.transport = nil
	s.mu.Unlock()

	if tr != nil {
		tr.Close()
	}
	s.corr.Reset()

	s.mu.Lock()
	// A Connect racing the teardown owns the state from here on.
	if s.state == StateClosing {
		s.state = StateClosed
	}
	s.mu.Unlock()
	s.logger.Info("Realtime session closed")
}

// SendAudio forwards one base64 audio frame to the model. Frames sent
// while the session is not open are dropped without error so capture can
// keep running across a reconnect.
func (s *Session) SendAudio(frame string) {
	s.mu.Lock()
	tr := s.transport
	open := s.state == StateOpen
	s.mu.Unlock()
	if !open || tr == nil {
		return
	}
	if err := tr.WriteJSON(newAppendAudio(frame)); err != nil {
		s.logger.Warn("Failed to send audio frame", zap.Error(err))
	}
}

// Commit marks the end of the current input audio turn. A no-op when the
// session is not open.
func (s *Session) Commit() {
	s.mu.Lock()
	tr := s.transport
	open := s.state == StateOpen
	s.mu.Unlock()
	if !open || tr == nil {
		return
	}
	if err := tr.WriteJSON(newCommitAudio()); err != nil {
		s.logger.Warn("Failed to commit audio buffer", zap.Error(err))
	}
}

// SendText submits a typed user message and requests a model response.
// A no-op when the session is not open.
func (s *Session) SendText(text string) {
	s.mu.Lock()
	tr := s.transport
	open := s.state == StateOpen
	s.mu.Unlock()
	if !open || tr == nil {
		return
	}
	if err := tr.WriteJSON(newCreateTextItem(text)); err != nil {
		s.logger.Warn("Failed to send text message", zap.Error(err))
		return
	}
	if err := tr.WriteJSON(newCreateResponse()); err != nil {
		s.logger.Warn("Failed to request response", zap.Error(err))
	}
}

func (s *Session) readLoop(tr Transport, epoch uint64) {
	for {
		data, err := tr.ReadMessage()
		if err != nil {
			s.mu.Lock()
			if s.epoch == epoch {
				s.state = StateFailed
				s.err = err
				s.transport = nil
			}
			s.mu.Unlock()
			return
		}

		var ev ServerEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			s.logger.Warn("Dropping malformed server event", zap.Error(err))
			continue
		}

		s.mu.Lock()
		if s.epoch != epoch {
			s.mu.Unlock()
			return
		}
		processed := s.dispatchLocked(ev)
		handler := s.onEvent
		s.mu.Unlock()

		if processed && handler != nil {
			handler(ev)
		}
	}
}

// dispatchLocked routes one inbound event and reports whether it was
// processed. Duplicate deliveries are detected by event ID, or by a type
// and timestamp key when the endpoint omits one, and processed exactly
// once.
func (s *Session) dispatchLocked(ev ServerEvent) bool {
	key := ev.EventID
	if key == "" {
		key = fmt.Sprintf("%s@%d", ev.Type, time.Now().UnixMilli())
	}
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	s.events = append(s.events, ev)

	switch ev.Type {
	case eventTypeItemCreated:
		if ev.Item != nil && ev.Item.Role == "user" {
			if text := ev.Item.text(); text != "" {
				s.messages = append(s.messages, Message{Role: "user", Text: text})
			}
		}

	case eventTypeResponseDone:
		text := ev.Response.text()
		if text == "" || text == s.lastAssistantText {
			return true
		}
		s.lastAssistantText = text
		s.messages = append(s.messages, Message{Role: "assistant", Text: text})

	case eventTypeTranscriptionCompleted:
		id := ev.ItemID
		if id == "" {
			id = fmt.Sprintf("transcript-%d", time.Now().UnixMilli())
		}
		s.corr.Snapshot(id)
		if ev.Transcript != "" {
			s.transcriptParts = append(s.transcriptParts, ev.Transcript)
		}

	case eventTypeAudioDelta:
		samples, err := DecodeFrame(ev.Delta)
		if err != nil {
			s.logger.Warn("Dropping undecodable audio delta", zap.Error(err))
			return true
		}
		s.scheduler.Schedule(samples)

	case eventTypeError:
		msg := "unknown error"
		if ev.Error != nil && ev.Error.Message != "" {
			msg = ev.Error.Message
		}
		s.state = StateFailed
		s.err = fmt.Errorf("realtime server error: %s", msg)
		s.logger.Error("Realtime session failed", zap.String("message", msg))
	}
	return true
}

// SetEventHandler registers a callback invoked once per processed server
// event, after the session's own handling. Deduplicated deliveries do not
// reach the handler. The handler must not call back into the session.
func (s *Session) SetEventHandler(fn func(ServerEvent)) {
	s.mu.Lock()
	s.onEvent = fn
	s.mu.Unlock()
}

// IngestAudio records one already encoded wire frame for utterance
// correlation and forwards it to the model. Used when capture happens
// remotely and arrives base64-encoded.
func (s *Session) IngestAudio(frame string) {
	if data, err := base64.StdEncoding.DecodeString(frame); err == nil {
		s.corr.AppendChunk(data)
	}
	s.SendAudio(frame)
}

// State reports the current lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err reports the failure that moved the session to StateFailed, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Events returns a copy of every server event processed so far.
func (s *Session) Events() []ServerEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ServerEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Messages returns a copy of the surfaced conversation.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Transcript returns all finalized utterance transcriptions joined in
// arrival order.
func (s *Session) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.transcriptParts, " ")
}

// AudioFor returns the locally captured audio correlated with one
// finalized utterance.
func (s *Session) AudioFor(utteranceID string) ([]byte, bool) {
	return s.corr.AudioFor(utteranceID)
}
