package realtime

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// AudioOutput is the playback capability the scheduler drives. Now reports
// the position of the output device clock; PlayAt schedules a chunk of
// samples to begin at the given clock position.
type AudioOutput interface {
	Now() time.Duration
	PlayAt(samples []float32, at time.Duration) error
	SampleRate() int
}

// Scheduler queues synthesized audio chunks for gapless sequential output.
//
// Each chunk starts at max(device clock, end of the previous chunk), so
// chunks that arrive faster than they play are queued back to back and
// chunks that arrive late play immediately instead of at their ideal
// wall-clock slot. Continuity wins over absolute timing.
type Scheduler struct {
	out    AudioOutput
	logger *zap.Logger

	mu        sync.Mutex
	started   bool
	nextStart time.Duration
}

// NewScheduler creates a scheduler over the given output. A nil output
// degrades every Schedule call to a logged no-op.
func NewScheduler(out AudioOutput, logger *zap.Logger) *Scheduler {
	return &Scheduler{out: out, logger: logger}
}

// Schedule enqueues one decoded chunk for playback. It never blocks and
// never fails the session: an unavailable output drops the chunk.
func (s *Scheduler) Schedule(samples []float32) {
	if len(samples) == 0 {
		return
	}
	if s.out == nil {
		s.logger.Warn("No audio output available, dropping chunk",
			zap.Int("samples", len(samples)))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.out.Now()
	if !s.started {
		s.started = true
		s.nextStart = now
	}

	startAt := s.nextStart
	if now > startAt {
		startAt = now
	}

	if err := s.out.PlayAt(samples, startAt); err != nil {
		s.logger.Warn("Failed to schedule playback, dropping chunk",
			zap.Int("samples", len(samples)),
			zap.Error(err))
		return
	}

	duration := time.Duration(len(samples)) * time.Second / time.Duration(s.out.SampleRate())
	s.nextStart = startAt + duration
}

// Reset forgets the playback timeline so the next chunk starts from the
// current device clock. Called when a fresh connection is established.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started = false
	s.nextStart = 0
}
