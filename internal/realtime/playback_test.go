package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

type playCall struct {
	samples []float32
	at      time.Duration
}

type fakeOutput struct {
	mu      sync.Mutex
	now     time.Duration
	playErr error
	plays   []playCall
}

func (o *fakeOutput) Now() time.Duration {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.now
}

func (o *fakeOutput) PlayAt(samples []float32, at time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.playErr != nil {
		return o.playErr
	}
	o.plays = append(o.plays, playCall{samples: samples, at: at})
	return nil
}

func (o *fakeOutput) SampleRate() int { return WireSampleRate }

func (o *fakeOutput) setNow(d time.Duration) {
	o.mu.Lock()
	o.now = d
	o.mu.Unlock()
}

func (o *fakeOutput) calls() []playCall {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]playCall, len(o.plays))
	copy(out, o.plays)
	return out
}

func TestSchedulerBackToBack(t *testing.T) {
	out := &fakeOutput{}
	s := NewScheduler(out, zap.NewNop())

	chunk := make([]float32, WireSampleRate/2) // 500ms
	s.Schedule(chunk)
	s.Schedule(chunk)
	s.Schedule(chunk)

	calls := out.calls()
	if len(calls) != 3 {
		t.Fatalf("expected 3 scheduled chunks, got %d", len(calls))
	}
	want := []time.Duration{0, 500 * time.Millisecond, time.Second}
	for i, call := range calls {
		if call.at != want[i] {
			t.Errorf("chunk %d scheduled at %v, want %v", i, call.at, want[i])
		}
	}
}

func TestSchedulerLateChunkPlaysImmediately(t *testing.T) {
	out := &fakeOutput{}
	s := NewScheduler(out, zap.NewNop())

	chunk := make([]float32, WireSampleRate/4) // 250ms
	s.Schedule(chunk)

	// Device clock has run past the end of the first chunk.
	out.setNow(time.Second)
	s.Schedule(chunk)

	calls := out.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 scheduled chunks, got %d", len(calls))
	}
	if calls[1].at != time.Second {
		t.Errorf("late chunk scheduled at %v, want %v", calls[1].at, time.Second)
	}
}

func TestSchedulerFirstChunkStartsAtDeviceClock(t *testing.T) {
	out := &fakeOutput{now: 3 * time.Second}
	s := NewScheduler(out, zap.NewNop())

	s.Schedule(make([]float32, WireSampleRate/4))

	calls := out.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 scheduled chunk, got %d", len(calls))
	}
	if calls[0].at != 3*time.Second {
		t.Errorf("chunk scheduled at %v, want %v", calls[0].at, 3*time.Second)
	}
}

func TestSchedulerPlayErrorDoesNotAdvance(t *testing.T) {
	out := &fakeOutput{playErr: errors.New("device busy")}
	s := NewScheduler(out, zap.NewNop())

	chunk := make([]float32, WireSampleRate/2)
	s.Schedule(chunk)

	out.mu.Lock()
	out.playErr = nil
	out.mu.Unlock()

	s.Schedule(chunk)

	calls := out.calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 scheduled chunk, got %d", len(calls))
	}
	if calls[0].at != 0 {
		t.Errorf("chunk scheduled at %v, want 0: the dropped chunk must not reserve time", calls[0].at)
	}
}

func TestSchedulerNilOutputDropsChunks(t *testing.T) {
	s := NewScheduler(nil, zap.NewNop())
	s.Schedule(make([]float32, 128)) // must not panic
}

func TestSchedulerReset(t *testing.T) {
	out := &fakeOutput{}
	s := NewScheduler(out, zap.NewNop())

	s.Schedule(make([]float32, WireSampleRate)) // reserves one second
	s.Reset()
	s.Schedule(make([]float32, 128))

	calls := out.calls()
	if len(calls) != 2 {
		t.Fatalf("expected 2 scheduled chunks, got %d", len(calls))
	}
	if calls[1].at != 0 {
		t.Errorf("chunk after reset scheduled at %v, want 0", calls[1].at)
	}
}
