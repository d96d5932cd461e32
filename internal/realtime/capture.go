package realtime

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// AudioInput is the capture capability a session records through.
type AudioInput interface {
	Start(ctx context.Context, cfg CaptureConfig) (CaptureStream, error)
}

// CaptureStream delivers captured audio frames until stopped. Frames is
// closed after Stop returns or when the device ends the stream.
type CaptureStream interface {
	Frames() <-chan []float32
	Stop() error
}

// CaptureConfig requests a capture format from the input device.
type CaptureConfig struct {
	SampleRate int
	FrameSize  int
}

// ErrNoAudioInput is returned by StartRecording when the session has no
// capture device.
var ErrNoAudioInput = errors.New("realtime: no audio input available")

// StartRecording begins streaming microphone audio to the model. Any
// recording already in progress is stopped first, and correlation state
// from earlier recordings is discarded so old utterances cannot bleed into
// the new ones.
func (s *Session) StartRecording(ctx context.Context) error {
	if s.input == nil {
		return ErrNoAudioInput
	}

	s.StopRecording()
	s.corr.Reset()

	stream, err := s.input.Start(ctx, CaptureConfig{
		SampleRate: WireSampleRate,
		FrameSize:  FrameSize,
	})
	if err != nil {
		return err
	}

	done := make(chan struct{})
	s.mu.Lock()
	s.capture = stream
	s.captureDone = done
	s.mu.Unlock()

	go s.pumpFrames(stream, done)
	s.logger.Info("Recording started",
		zap.Int("sample_rate", WireSampleRate),
		zap.Int("frame_size", FrameSize))
	return nil
}

// StopRecording stops the active capture stream, waits for the pump to
// drain, and commits the input turn. Safe to call with no recording active.
func (s *Session) StopRecording() {
	s.mu.Lock()
	stream := s.capture
	done := s.captureDone
	s.capture = nil
	s.captureDone = nil
	s.mu.Unlock()

	if stream == nil {
		return
	}
	if err := stream.Stop(); err != nil {
		s.logger.Warn("Failed to stop capture stream", zap.Error(err))
	}
	<-done

	s.Commit()
	s.logger.Info("Recording stopped")
}

// pumpFrames forwards captured frames both to the correlator, as raw PCM
// for later utterance snapshots, and to the model as encoded wire frames.
func (s *Session) pumpFrames(stream CaptureStream, done chan struct{}) {
	defer close(done)
	for samples := range stream.Frames() {
		if len(samples) == 0 {
			continue
		}
		s.corr.AppendChunk(SamplesToPCM16(samples))
		s.SendAudio(EncodeFrame(samples))
	}
}
