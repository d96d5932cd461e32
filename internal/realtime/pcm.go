package realtime

import (
	"encoding/base64"
	"fmt"
)

// WireSampleRate is the sample rate the speech model sends and expects,
// for both capture and playback.
const WireSampleRate = 24000

// FrameSize is the number of samples per captured frame.
const FrameSize = 4096

// SamplesToPCM16 converts normalized float samples to raw 16-bit
// little-endian PCM. Samples are clamped to [-1, 1]; negative values scale
// by 32768 and non-negative by 32767 so neither end of the int16 range
// overflows.
func SamplesToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		if sample < -1 {
			sample = -1
		} else if sample > 1 {
			sample = 1
		}
		var v int16
		if sample < 0 {
			v = int16(sample * 32768)
		} else {
			v = int16(sample * 32767)
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(uint16(v) >> 8)
	}
	return out
}

// PCM16ToSamples converts raw 16-bit little-endian PCM back to normalized
// float samples. The byte length must be even.
func PCM16ToSamples(data []byte) ([]float32, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("pcm16 data has odd length %d", len(data))
	}
	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(uint16(data[i*2]) | uint16(data[i*2+1])<<8)
		samples[i] = float32(v) / 32768.0
	}
	return samples, nil
}

// EncodeFrame converts a frame of normalized float samples to the wire
// format: 16-bit little-endian PCM, base64-encoded.
func EncodeFrame(samples []float32) string {
	return base64.StdEncoding.EncodeToString(SamplesToPCM16(samples))
}

// DecodeFrame converts a base64 wire frame back to normalized float
// samples. An empty frame decodes to an empty sample slice.
func DecodeFrame(frame string) ([]float32, error) {
	data, err := base64.StdEncoding.DecodeString(frame)
	if err != nil {
		return nil, fmt.Errorf("decode audio frame: %w", err)
	}
	return PCM16ToSamples(data)
}
