package realtime

import "sync"

// Correlator associates finalized utterance transcriptions with the audio
// that was captured locally while the user spoke them.
//
// Captured chunks accumulate in an ordered buffer. When a transcription
// completes, the buffer is snapshotted into a single blob keyed by the
// utterance ID and then cleared, so each chunk belongs to at most one
// utterance and chunks captured after a snapshot never leak backwards.
type Correlator struct {
	mu         sync.Mutex
	buffer     [][]byte
	utterances map[string][]byte
}

// NewCorrelator creates an empty correlator.
func NewCorrelator() *Correlator {
	return &Correlator{utterances: make(map[string][]byte)}
}

// AppendChunk adds one captured audio chunk to the live buffer. The
// correlator takes ownership of the slice.
func (c *Correlator) AppendChunk(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	c.mu.Lock()
	c.buffer = append(c.buffer, chunk)
	c.mu.Unlock()
}

// Snapshot concatenates the buffered chunks into the blob for the given
// utterance and clears the buffer. An empty buffer stores nothing and
// returns false: a later lookup for the ID reports the audio as absent.
func (c *Correlator) Snapshot(utteranceID string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.buffer) == 0 {
		return nil, false
	}

	total := 0
	for _, chunk := range c.buffer {
		total += len(chunk)
	}
	blob := make([]byte, 0, total)
	for _, chunk := range c.buffer {
		blob = append(blob, chunk...)
	}
	c.buffer = nil
	c.utterances[utteranceID] = blob
	return blob, true
}

// AudioFor returns the audio blob captured for an utterance, if any.
func (c *Correlator) AudioFor(utteranceID string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	blob, ok := c.utterances[utteranceID]
	return blob, ok
}

// Reset discards the live buffer and every stored utterance. Starting a new
// recording session must never surface correlations from a previous one.
func (c *Correlator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buffer = nil
	c.utterances = make(map[string][]byte)
}
