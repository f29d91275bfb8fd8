package audio

import (
	"errors"
	"sync"
	"time"
)

// DefaultTargetRate is the PCM rate expected by the realtime transcription
// channel.
const DefaultTargetRate = 16000

// Recordings below either bound are rejected locally, before any
// transcription call is made.
const (
	MinRecordingDuration = 500 * time.Millisecond
	MinRecordingBytes    = 1000
)

// ErrRecordingTooShort marks a recording rejected by the local length check.
var ErrRecordingTooShort = errors.New("recording too short")

// Capture converts a live microphone sample stream into two outputs: a
// low-latency PCM frame stream pushed to a relay channel, and an
// accumulated fallback recording for batch transcription.
type Capture struct {
	resampler  *Resampler
	relay      chan<- []byte
	targetRate int

	mu      sync.Mutex
	pcm     []byte
	dropped int
	stopped bool
}

// NewCapture creates a capture session resampling from nativeRate down to
// DefaultTargetRate. relay may be nil when no realtime channel is open.
func NewCapture(nativeRate int, relay chan<- []byte) (*Capture, error) {
	resampler, err := NewResampler(nativeRate, DefaultTargetRate)
	if err != nil {
		return nil, err
	}
	return &Capture{
		resampler:  resampler,
		relay:      relay,
		targetRate: DefaultTargetRate,
	}, nil
}

// Push processes one block of native-rate samples. The resulting frame is
// appended to the fallback recording and offered to the relay channel
// without blocking: if the channel is full or nil the frame is dropped for
// the realtime path only. Push after Stop is a no-op.
func (c *Capture) Push(block []float32) {
	frame := c.resampler.ProcessBlock(block)
	if len(frame) == 0 {
		return
	}

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.pcm = append(c.pcm, frame...)

	if c.relay != nil {
		select {
		case c.relay <- frame:
		default:
			c.dropped++
		}
	}
	c.mu.Unlock()
}

// Stop ends the capture. Idempotent: normal stop, error paths and teardown
// may all call it.
func (c *Capture) Stop() {
	c.mu.Lock()
	c.stopped = true
	c.mu.Unlock()
}

// DroppedFrames reports how many frames the relay channel refused.
func (c *Capture) DroppedFrames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Recording is a finished capture ready for submission.
type Recording struct {
	WAV      []byte
	Duration time.Duration
}

// Recording finalizes the capture into a WAV container, rejecting
// recordings shorter than MinRecordingDuration or smaller than
// MinRecordingBytes.
func (c *Capture) Recording() (Recording, error) {
	c.mu.Lock()
	pcm := c.pcm
	c.mu.Unlock()

	samples := len(pcm) / 2
	duration := time.Duration(samples) * time.Second / time.Duration(c.targetRate)
	if duration < MinRecordingDuration || len(pcm) < MinRecordingBytes {
		return Recording{}, ErrRecordingTooShort
	}

	wav, err := EncodeWAV(pcm, c.targetRate)
	if err != nil {
		return Recording{}, err
	}
	return Recording{WAV: wav, Duration: duration}, nil
}
