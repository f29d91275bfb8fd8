package audio

import (
	"encoding/binary"
	"fmt"
)

// Resampler converts float32 sample blocks at a device's native rate into
// mono 16-bit little-endian PCM at a fixed target rate using simple
// decimation. No anti-aliasing filter is applied; for speech the quality
// loss is an accepted trade-off against latency.
type Resampler struct {
	decimation float64
}

// NewResampler creates a resampler from the native rate down to the target
// rate. Upsampling is not supported.
func NewResampler(nativeRate, targetRate int) (*Resampler, error) {
	if nativeRate <= 0 || targetRate <= 0 {
		return nil, fmt.Errorf("sample rates must be positive, got %d -> %d", nativeRate, targetRate)
	}
	if targetRate > nativeRate {
		return nil, fmt.Errorf("cannot upsample %d Hz to %d Hz", nativeRate, targetRate)
	}
	return &Resampler{decimation: float64(nativeRate) / float64(targetRate)}, nil
}

// ProcessBlock resamples one block of native-rate samples and serializes the
// result as little-endian int16 PCM. Each output sample picks the input at
// floor(i*decimation), clamped to [-1, 1] and scaled to the signed 16-bit
// range (negative by 32768, non-negative by 32767). Nothing is buffered
// across blocks.
func (r *Resampler) ProcessBlock(block []float32) []byte {
	outputLength := int(float64(len(block)) / r.decimation)
	if outputLength == 0 {
		return nil
	}

	frame := make([]byte, outputLength*2)
	for i := 0; i < outputLength; i++ {
		idx := int(float64(i) * r.decimation)
		sample := block[idx]
		if sample < -1 {
			sample = -1
		} else if sample > 1 {
			sample = 1
		}

		var value int16
		if sample < 0 {
			value = int16(sample * 0x8000)
		} else {
			value = int16(sample * 0x7fff)
		}
		binary.LittleEndian.PutUint16(frame[i*2:], uint16(value))
	}
	return frame
}
