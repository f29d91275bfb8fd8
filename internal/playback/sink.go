package playback

import (
	"context"
	"fmt"
	"io"
)

// MediaBuffer is a progressive media buffer attached to a playable element.
// Appends must be issued one at a time; Append returns once the buffer has
// acknowledged the chunk.
type MediaBuffer interface {
	Append(ctx context.Context, chunk []byte) error
	EndOfStream() error
	Abort()
}

// Sink feeds an arriving audio byte stream into a MediaBuffer so playback
// can start before the full response has been generated.
type Sink struct {
	buffer    MediaBuffer
	chunkSize int
}

// NewSink wraps a media buffer. chunkSize bounds the read size per append;
// zero selects a default.
func NewSink(buffer MediaBuffer, chunkSize int) *Sink {
	if chunkSize <= 0 {
		chunkSize = 8 * 1024
	}
	return &Sink{buffer: buffer, chunkSize: chunkSize}
}

// Consume reads the stream to completion, appending each chunk in arrival
// order and waiting for the previous append to be acknowledged before
// issuing the next. End-of-stream is signaled only after every append has
// been acknowledged. On any failure the buffer is aborted and resources
// released rather than leaving a half-initialized player.
func (s *Sink) Consume(ctx context.Context, stream io.Reader) error {
	buf := make([]byte, s.chunkSize)

	for {
		n, readErr := stream.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			if err := s.buffer.Append(ctx, chunk); err != nil {
				s.buffer.Abort()
				return fmt.Errorf("media buffer append failed: %w", err)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			s.buffer.Abort()
			return fmt.Errorf("audio stream read failed: %w", readErr)
		}
		if err := ctx.Err(); err != nil {
			s.buffer.Abort()
			return err
		}
	}

	if err := s.buffer.EndOfStream(); err != nil {
		s.buffer.Abort()
		return fmt.Errorf("media buffer end-of-stream failed: %w", err)
	}
	return nil
}
