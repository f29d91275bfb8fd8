package turn

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestEmitQueueOrdersSlowFirstTask(t *testing.T) {
	var out bytes.Buffer
	flushes := 0
	queue := newEmitQueue(&out, func() { flushes++ })

	// The first stream becomes available last. Emission order must still
	// follow submission order.
	queue.submit(context.Background(), func(context.Context) (io.ReadCloser, error) {
		time.Sleep(50 * time.Millisecond)
		return io.NopCloser(strings.NewReader("AAAA")), nil
	})
	queue.submit(context.Background(), func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("BBBB")), nil
	})
	queue.submit(context.Background(), func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("CCCC")), nil
	})

	written, err := queue.wait()
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if got := out.String(); got != "AAAABBBBCCCC" {
		t.Fatalf("emitted %q, want AAAABBBBCCCC", got)
	}
	if written != 12 {
		t.Fatalf("written = %d, want 12", written)
	}
	if flushes == 0 {
		t.Fatal("flush was never called")
	}
}

func TestEmitQueueSurfacesFetchError(t *testing.T) {
	var out bytes.Buffer
	queue := newEmitQueue(&out, nil)
	boom := errors.New("synthesis down")

	queue.submit(context.Background(), func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("AAAA")), nil
	})
	queue.submit(context.Background(), func(context.Context) (io.ReadCloser, error) {
		return nil, boom
	})
	queue.submit(context.Background(), func(context.Context) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("CCCC")), nil
	})

	_, err := queue.wait()
	if !errors.Is(err, boom) {
		t.Fatalf("wait error = %v, want %v", err, boom)
	}
	// Audio emitted before the failure stays emitted.
	if !strings.HasPrefix(out.String(), "AAAA") {
		t.Fatalf("emitted %q, want AAAA prefix", out.String())
	}
}

type failingWriter struct {
	after int
	n     int
}

func (w *failingWriter) Write(p []byte) (int, error) {
	w.n++
	if w.n > w.after {
		return 0, errors.New("client went away")
	}
	return len(p), nil
}

func TestEmitQueueStopsOnWriteError(t *testing.T) {
	queue := newEmitQueue(&failingWriter{after: 1}, nil)

	for i := 0; i < 3; i++ {
		queue.submit(context.Background(), func(context.Context) (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("XXXX")), nil
		})
	}

	_, err := queue.wait()
	if err == nil || !strings.Contains(err.Error(), "client went away") {
		t.Fatalf("wait error = %v, want write failure", err)
	}
}
