package playback

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type recordingBuffer struct {
	appends   [][]byte
	inFlight  bool
	ended     bool
	aborted   bool
	failAfter int // fail the Nth append (1-based), 0 disables
}

func (b *recordingBuffer) Append(_ context.Context, chunk []byte) error {
	if b.inFlight {
		return errors.New("overlapping append")
	}
	b.inFlight = true
	defer func() { b.inFlight = false }()

	b.appends = append(b.appends, chunk)
	if b.failAfter > 0 && len(b.appends) >= b.failAfter {
		return errors.New("append error")
	}
	return nil
}

func (b *recordingBuffer) EndOfStream() error {
	if b.inFlight {
		return errors.New("end-of-stream before append acknowledged")
	}
	b.ended = true
	return nil
}

func (b *recordingBuffer) Abort() { b.aborted = true }

func TestSinkAppendsInArrivalOrder(t *testing.T) {
	buf := &recordingBuffer{}
	sink := NewSink(buf, 4)

	err := sink.Consume(context.Background(), strings.NewReader("abcdefghij"))
	if err != nil {
		t.Fatalf("Consume err: %v", err)
	}

	var joined []byte
	for _, chunk := range buf.appends {
		joined = append(joined, chunk...)
	}
	if string(joined) != "abcdefghij" {
		t.Fatalf("chunks out of order: %q", joined)
	}
	if !buf.ended {
		t.Fatal("expected end-of-stream after all appends")
	}
	if buf.aborted {
		t.Fatal("unexpected abort")
	}
}

func TestSinkAbortsOnAppendError(t *testing.T) {
	buf := &recordingBuffer{failAfter: 2}
	sink := NewSink(buf, 2)

	err := sink.Consume(context.Background(), strings.NewReader("abcdef"))
	if err == nil {
		t.Fatal("expected append error")
	}
	if !buf.aborted {
		t.Fatal("expected abort on append failure")
	}
	if buf.ended {
		t.Fatal("end-of-stream must not follow a failed append")
	}
}

type errReader struct{ data io.Reader }

func (r errReader) Read(p []byte) (int, error) {
	n, err := r.data.Read(p)
	if err == io.EOF {
		return n, errors.New("connection reset")
	}
	return n, err
}

func TestSinkAbortsOnStreamError(t *testing.T) {
	buf := &recordingBuffer{}
	sink := NewSink(buf, 4)

	err := sink.Consume(context.Background(), errReader{bytes.NewReader([]byte("abcd"))})
	if err == nil {
		t.Fatal("expected stream error")
	}
	if !buf.aborted {
		t.Fatal("expected abort on stream failure")
	}
}
