package turn

import (
	"context"
	"io"
)

// emitTask carries one sentence's audio from preparation to emission.
type emitTask struct {
	chunks chan []byte
	result chan error
}

// emitQueue guarantees total emission order for synthesized audio: work for
// sentence N+1 may be prepared while sentence N is still streaming, but no
// byte of N+1 reaches the output before N has fully flushed. A single
// consumer drains tasks FIFO.
type emitQueue struct {
	out     io.Writer
	flush   func()
	tasks   chan *emitTask
	done    chan struct{}
	err     error
	written int64
}

func newEmitQueue(out io.Writer, flush func()) *emitQueue {
	q := &emitQueue{
		out:   out,
		flush: flush,
		tasks: make(chan *emitTask, 16),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

func (q *emitQueue) run() {
	defer close(q.done)

	for task := range q.tasks {
		for chunk := range task.chunks {
			if q.err != nil {
				continue // drain so producers never block
			}
			n, err := q.out.Write(chunk)
			q.written += int64(n)
			if err != nil {
				q.err = err
				continue
			}
			if q.flush != nil {
				q.flush()
			}
		}
		if err := <-task.result; err != nil && q.err == nil {
			q.err = err
		}
	}
}

// submit appends a unit of work to the tail. fetch starts immediately in
// its own goroutine; the resulting stream is copied to the output only
// when every earlier task has finished emitting.
func (q *emitQueue) submit(ctx context.Context, fetch func(context.Context) (io.ReadCloser, error)) {
	task := &emitTask{
		chunks: make(chan []byte, 8),
		result: make(chan error, 1),
	}
	q.tasks <- task

	go func() {
		defer close(task.chunks)

		stream, err := fetch(ctx)
		if err != nil {
			task.result <- err
			return
		}
		defer stream.Close()

		buf := make([]byte, 4096)
		for {
			n, readErr := stream.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				select {
				case task.chunks <- chunk:
				case <-ctx.Done():
					task.result <- ctx.Err()
					return
				}
			}
			if readErr == io.EOF {
				task.result <- nil
				return
			}
			if readErr != nil {
				task.result <- readErr
				return
			}
		}
	}()
}

// wait closes intake and blocks until every queued emission has completed,
// returning the bytes written and the first error encountered.
func (q *emitQueue) wait() (int64, error) {
	close(q.tasks)
	<-q.done
	return q.written, q.err
}
