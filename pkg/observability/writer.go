package observability

import (
	"io"
	"sync"
	"sync/atomic"
)

const defaultBufferSize = 1024

// AsyncWriter decouples log producers from a slow sink. Writes are copied
// into a bounded queue and never block; when the queue is full the line is
// dropped and counted.
type AsyncWriter struct {
	out     io.Writer
	queue   chan []byte
	done    chan struct{}
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
}

// NewAsyncWriter starts a writer goroutine draining into out.
func NewAsyncWriter(out io.Writer, size int) *AsyncWriter {
	if size <= 0 {
		size = defaultBufferSize
	}
	w := &AsyncWriter{
		out:   out,
		queue: make(chan []byte, size),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *AsyncWriter) run() {
	defer close(w.done)
	for line := range w.queue {
		// Sink errors are swallowed: log loss is acceptable, blocking is not.
		_, _ = w.out.Write(line)
	}
}

// Write enqueues a copy of p. It always reports success.
func (w *AsyncWriter) Write(p []byte) (int, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.drop()
		return len(p), nil
	}
	line := make([]byte, len(p))
	copy(line, p)
	select {
	case w.queue <- line:
	default:
		w.drop()
	}
	return len(p), nil
}

func (w *AsyncWriter) drop() {
	w.dropped.Add(1)
	LogLinesDropped.Inc()
}

// Dropped returns the number of lines lost to backpressure or late writes.
func (w *AsyncWriter) Dropped() uint64 {
	return w.dropped.Load()
}

// Close stops accepting lines, drains the queue, and closes the sink if it
// is an io.Closer.
func (w *AsyncWriter) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.queue)
	w.mu.Unlock()

	<-w.done
	if c, ok := w.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
