package executor

import "sync"

// defaultOutputLimit is the per-stream byte cap applied when an
// Executor is not configured with an explicit OutputLimit.
const defaultOutputLimit = 1 << 20 // 1 MiB

// truncatingWriter caps the number of bytes retained from a stream.
// Bytes past the limit are discarded but Write still reports the full
// length written, so the child process is never blocked or signaled
// merely for producing too much output; only the captured buffer is
// bounded.
type truncatingWriter struct {
	mu        sync.Mutex
	limit     int
	buf       []byte
	truncated bool
}

func newTruncatingWriter(limit int) *truncatingWriter {
	if limit <= 0 {
		limit = defaultOutputLimit
	}
	return &truncatingWriter{limit: limit}
}

func (w *truncatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	room := w.limit - len(w.buf)
	switch {
	case room <= 0:
		if len(p) > 0 {
			w.truncated = true
		}
	case room < len(p):
		w.buf = append(w.buf, p[:room]...)
		w.truncated = true
	default:
		w.buf = append(w.buf, p...)
	}
	return len(p), nil
}

func (w *truncatingWriter) Bytes() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}

func (w *truncatingWriter) Truncated() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.truncated
}
