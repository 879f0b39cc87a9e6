package launcher

import (
	"bytes"
	"sync"

	"github.com/charmbracelet/log"
)

// logWriter forwards a child's output to the logger one line at a time.
// Partial lines are held until their newline arrives or Flush is called.
type logWriter struct {
	stream string
	level  log.Level

	mu  sync.Mutex
	buf []byte
}

func newLogWriter(stream string, level log.Level) *logWriter {
	return &logWriter{stream: stream, level: level}
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emit(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.emit(w.buf)
	w.buf = nil
}

func (w *logWriter) emit(line []byte) {
	msg := string(bytes.TrimSpace(line))
	if msg == "" {
		return
	}
	logger().Log(w.level, msg, "stream", w.stream)
}
