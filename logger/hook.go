package logger

import (
	"io"
	"sync"

	log "github.com/sirupsen/logrus"
)

// writerHook copies every entry to w using its own formatter.
type writerHook struct {
	mu        sync.Mutex
	w         io.Writer
	formatter log.Formatter
}

func newWriterHook(w io.Writer, f log.Formatter) *writerHook {
	return &writerHook{w: w, formatter: f}
}

func (h *writerHook) Levels() []log.Level {
	return log.AllLevels
}

func (h *writerHook) Fire(entry *log.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.w.Write(b)
	return err
}
