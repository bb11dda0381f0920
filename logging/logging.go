package logging

import (
	"bytes"
	"io"
	"log"
	"os"
	"sync"

	"deal_hunter/models"
)

const maxLogSize = 2 * 1024 * 1024 // 2MB

type RotatingWriter struct {
	mu      sync.Mutex
	file    *os.File
	path    string
	size    int64
	maxSize int64
}

// Setup tees the standard logger to stdout and a rotating file. Lines tagged
// below minLevel ("[debug]" when minLevel is info) are dropped from both.
func Setup(logPath string, minLevel models.LogLevel) (*RotatingWriter, error) {
	// Truncate if too large on startup
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		os.Truncate(logPath, 0)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}

	info, _ := f.Stat()
	size := int64(0)
	if info != nil {
		size = info.Size()
	}

	rw := &RotatingWriter{
		file:    f,
		path:    logPath,
		size:    size,
		maxSize: maxLogSize,
	}

	log.SetOutput(NewLevelFilter(io.MultiWriter(os.Stdout, rw), minLevel))

	return rw, nil
}

func (w *RotatingWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n, err = w.file.Write(p)
	w.size += int64(n)

	if w.size > w.maxSize {
		w.rotate()
	}

	return n, err
}

func (w *RotatingWriter) rotate() {
	w.file.Close()

	// Keep one backup
	os.Rename(w.path, w.path+".1")

	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return
	}

	w.file = f
	w.size = 0
}

func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

// LevelFilter drops log lines whose "[level]" tag ranks below a minimum.
// Untagged lines always pass.
type LevelFilter struct {
	out io.Writer
	min int
}

func NewLevelFilter(out io.Writer, minLevel models.LogLevel) *LevelFilter {
	return &LevelFilter{out: out, min: minLevel.Rank()}
}

func (f *LevelFilter) Write(p []byte) (int, error) {
	if lvl, ok := lineLevel(p); ok && lvl.Rank() < f.min {
		return len(p), nil
	}
	return f.out.Write(p)
}

func lineLevel(p []byte) (models.LogLevel, bool) {
	start := bytes.IndexByte(p, '[')
	if start < 0 {
		return "", false
	}
	end := bytes.IndexByte(p[start:], ']')
	if end < 0 {
		return "", false
	}
	lvl := models.LogLevel(p[start+1 : start+end])
	switch lvl {
	case models.LogLevelDebug, models.LogLevelInfo, models.LogLevelWarn, models.LogLevelError:
		return lvl, true
	}
	return "", false
}
