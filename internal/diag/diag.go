// Package diag provides the diagnostics sink shared by the bridge and
// gateway services. Entries are appended to a plain text file as
// "[timestamp] message" lines; writing is best effort and never surfaces
// an error into the data path.
package diag

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// timeLayout renders ISO-8601 timestamps with millisecond precision.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Logger appends timestamped free text lines to a log file.
type Logger struct {
	log *logrus.Logger
}

type lineFormatter struct{}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	buffer := &bytes.Buffer{}
	buffer.WriteByte('[')
	buffer.WriteString(entry.Time.Format(timeLayout))
	buffer.WriteString("] ")
	buffer.WriteString(entry.Message)
	buffer.WriteByte('\n')
	return buffer.Bytes(), nil
}

// New returns a logger appending to the file at path, creating the file
// and its parent directory on demand. When the destination cannot be
// opened the logger discards entries instead of failing the caller.
func New(path string) *Logger {
	log := logrus.New()
	log.SetFormatter(&lineFormatter{})
	log.SetOutput(io.Discard)
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err == nil {
			if file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
				log.SetOutput(file)
			}
		}
	}
	return &Logger{log: log}
}

// Logf appends one formatted entry. Safe for concurrent use; entries are
// never interleaved within a line.
func (l *Logger) Logf(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}

var (
	defaultMux    sync.Mutex
	defaultLogger *Logger
	discard       = &Logger{log: discardLogrus()}
)

func discardLogrus() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&lineFormatter{})
	log.SetOutput(io.Discard)
	return log
}

// Init opens the process wide logger at path. The first call wins; later
// calls return the existing instance regardless of path.
func Init(path string) *Logger {
	defaultMux.Lock()
	defer defaultMux.Unlock()
	if defaultLogger == nil {
		defaultLogger = New(path)
	}
	return defaultLogger
}

// Default returns the process wide logger, or a discarding one until Init
// has configured a destination.
func Default() *Logger {
	defaultMux.Lock()
	defer defaultMux.Unlock()
	if defaultLogger == nil {
		return discard
	}
	return defaultLogger
}
