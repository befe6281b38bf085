// Package logger centralises structured logging for the engine. Every
// component derives its logger here so output shares one sink, one level and
// a uniform "component" field.
package logger

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu   sync.RWMutex
	base = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// New returns a logger for the named component.
func New(component string) zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base.With().Str("component", component).Logger()
}

// SetOutput redirects all subsequently created loggers to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	base = zerolog.New(w).With().Timestamp().Logger()
}

// SetLevel adjusts the global log level.
func SetLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}
