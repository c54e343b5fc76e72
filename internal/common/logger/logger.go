package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimestampFieldName = "timestamp"
	zerolog.MessageFieldName = "message"
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// Logger writes one JSON object per event. Every entry carries the service
// name, the action that produced it and the host it ran on.
type Logger struct {
	service string
	base    zerolog.Logger
	zl      zerolog.Logger
}

func New(service string) *Logger { return NewWithWriter(service, os.Stdout) }

func NewWithWriter(service string, w io.Writer) *Logger {
	base := zerolog.New(w).With().
		Timestamp().
		Str("hostname", hostname()).
		Logger()
	return &Logger{service: service, base: base, zl: base.With().Str("service", service).Logger()}
}

// Nop discards everything. Handy for tests and for components that were
// built without a logger.
func Nop() *Logger { return &Logger{base: zerolog.Nop(), zl: zerolog.Nop()} }

// Named returns a logger for a sub-component that shares the sink and level.
func (l *Logger) Named(service string) *Logger {
	return &Logger{service: service, base: l.base, zl: l.base.With().Str("service", service).Logger()}
}

// SetLevel accepts debug|info|warn|error; anything else leaves the level alone.
func (l *Logger) SetLevel(level string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return
	}
	l.base = l.base.Level(lvl)
	l.zl = l.zl.Level(lvl)
}

func (l *Logger) log(ev *zerolog.Event, action string, fields map[string]any, err error) {
	if err != nil {
		ev = ev.Dict("error", zerolog.Dict().
			Str("msg", err.Error()).
			Str("type", fmt.Sprintf("%T", err)))
	}
	ev.Str("action", action).Fields(fields).Msg(action)
}

func (l *Logger) Info(action string, fields map[string]any) { l.log(l.zl.Info(), action, fields, nil) }
func (l *Logger) Debug(action string, fields map[string]any) { l.log(l.zl.Debug(), action, fields, nil) }
func (l *Logger) Warn(action string, fields map[string]any) { l.log(l.zl.Warn(), action, fields, nil) }
func (l *Logger) Error(action string, err error, fields map[string]any) {
	l.log(l.zl.Error(), action, fields, err)
}

func hostname() string {
	h, _ := os.Hostname()
	return h
}
