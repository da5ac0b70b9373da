package logger

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// Logger receives diagnostic output from the client. Arguments are
// alternating key/value pairs.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

// ZeroLogger adapts a zerolog.Logger to the Logger interface.
type ZeroLogger struct {
	log zerolog.Logger
}

// New returns a ZeroLogger emitting timestamped JSON lines to w.
func New(w io.Writer) *ZeroLogger {
	return &ZeroLogger{log: zerolog.New(w).With().Timestamp().Logger()}
}

// FromZerolog wraps an existing zerolog.Logger.
func FromZerolog(l zerolog.Logger) *ZeroLogger {
	return &ZeroLogger{log: l}
}

// Nop returns a logger that discards everything. It is the default for
// clients that do not install one.
func Nop() *ZeroLogger {
	return &ZeroLogger{log: zerolog.Nop()}
}

func (z *ZeroLogger) Error(msg string, args ...any) {
	z.emit(z.log.Error(), msg, args)
}

func (z *ZeroLogger) Warn(msg string, args ...any) {
	z.emit(z.log.Warn(), msg, args)
}

func (z *ZeroLogger) Info(msg string, args ...any) {
	z.emit(z.log.Info(), msg, args)
}

func (z *ZeroLogger) Debug(msg string, args ...any) {
	z.emit(z.log.Debug(), msg, args)
}

func (z *ZeroLogger) emit(ev *zerolog.Event, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		ev = ev.Interface(key, args[i+1])
	}
	if len(args)%2 != 0 {
		ev = ev.Interface("arg", args[len(args)-1])
	}
	ev.Msg(msg)
}
