// Package logx is a thin leveled facade over zerolog so the rest of the
// codebase never imports the logging library directly.
package logx

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

type Level = zerolog.Level

const (
	LevelDebug = zerolog.DebugLevel
	LevelInfo  = zerolog.InfoLevel
	LevelWarn  = zerolog.WarnLevel
	LevelError = zerolog.ErrorLevel
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
	With().Timestamp().Logger()

// SetLevel sets the global minimum log level
func SetLevel(level Level) {
	logger = logger.Level(level)
}

// UseJSON switches output to machine-readable JSON lines
func UseJSON() {
	logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func Debug(msg string) {
	logger.Debug().Msg(msg)
}

func Debugf(format string, args ...any) {
	logger.Debug().Msg(fmt.Sprintf(format, args...))
}

func Info(msg string) {
	logger.Info().Msg(msg)
}

func Infof(format string, args ...any) {
	logger.Info().Msg(fmt.Sprintf(format, args...))
}

func Warn(msg string) {
	logger.Warn().Msg(msg)
}

func Warnf(format string, args ...any) {
	logger.Warn().Msg(fmt.Sprintf(format, args...))
}

func Error(msg string) {
	logger.Error().Msg(msg)
}

func Errorf(format string, args ...any) {
	logger.Error().Msg(fmt.Sprintf(format, args...))
}

// Fatalf logs and exits with status 1
func Fatalf(format string, args ...any) {
	logger.Fatal().Msg(fmt.Sprintf(format, args...))
}
