package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds the service logger. Development gets a human readable console
// writer; every other environment logs JSON to stdout.
func New(environment string) zerolog.Logger {
	return newWithWriter(environment, os.Stdout)
}

func newWithWriter(environment string, out io.Writer) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	writer := out
	switch strings.ToLower(strings.TrimSpace(environment)) {
	case "development", "dev", "local":
		level = zerolog.DebugLevel
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	case "test":
		level = zerolog.WarnLevel
	}

	return zerolog.New(writer).
		Level(level).
		With().
		Timestamp().
		Str("service", "contracts").
		Logger()
}
