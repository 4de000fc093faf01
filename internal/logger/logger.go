// Package logger construye el zerolog.Logger compartido por el servicio.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New devuelve un logger JSON, o legible por consola cuando format == "console".
// Un nivel inválido cae a info.
func New(level, format string) zerolog.Logger {
	return NewWithWriter(os.Stdout, level, format)
}

func NewWithWriter(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
