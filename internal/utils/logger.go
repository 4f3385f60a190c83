package utils

import (
	"io"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
)

const logHeader = `${time_rfc3339} ${level} ${prefix} ${short_file}:${line}`

// NewLogger returns a leveled logger writing to stdout. The same logger is
// handed to echo so request logs and application logs share one format.
func NewLogger(prefix, level string) *log.Logger {
	return NewLoggerTo(os.Stdout, prefix, level)
}

// NewLoggerTo is NewLogger with an explicit writer.
func NewLoggerTo(w io.Writer, prefix, level string) *log.Logger {
	l := log.New(prefix)
	l.SetOutput(w)
	l.SetHeader(logHeader)
	l.SetLevel(ParseLevel(level))
	return l
}

// ParseLevel maps debug/info/warn/error/off to a gommon level; anything else
// is info.
func ParseLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	default:
		return log.INFO
	}
}

// Discard is a logger that drops everything; handy in tests.
func Discard() *log.Logger {
	return NewLoggerTo(io.Discard, "test", "off")
}
