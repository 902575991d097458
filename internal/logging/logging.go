// Package logging configures the process-wide zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects where and how log lines are written.
type Options struct {
	Level   string
	Console bool   // human readable output instead of JSON
	File    string // optional rotating log file, written in addition to stderr
}

// Setup builds a logger from opts, installs it as the zerolog global logger
// and returns it. The returned closer releases the log file, if any.
func Setup(opts Options) (zerolog.Logger, io.Closer) {
	logger, closer := New(os.Stderr, opts)
	log.Logger = logger
	zerolog.SetGlobalLevel(logger.GetLevel())
	return logger, closer
}

// New builds a logger writing to w (and opts.File when set).
func New(w io.Writer, opts Options) (zerolog.Logger, io.Closer) {
	var out io.Writer = w
	if opts.Console {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		out = zerolog.MultiLevelWriter(out, rotating)
		closer = rotating
	}

	return zerolog.New(out).Level(ParseLevel(opts.Level)).With().Timestamp().Logger(), closer
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}
	return l
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
