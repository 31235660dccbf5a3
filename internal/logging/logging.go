// Package logging builds the slog logger used by the API server and the
// logrus logger used by the CLI. Both can tee into a rotating file.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"insighthub/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

// sink returns out, teed into a lumberjack file when cfg.File is set. The
// closer releases the file.
func sink(cfg config.LogConfig, out io.Writer) (io.Writer, io.Closer) {
	if cfg.File == "" {
		return out, nopCloser{}
	}
	file := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
	if out == nil {
		return file, file
	}
	return io.MultiWriter(out, file), file
}

// New builds the server logger.
func New(cfg config.LogConfig, out io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	w, closer := sink(cfg, out)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	switch cfg.Format {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return slog.New(h), closer, nil
}

// NewLogrus builds the client logger. The CLI writes its own output to
// stdout, so out is normally stderr.
func NewLogrus(cfg config.LogConfig, out io.Writer) (*logrus.Logger, io.Closer, error) {
	name := strings.TrimSpace(cfg.Level)
	if name == "" {
		name = "info"
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return nil, nil, err
	}
	w, closer := sink(cfg, out)

	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	switch cfg.Format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		l.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	default:
		closer.Close()
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	return l, closer, nil
}
