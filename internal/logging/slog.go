package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyCheck     = "check"
	KeySuite     = "suite"
	KeyProfile   = "profile"
	KeyNamespace = "namespace"
	KeyProvider  = "provider"
	KeyNode      = "node"
	KeyStatus    = "status"
	KeyError     = "error"
)

// Logger is the minimal logging surface passed into the validation
// components. It matches log/slog's variadic key-value convention so a
// *slog.Logger can back it directly.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// SlogAdapter adapts a *slog.Logger to the Logger interface.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter around the given logger.
// A nil logger falls back to slog.Default().
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// DefaultLogger returns an adapter around slog.Default().
func DefaultLogger() *SlogAdapter {
	return NewSlogAdapter(nil)
}

// NewLogger builds an adapter writing human-readable output at the given
// level to w. This is what the CLI wires up from --log-level.
func NewLogger(w io.Writer, level slog.Level) *SlogAdapter {
	if w == nil {
		w = os.Stderr
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return &SlogAdapter{logger: slog.New(handler)}
}

// Logger returns the underlying *slog.Logger.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}

func (a *SlogAdapter) Debug(msg string, args ...interface{}) {
	a.logger.Debug(msg, args...)
}

func (a *SlogAdapter) Info(msg string, args ...interface{}) {
	a.logger.Info(msg, args...)
}

func (a *SlogAdapter) Warn(msg string, args ...interface{}) {
	a.logger.Warn(msg, args...)
}

func (a *SlogAdapter) Error(msg string, args ...interface{}) {
	a.logger.Error(msg, args...)
}

// ParseLevel maps the CLI log-level choices onto slog levels.
// WARNING maps to slog's WARN and CRITICAL to ERROR, which is the closest
// slog offers.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARNING", "WARN":
		return slog.LevelWarn, nil
	case "ERROR", "CRITICAL":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Check returns a slog attribute for a check name.
func Check(name string) slog.Attr {
	return slog.String(KeyCheck, name)
}

// Suite returns a slog attribute for a suite name.
func Suite(name string) slog.Attr {
	return slog.String(KeySuite, name)
}

// Profile returns a slog attribute for a conformance profile name.
func Profile(name string) slog.Attr {
	return slog.String(KeyProfile, name)
}

// Namespace returns a slog attribute for the namespace.
func Namespace(ns string) slog.Attr {
	return slog.String(KeyNamespace, ns)
}

// Provider returns a slog attribute for the cloud provider.
func Provider(p string) slog.Attr {
	return slog.String(KeyProvider, p)
}

// Node returns a slog attribute for a node name.
func Node(name string) slog.Attr {
	return slog.String(KeyNode, name)
}

// Status returns a slog attribute for a check status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
