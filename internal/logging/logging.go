// Package logging builds the zap loggers used by the CLI and the server.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLevel = "info"

// Encoding selects the log line format.
type Encoding string

const (
	// EncodingConsole writes human-readable lines for terminal use.
	EncodingConsole Encoding = "console"
	// EncodingJSON writes one JSON object per line for log collectors.
	EncodingJSON Encoding = "json"
)

// New constructs a logger writing to stderr at the given level. An empty
// level means info.
func New(level string, encoding Encoding) (*zap.Logger, error) {
	atomic := zap.NewAtomicLevel()
	lvl := strings.ToLower(strings.TrimSpace(level))
	if lvl == "" {
		lvl = defaultLevel
	}
	if err := atomic.UnmarshalText([]byte(lvl)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if encoding == "" {
		encoding = EncodingConsole
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey:    "message",
		TimeKey:       "timestamp",
		LevelKey:      "severity",
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
		EncodeTime:    zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		EncodeCaller:  zapcore.ShortCallerEncoder,
	}
	if encoding == EncodingConsole {
		encoderCfg.TimeKey = ""
		encoderCfg.CallerKey = ""
	}

	cfg := zap.Config{
		Level:             atomic,
		Encoding:          string(encoding),
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}

	return cfg.Build()
}

// MustNop returns a logger that discards everything.
func MustNop() *zap.Logger {
	return zap.NewNop()
}
