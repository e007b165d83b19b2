// Package logging builds the structured logger used across touchgraph.
// Grounded on t-kawata-mycute/src/lib/logger/logger.go's zap.Config
// construction, adapted to take a plain Config value (see New) rather
// than a pointer-pair constructor.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls how New builds a logger.
type Config struct {
	Level       string // debug, info, warn, error
	Encoding    string // console or json
	OutputPaths []string
}

// DefaultConfig returns the default development-friendly logger config.
func DefaultConfig() Config {
	return Config{
		Level:       "info",
		Encoding:    "console",
		OutputPaths: []string{"stderr"},
	}
}

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// New builds a zap.Logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	level, ok := levels[cfg.Level]
	if !ok {
		return nil, fmt.Errorf("logging: unknown level %q", cfg.Level)
	}
	if len(cfg.OutputPaths) == 0 {
		cfg.OutputPaths = []string{"stderr"}
	}

	zapCfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(level),
		Encoding: cfg.Encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}
	return zapCfg.Build()
}

// Nop returns a logger that discards everything, for use when no
// logging configuration is supplied.
func Nop() *zap.Logger {
	return zap.NewNop()
}
