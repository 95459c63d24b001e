// Package logger owns the process-wide zap logger. Every entrypoint calls
// Init once before wiring anything else; handlers, services, and the audit
// sink all log through L().
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global *zap.Logger

// Init builds and installs the global logger. level accepts zap's level names
// (debug, info, warn, error, dpanic, panic, fatal); format is "json" for
// ingestion or "console" for local development.
func Init(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.MessageKey = "message"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	var enc zapcore.Encoder
	switch strings.ToLower(format) {
	case "json":
		enc = zapcore.NewJSONEncoder(encoderCfg)
	case "console":
		enc = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	l := zap.New(
		zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl),
		zap.AddCaller(),
		zap.Fields(zap.String("service", "backloghub-engine")),
	)
	global = l
	return l, nil
}

// L returns the global logger. Panics if Init was never called; nothing in
// this codebase logs before an entrypoint runs.
func L() *zap.Logger {
	if global == nil {
		panic("logger not initialized: call logger.Init first")
	}
	return global
}

// Sync flushes buffered entries; deferred from every main.
func Sync() {
	if global != nil {
		_ = global.Sync()
	}
}
