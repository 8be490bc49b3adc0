package telemetry

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerOptions configures NewLogger.
type LoggerOptions struct {
	// Level is the minimum enabled level.
	Level zapcore.Level

	// Color enables colored level names.
	Color bool
}

// NewLogger returns a console logger writing to w.
//
// Output carries no timestamps; it shares the terminal with cargo and is
// read by people, not collectors.
func NewLogger(w io.Writer, opts LoggerOptions) *zap.Logger {
	encCfg := zapcore.EncoderConfig{
		LevelKey:         "level",
		NameKey:          "logger",
		MessageKey:       "msg",
		StacktraceKey:    "stacktrace",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		EncodeName:       zapcore.FullNameEncoder,
		ConsoleSeparator: " ",
	}
	if opts.Color {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(zapcore.AddSync(w)),
		opts.Level,
	)
	return zap.New(core)
}

// OrNop returns logger, or a no-op logger when it is nil.
func OrNop(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
