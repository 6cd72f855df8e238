package ui

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levels = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// Logger keeps the printf-style surface the commands use and sends
// everything to stderr, leaving stdout to the progress bar and summary.
type Logger struct {
	s *zap.SugaredLogger
}

func NewLogger(debug bool, level string) *Logger {
	return NewLoggerTo(os.Stderr, debug, level)
}

func NewLoggerTo(w io.Writer, debug bool, level string) *Logger {
	lvl, ok := levels[strings.ToLower(strings.TrimSpace(level))]
	if !ok {
		lvl = zapcore.InfoLevel
	}
	if debug {
		lvl = zapcore.DebugLevel
	}

	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	enc.EncodeDuration = zapcore.StringDurationEncoder
	enc.CallerKey = ""
	enc.ConsoleSeparator = " "

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), lvl)

	return &Logger{s: zap.New(core).Sugar()}
}

func NopLogger() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.s.Debugf(strings.TrimSuffix(format, "\n"), args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.s.Infof(strings.TrimSuffix(format, "\n"), args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.s.Warnf(strings.TrimSuffix(format, "\n"), args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.s.Errorf(strings.TrimSuffix(format, "\n"), args...)
}

func (l *Logger) Sync() {
	_ = l.s.Sync()
}
