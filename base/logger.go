package base

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type Level int8

const (
	DEBUG Level = iota
	INFO
	WARNING
	ERROR
)

var levelMap = map[Level]zerolog.Level{
	DEBUG:   zerolog.DebugLevel,
	INFO:    zerolog.InfoLevel,
	WARNING: zerolog.WarnLevel,
	ERROR:   zerolog.ErrorLevel,
}

type Config struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type Logger interface {
	DebugF(string, ...interface{})
	InfoF(string, ...interface{})
	WarningF(string, ...interface{})
	ErrorF(string, ...interface{})

	log(Level, string, ...interface{})
}

// New builds a Logger writing to w.
func New(w io.Writer, cfg Config) Logger {
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	zl := zerolog.New(w).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
	return &defaultLogger{zl: zl}
}

func DefaultLogger() Logger {
	return New(os.Stderr, Config{Level: "info"})
}

var (
	DLogger = DefaultLogger()
	nop     = zerolog.Nop()
)

// Init replaces the package logger; the latest call wins.
func Init(cfg Config) {
	DLogger = New(os.Stderr, cfg)
}

// L exposes the underlying zerolog logger for structured fields.
func L() *zerolog.Logger {
	if d, ok := DLogger.(*defaultLogger); ok {
		return &d.zl
	}
	return &nop
}

func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

type defaultLogger struct {
	zl zerolog.Logger
}

func (d *defaultLogger) log(level Level, format string, a ...interface{}) {
	d.zl.WithLevel(levelMap[level]).CallerSkipFrame(2).Caller().Msgf(format, a...)
}

func (d *defaultLogger) DebugF(format string, a ...interface{}) {
	d.log(DEBUG, format, a...)
}

func (d *defaultLogger) InfoF(format string, a ...interface{}) {
	d.log(INFO, format, a...)
}

func (d *defaultLogger) WarningF(format string, a ...interface{}) {
	d.log(WARNING, format, a...)
}

func (d *defaultLogger) ErrorF(format string, a ...interface{}) {
	d.log(ERROR, format, a...)
}

func DebugF(format string, a ...interface{}) {
	if DLogger == nil {
		DLogger = DefaultLogger()
	}
	DLogger.DebugF(format, a...)
}

func InfoF(format string, a ...interface{}) {
	if DLogger == nil {
		DLogger = DefaultLogger()
	}
	DLogger.InfoF(format, a...)
}

func WarningF(format string, a ...interface{}) {
	if DLogger == nil {
		DLogger = DefaultLogger()
	}
	DLogger.WarningF(format, a...)
}

func ErrorF(format string, a ...interface{}) {
	if DLogger == nil {
		DLogger = DefaultLogger()
	}
	DLogger.ErrorF(format, a...)
}
