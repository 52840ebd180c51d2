package logging

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration
type Config struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Logger wraps zerolog.Logger for easier use
type Logger = zerolog.Logger

// shortCaller keeps the parent directory and file name, dropping the module path.
func shortCaller(_ uintptr, file string, line int) string {
	dir := filepath.Base(filepath.Dir(file))
	name := filepath.Base(file)
	if dir == "." || dir == string(filepath.Separator) {
		return name + ":" + strconv.Itoa(line)
	}
	return dir + "/" + name + ":" + strconv.Itoa(line)
}

// New creates a new logger with the given configuration
func New(config Config) zerolog.Logger {
	return NewWithWriter(config, nil)
}

// NewWithWriter builds a logger writing to w, falling back to config.Output
// when w is nil.
func NewWithWriter(config Config, w io.Writer) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(config.Level))
	zerolog.CallerMarshalFunc = shortCaller

	output := w
	if output == nil {
		output = os.Stdout
		if config.Output == "stderr" {
			output = os.Stderr
		}
	}

	if config.Format == "pretty" || config.Format == "console" {
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	logger := zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()

	log.Logger = logger

	return logger
}

// NewDefault creates a logger with default settings
func NewDefault() zerolog.Logger {
	return New(Config{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	})
}

// ParseLevel converts a level name to zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "panic":
		return zerolog.PanicLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// WithTraceID adds trace_id to logger context
func WithTraceID(logger zerolog.Logger, traceID string) zerolog.Logger {
	return logger.With().Str("trace_id", traceID).Logger()
}

// WithOperator adds the authenticated operator to logger context
func WithOperator(logger zerolog.Logger, operatorID string) zerolog.Logger {
	return logger.With().Str("operator_id", operatorID).Logger()
}

// WithReelCode adds reel_code to logger context
func WithReelCode(logger zerolog.Logger, reelCode string) zerolog.Logger {
	return logger.With().Str("reel_code", reelCode).Logger()
}

// WithSpinID adds spin_id to logger context
func WithSpinID(logger zerolog.Logger, spinID string) zerolog.Logger {
	return logger.With().Str("spin_id", spinID).Logger()
}

// WithComponent adds component name to logger context
func WithComponent(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// WithFields adds multiple fields to logger context
func WithFields(logger zerolog.Logger, fields map[string]interface{}) zerolog.Logger {
	ctx := logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return ctx.Logger()
}
