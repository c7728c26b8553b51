package logging

import "context"

// LogLevel controls logging verbosity
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

// String returns the level name
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Field is a structured key/value attached to a log message
type Field struct {
	Key   string
	Value interface{}
}

// F is a shorthand Field constructor
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger is the logging interface used throughout the tool
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	WithTraceID(traceID string) Logger
	SetLevel(level LogLevel)
	Close() error
}

// LogConfig configures logger construction
type LogConfig struct {
	Level           LogLevel
	EnableConsole   bool
	RedactSensitive bool
	EnableColor     bool
	EnableTimestamp bool
}

// DefaultLogConfig returns the default logging configuration
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:           INFO,
		EnableConsole:   true,
		RedactSensitive: true,
		EnableColor:     true,
		EnableTimestamp: false,
	}
}

// NewLogger constructs a logger from the given configuration
func NewLogger(config LogConfig) (Logger, error) {
	if !config.EnableConsole {
		return NewNoOpLogger(), nil
	}
	return NewConsoleLogger(ConsoleLoggerConfig{
		Level:            config.Level,
		ColorEnabled:     config.EnableColor,
		TimestampEnabled: config.EnableTimestamp,
		RedactSensitive:  config.RedactSensitive,
	}), nil
}

type traceIDKey struct{}

// WithTraceID stores a trace ID in the context
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey{}, traceID)
}

// TraceIDFromContext extracts a trace ID from the context, if any
func TraceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey{}).(string); ok {
		return v
	}
	return ""
}
