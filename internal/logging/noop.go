package logging

// NoOpLogger discards all log output. Used for quiet mode and in tests.
type NoOpLogger struct{}

// NewNoOpLogger creates a logger that discards everything
func NewNoOpLogger() *NoOpLogger {
	return &NoOpLogger{}
}

func (l *NoOpLogger) Debug(msg string, fields ...Field) {}
func (l *NoOpLogger) Info(msg string, fields ...Field)  {}
func (l *NoOpLogger) Warn(msg string, fields ...Field)  {}
func (l *NoOpLogger) Error(msg string, fields ...Field) {}

func (l *NoOpLogger) WithTraceID(traceID string) Logger { return l }
func (l *NoOpLogger) SetLevel(level LogLevel)           {}
func (l *NoOpLogger) Close() error                      { return nil }
