package logging

import (
	"bytes"
	"strings"
	"testing"
)

func newTestLogger(level LogLevel, redact bool) (*ConsoleLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(ConsoleLoggerConfig{
		Writer:          buf,
		Level:           level,
		RedactSensitive: redact,
	})
	return logger, buf
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	logger, buf := newTestLogger(WARN, false)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("DEBUG message should be filtered at WARN level")
	}
	if strings.Contains(out, "info message") {
		t.Error("INFO message should be filtered at WARN level")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("WARN message missing from output")
	}
	if !strings.Contains(out, "error message") {
		t.Error("ERROR message missing from output")
	}
}

func TestConsoleLogger_SetLevel(t *testing.T) {
	logger, buf := newTestLogger(ERROR, false)

	logger.Info("before")
	logger.SetLevel(DEBUG)
	logger.Info("after")

	out := buf.String()
	if strings.Contains(out, "before") {
		t.Error("message logged below threshold")
	}
	if !strings.Contains(out, "after") {
		t.Error("message missing after SetLevel")
	}
}

func TestConsoleLogger_Fields(t *testing.T) {
	logger, buf := newTestLogger(INFO, false)

	logger.Info("pulled file", F("path", ".env"), F("bytes", 42))

	out := buf.String()
	if !strings.Contains(out, "path=.env") {
		t.Errorf("field missing from output: %q", out)
	}
	if !strings.Contains(out, "bytes=42") {
		t.Errorf("field missing from output: %q", out)
	}
}

func TestConsoleLogger_Redaction(t *testing.T) {
	tests := []struct {
		name    string
		message string
		leaked  string
	}{
		{
			name:    "dotenv secret assignment",
			message: "skipping line API_SECRET_KEY=hunter2abc",
			leaked:  "hunter2abc",
		},
		{
			name:    "bearer token",
			message: "request used Bearer ya29.a0AfH6SMC",
			leaked:  "ya29.a0AfH6SMC",
		},
		{
			name:    "password assignment",
			message: "found DB_PASSWORD=topsecret in file",
			leaked:  "topsecret",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger(INFO, true)
			logger.Info(tt.message)

			out := buf.String()
			if strings.Contains(out, tt.leaked) {
				t.Errorf("sensitive value leaked into log output: %q", out)
			}
			if !strings.Contains(out, "[REDACTED]") {
				t.Errorf("expected [REDACTED] marker in output: %q", out)
			}
		})
	}
}

func TestConsoleLogger_WithTraceID(t *testing.T) {
	logger, buf := newTestLogger(INFO, false)

	traced := logger.WithTraceID("abcdef1234567890")
	traced.Info("traced message")

	out := buf.String()
	if !strings.Contains(out, "[abcdef12]") {
		t.Errorf("expected shortened trace ID in output: %q", out)
	}
}

func TestNewLogger_ConsoleDisabled(t *testing.T) {
	config := DefaultLogConfig()
	config.EnableConsole = false

	logger, err := NewLogger(config)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}
	if _, ok := logger.(*NoOpLogger); !ok {
		t.Errorf("expected NoOpLogger, got %T", logger)
	}
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{DEBUG, "DEBUG"},
		{INFO, "INFO"},
		{WARN, "WARN"},
		{ERROR, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
