package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
)

// Level represents the severity of a log entry.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// ParseLevel maps a config string to a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger provides structured JSON logging with optional PII redaction.
type Logger struct {
	name      string
	level     Level
	redactPII bool
	mu        sync.Mutex
	sink      io.Writer
}

var defaultLogger = &Logger{level: INFO, redactPII: true, sink: os.Stdout}

var initOnce sync.Once

// Init configures the default logger once at process start. Later calls
// are no-ops.
func Init(name, level string, redactPII bool, sink io.Writer) {
	initOnce.Do(func() {
		defaultLogger = New(name, ParseLevel(level), redactPII, sink)
	})
}

// Default returns the process-wide logger configured by Init.
func Default() *Logger { return defaultLogger }

// New builds a standalone logger. Tests use it with a bytes.Buffer sink.
func New(name string, level Level, redactPII bool, sink io.Writer) *Logger {
	if sink == nil {
		sink = os.Stdout
	}
	return &Logger{name: name, level: level, redactPII: redactPII, sink: sink}
}

// Debug emits a DEBUG-level structured log entry.
func Debug(msg string, fields ...interface{}) { defaultLogger.log(nil, DEBUG, msg, fields...) }

// Info emits an INFO-level structured log entry.
func Info(msg string, fields ...interface{}) { defaultLogger.log(nil, INFO, msg, fields...) }

// Warn emits a WARN-level structured log entry.
func Warn(msg string, fields ...interface{}) { defaultLogger.log(nil, WARN, msg, fields...) }

// Error emits an ERROR-level structured log entry.
func Error(msg string, fields ...interface{}) { defaultLogger.log(nil, ERROR, msg, fields...) }

func (l *Logger) Debug(msg string, fields ...interface{}) { l.log(nil, DEBUG, msg, fields...) }
func (l *Logger) Info(msg string, fields ...interface{})  { l.log(nil, INFO, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...interface{})  { l.log(nil, WARN, msg, fields...) }
func (l *Logger) Error(msg string, fields ...interface{}) { l.log(nil, ERROR, msg, fields...) }

// InfoContext and friends add trace_id, span_id and request_id from ctx.
func (l *Logger) InfoContext(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, INFO, msg, fields...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, WARN, msg, fields...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, fields ...interface{}) {
	l.log(ctx, ERROR, msg, fields...)
}

func (l *Logger) log(ctx context.Context, level Level, msg string, fields ...interface{}) {
	if level < l.level {
		return
	}

	entry := map[string]interface{}{
		"time":  time.Now().UTC().Format(time.RFC3339Nano),
		"level": levelNames[level],
		"msg":   msg,
	}
	if l.name != "" {
		entry["name"] = l.name
	}
	if ctx != nil {
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			entry["trace_id"] = sc.TraceID().String()
			entry["span_id"] = sc.SpanID().String()
		}
		if reqID := middleware.GetReqID(ctx); reqID != "" {
			entry["request_id"] = reqID
		}
	}

	// Parse key-value pairs from fields
	for i := 0; i < len(fields)-1; i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		val := fmt.Sprintf("%v", fields[i+1])
		if l.redactPII {
			val = redactPIIValue(key, val)
		}
		entry[key] = val
	}

	data, _ := json.Marshal(entry)
	l.mu.Lock()
	fmt.Fprintln(l.sink, string(data))
	l.mu.Unlock()
}

var emailRegex = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

func redactPIIValue(key, val string) string {
	key = strings.ToLower(key)
	if strings.Contains(key, "email") {
		return RedactEmail(val)
	}
	if strings.Contains(key, "subscriber") {
		return RedactName(val)
	}
	// Redact any embedded emails in generic fields
	return emailRegex.ReplaceAllStringFunc(val, RedactEmail)
}
