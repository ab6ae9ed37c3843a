package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"jobscout/internal/logging/types"
)

// Re-export types for convenience
type (
	LogLevel   = types.LogLevel
	LogEntry   = types.LogEntry
	LogAdapter = types.LogAdapter
	Logger     = types.Logger
)

const (
	DebugLevel = types.DebugLevel
	InfoLevel  = types.InfoLevel
	WarnLevel  = types.WarnLevel
	ErrorLevel = types.ErrorLevel
	FatalLevel = types.FatalLevel
)

// MultiLogger fans log entries out to a set of adapters.
type MultiLogger struct {
	adapters map[string]types.LogAdapter
	level    types.LogLevel
	fields   map[string]interface{}
	mu       sync.RWMutex
}

// NewMultiLogger creates a new MultiLogger instance with no adapters attached.
func NewMultiLogger() *MultiLogger {
	return &MultiLogger{
		adapters: make(map[string]types.LogAdapter),
		level:    types.InfoLevel,
		fields:   make(map[string]interface{}),
	}
}

func (l *MultiLogger) Debug(message string, fields ...map[string]interface{}) {
	l.Log(types.DebugLevel, message, fields...)
}

func (l *MultiLogger) Info(message string, fields ...map[string]interface{}) {
	l.Log(types.InfoLevel, message, fields...)
}

func (l *MultiLogger) Warn(message string, fields ...map[string]interface{}) {
	l.Log(types.WarnLevel, message, fields...)
}

func (l *MultiLogger) Error(message string, fields ...map[string]interface{}) {
	l.Log(types.ErrorLevel, message, fields...)
}

// Fatal logs the message, flushes adapters and exits.
func (l *MultiLogger) Fatal(message string, fields ...map[string]interface{}) {
	l.Log(types.FatalLevel, message, fields...)
	l.Close()
	os.Exit(1)
}

// Log writes a message at the given level to every attached adapter.
func (l *MultiLogger) Log(level types.LogLevel, message string, fields ...map[string]interface{}) {
	if level < l.level {
		return
	}

	entry := &types.LogEntry{
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Fields:    l.mergeFields(fields...),
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	for name, adapter := range l.adapters {
		if err := adapter.Write(entry); err != nil {
			// Adapter errors go to stderr to avoid a feedback loop.
			fmt.Fprintf(os.Stderr, "logging adapter %s error: %v\n", name, err)
		}
	}
}

// WithField returns a derived logger carrying one extra field.
func (l *MultiLogger) WithField(key string, value interface{}) types.Logger {
	fields := l.copyFields()
	fields[key] = value
	return &MultiLogger{adapters: l.adapters, level: l.level, fields: fields}
}

// WithFields returns a derived logger carrying the extra fields.
func (l *MultiLogger) WithFields(fields map[string]interface{}) types.Logger {
	merged := l.copyFields()
	for k, v := range fields {
		merged[k] = v
	}
	return &MultiLogger{adapters: l.adapters, level: l.level, fields: merged}
}

// SetLevel sets the minimum level written to adapters.
func (l *MultiLogger) SetLevel(level types.LogLevel) {
	l.level = level
}

// AddAdapter attaches an output adapter.
func (l *MultiLogger) AddAdapter(adapter types.LogAdapter) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	name := adapter.Name()
	if _, exists := l.adapters[name]; exists {
		return fmt.Errorf("adapter %s already registered", name)
	}
	l.adapters[name] = adapter
	return nil
}

// Close closes every adapter.
func (l *MultiLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, adapter := range l.adapters {
		if err := adapter.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (l *MultiLogger) copyFields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		out[k] = v
	}
	return out
}

func (l *MultiLogger) mergeFields(fields ...map[string]interface{}) map[string]interface{} {
	merged := l.copyFields()
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}
