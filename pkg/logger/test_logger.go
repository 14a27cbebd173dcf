package logger

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
)

// TestLogger is a logger implementation for testing that captures all log messages
type TestLogger struct {
	mu       sync.Mutex
	messages []LogMessage
	buffer   *bytes.Buffer
}

// LogMessage represents a captured log message
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

// NewTestLogger creates a new test logger
func NewTestLogger() *TestLogger {
	return &TestLogger{
		messages: make([]LogMessage, 0),
		buffer:   &bytes.Buffer{},
	}
}

// Debug logs a debug message
func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }

// Info logs an info message
func (l *TestLogger) Info(msg string) { l.log("INFO", msg, nil) }

// Warn logs a warning message
func (l *TestLogger) Warn(msg string) { l.log("WARN", msg, nil) }

// Error logs an error message
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }

// Fatal logs a fatal message (does not exit, to keep tests runnable)
func (l *TestLogger) Fatal(msg string) { l.log("FATAL", msg, nil) }

// DebugWithFields logs a debug message with fields
func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

// InfoWithFields logs an info message with fields
func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

// WarnWithFields logs a warning message with fields
func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

// ErrorWithFields logs an error message with fields
func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

// FatalWithFields logs a fatal message with fields
func (l *TestLogger) FatalWithFields(msg string, fields map[string]interface{}) {
	l.log("FATAL", msg, fields)
}

// WithField adds a field to the logger context
func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return &testLoggerContext{parent: l, fields: map[string]interface{}{key: value}}
}

// WithFields adds multiple fields to the logger context
func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &testLoggerContext{parent: l, fields: fields}
}

// WithError adds an error to the logger context
func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

// log captures a log message
func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, LogMessage{Level: level, Message: msg, Fields: fields})

	fmt.Fprintf(l.buffer, "[%s] %s", level, msg)
	if len(fields) > 0 {
		fmt.Fprintf(l.buffer, " fields=%v", fields)
	}
	fmt.Fprintln(l.buffer)
}

// Messages returns a copy of all captured log messages
func (l *TestLogger) Messages() []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	messages := make([]LogMessage, len(l.messages))
	copy(messages, l.messages)
	return messages
}

// MessagesByLevel returns all messages of a specific level
func (l *TestLogger) MessagesByLevel(level string) []LogMessage {
	l.mu.Lock()
	defer l.mu.Unlock()

	var filtered []LogMessage
	for _, msg := range l.messages {
		if msg.Level == level {
			filtered = append(filtered, msg)
		}
	}
	return filtered
}

// HasMessage checks if a message containing the given text was logged
func (l *TestLogger) HasMessage(text string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, msg := range l.messages {
		if strings.Contains(msg.Message, text) {
			return true
		}
	}
	return false
}

// Clear clears all captured messages
func (l *TestLogger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = l.messages[:0]
	l.buffer.Reset()
}

// String returns all log messages as a string
func (l *TestLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buffer.String()
}

// testLoggerContext carries bound fields back to the parent test logger
type testLoggerContext struct {
	parent *TestLogger
	fields map[string]interface{}
}

func (c *testLoggerContext) merged(extra map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(c.fields)+len(extra))
	for k, v := range c.fields {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func (c *testLoggerContext) Debug(msg string) { c.parent.log("DEBUG", msg, c.fields) }
func (c *testLoggerContext) Info(msg string)  { c.parent.log("INFO", msg, c.fields) }
func (c *testLoggerContext) Warn(msg string)  { c.parent.log("WARN", msg, c.fields) }
func (c *testLoggerContext) Error(msg string) { c.parent.log("ERROR", msg, c.fields) }
func (c *testLoggerContext) Fatal(msg string) { c.parent.log("FATAL", msg, c.fields) }

func (c *testLoggerContext) DebugWithFields(msg string, fields map[string]interface{}) {
	c.parent.log("DEBUG", msg, c.merged(fields))
}
func (c *testLoggerContext) InfoWithFields(msg string, fields map[string]interface{}) {
	c.parent.log("INFO", msg, c.merged(fields))
}
func (c *testLoggerContext) WarnWithFields(msg string, fields map[string]interface{}) {
	c.parent.log("WARN", msg, c.merged(fields))
}
func (c *testLoggerContext) ErrorWithFields(msg string, fields map[string]interface{}) {
	c.parent.log("ERROR", msg, c.merged(fields))
}
func (c *testLoggerContext) FatalWithFields(msg string, fields map[string]interface{}) {
	c.parent.log("FATAL", msg, c.merged(fields))
}

func (c *testLoggerContext) WithField(key string, value interface{}) Logger {
	return &testLoggerContext{parent: c.parent, fields: c.merged(map[string]interface{}{key: value})}
}

func (c *testLoggerContext) WithFields(fields map[string]interface{}) Logger {
	return &testLoggerContext{parent: c.parent, fields: c.merged(fields)}
}

func (c *testLoggerContext) WithError(err error) Logger {
	if err == nil {
		return c
	}
	return c.WithField("error", err.Error())
}
