package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// Level represents the severity of a log message
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l Level) String() string {
	return [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}[l]
}

// ParseLevel maps a config string to a Level, defaulting to INFO
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// Logger writes leveled, optionally structured log entries
type Logger struct {
	level      Level
	writer     io.Writer
	structured bool // JSON output if true
}

// Entry is the serialized form of one log line
type Entry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Error     string                 `json:"error,omitempty"`
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(INFO, os.Stdout, false)
}

// New creates a logger instance
func New(level Level, writer io.Writer, structured bool) *Logger {
	return &Logger{
		level:      level,
		writer:     writer,
		structured: structured,
	}
}

// SetDefault replaces the package-level logger
func SetDefault(l *Logger) {
	defaultLogger = l
}

func (l *Logger) log(level Level, message string, err error, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	if l.structured {
		data, _ := json.Marshal(entry)
		fmt.Fprintln(l.writer, string(data))
		return
	}

	msg := fmt.Sprintf("[%s] %s: %s", entry.Timestamp, entry.Level, entry.Message)
	if len(entry.Fields) > 0 {
		msg += fmt.Sprintf(" %+v", entry.Fields)
	}
	if entry.Error != "" {
		msg += fmt.Sprintf(" error=%s", entry.Error)
	}
	fmt.Fprintln(l.writer, msg)
}

func (l *Logger) Debug(message string, fields map[string]interface{}) {
	l.log(DEBUG, message, nil, fields)
}

func (l *Logger) Info(message string, fields map[string]interface{}) {
	l.log(INFO, message, nil, fields)
}

func (l *Logger) Warn(message string, fields map[string]interface{}) {
	l.log(WARN, message, nil, fields)
}

func (l *Logger) Error(message string, err error, fields map[string]interface{}) {
	l.log(ERROR, message, err, fields)
}

// Convenience functions on the default logger

func Debug(message string, fields map[string]interface{}) {
	defaultLogger.log(DEBUG, message, nil, fields)
}

func Info(message string, fields map[string]interface{}) {
	defaultLogger.log(INFO, message, nil, fields)
}

func Warn(message string, fields map[string]interface{}) {
	defaultLogger.log(WARN, message, nil, fields)
}

func Error(message string, err error, fields map[string]interface{}) {
	defaultLogger.log(ERROR, message, err, fields)
}

func Fatal(message string, err error, fields map[string]interface{}) {
	defaultLogger.log(FATAL, message, err, fields)
	os.Exit(1)
}
