package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

var (
	loggerInstance *fileLogger
	loggerOnce     sync.Once
)

// Logger defines a minimal, printf-style logging contract shared by all
// components so packages can depend on this interface without caring where
// output ends up.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// fileLogger provides structured logging to mystique-debug.log
type fileLogger struct {
	file       *os.File
	logger     *log.Logger
	level      LogLevel
	mu         *sync.Mutex
	component  string
	enableFile bool
}

func getLogger() *fileLogger {
	loggerOnce.Do(func() {
		loggerInstance = newFileLogger("", defaultLevel(), true)
	})
	return loggerInstance
}

func defaultLevel() LogLevel {
	switch os.Getenv("MYSTIQUE_LOG_LEVEL") {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// ParseLevel maps a config string to a LogLevel. Unknown strings mean INFO.
func ParseLevel(level string) LogLevel {
	switch level {
	case "debug":
		return DEBUG
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// NewComponentLogger creates a logger scoped to a specific component.
func NewComponentLogger(component string) Logger {
	base := getLogger()
	return &fileLogger{
		file:       base.file,
		logger:     base.logger,
		level:      base.level,
		mu:         base.mu,
		component:  component,
		enableFile: base.enableFile,
	}
}

func newFileLogger(component string, level LogLevel, enableFile bool) *fileLogger {
	l := &fileLogger{
		level:      level,
		component:  component,
		mu:         &sync.Mutex{},
		enableFile: enableFile,
	}

	if enableFile {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Printf("Failed to get home directory: %v", err)
			return l
		}

		logPath := filepath.Join(home, "mystique-debug.log")
		file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Printf("Failed to open log file: %v", err)
			return l
		}

		l.file = file
		l.logger = log.New(file, "", 0) // We'll format ourselves
	}

	return l
}

// SetLevel sets the minimum level on the shared logger.
func SetLevel(level LogLevel) {
	base := getLogger()
	base.mu.Lock()
	defer base.mu.Unlock()
	base.level = level
}

func (l *fileLogger) log(level LogLevel, format string, args ...any) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	} else {
		file = "???"
		line = 0
	}

	// Format: 2025-09-30 12:34:56 [INFO] [ComponentName] file.go:123 - Message
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	component := l.component
	if component == "" {
		component = "MYSTIQUE"
	}

	message := fmt.Sprintf(format, args...)
	logLine := fmt.Sprintf("%s [%s] [%s] %s:%d - %s\n",
		timestamp, levelToString(level), component, file, line, message)

	if l.logger != nil {
		l.logger.Print(logLine)
	}

	// Also write to stdout for log redirection in deploy scripts
	fmt.Print(logLine)
}

func (l *fileLogger) Debug(format string, args ...any) {
	l.log(DEBUG, format, args...)
}

func (l *fileLogger) Info(format string, args ...any) {
	l.log(INFO, format, args...)
}

func (l *fileLogger) Warn(format string, args ...any) {
	l.log(WARN, format, args...)
}

func (l *fileLogger) Error(format string, args ...any) {
	l.log(ERROR, format, args...)
}

func levelToString(level LogLevel) string {
	switch level {
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

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return nopLogger{}
}

// OrNop returns logger when non-nil, otherwise a no-op logger.
func OrNop(logger Logger) Logger {
	if logger == nil {
		return Nop()
	}
	return logger
}
