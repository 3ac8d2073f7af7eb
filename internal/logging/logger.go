package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Logger defines a minimal, printf-style logging contract.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
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

var (
	sinkInstance *sink
	sinkOnce     sync.Once
)

// sink is the shared log destination: the per-user log file, plus an
// optional console echo enabled in debug mode.
type sink struct {
	mu    sync.Mutex
	file  *os.File
	echo  io.Writer
	level Level
}

func getSink() *sink {
	sinkOnce.Do(func() {
		sinkInstance = &sink{level: InfoLevel}
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		dir := filepath.Join(home, ".claudesynth")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return
		}
		file, err := os.OpenFile(filepath.Join(dir, "claudesynth.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return
		}
		sinkInstance.file = file
	})
	return sinkInstance
}

// SetLevel sets the minimum level for the shared log sink.
func SetLevel(level Level) {
	s := getSink()
	s.mu.Lock()
	s.level = level
	s.mu.Unlock()
}

// EchoToConsole mirrors log output to w (typically os.Stderr) in addition to
// the log file. Used by the CLI's --debug flag.
func EchoToConsole(w io.Writer) {
	s := getSink()
	s.mu.Lock()
	s.echo = w
	s.mu.Unlock()
}

func (s *sink) write(level Level, component, format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if level < s.level {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("%s [%s] [%s] %s\n", timestamp, level, component, fmt.Sprintf(format, args...))

	if s.file != nil {
		_, _ = s.file.WriteString(line)
	}
	if s.echo != nil {
		_, _ = io.WriteString(s.echo, line)
	}
}

type componentLogger struct {
	component string
	sink      *sink
}

// NewComponentLogger returns the default application logger scoped to a component.
func NewComponentLogger(component string) Logger {
	if component == "" {
		component = "claudesynth"
	}
	return &componentLogger{component: component, sink: getSink()}
}

func (l *componentLogger) Debug(format string, args ...any) {
	l.sink.write(DebugLevel, l.component, format, args...)
}

func (l *componentLogger) Info(format string, args ...any) {
	l.sink.write(InfoLevel, l.component, format, args...)
}

func (l *componentLogger) Warn(format string, args ...any) {
	l.sink.write(WarnLevel, l.component, format, args...)
}

func (l *componentLogger) Error(format string, args ...any) {
	l.sink.write(ErrorLevel, l.component, format, args...)
}
