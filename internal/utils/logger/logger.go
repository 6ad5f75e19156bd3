package logger

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
)

// Level colors for the console. color.NoColor handles dumb terminals
// and piped output.
var levelColors = map[string]*color.Color{
	"DEBUG": color.New(color.FgCyan),
	"INFO":  color.New(color.FgBlue),
	"OK":    color.New(color.FgGreen),
	"WARN":  color.New(color.FgYellow),
	"ERROR": color.New(color.FgRed, color.Bold),
}

// Logger is a tagged console logger. Every package creates its own
// with a short uppercase tag so log lines can be traced to a subsystem.
type Logger struct {
	tag string
	std *log.Logger
}

// New creates a Logger with the given tag.
func New(tag string) *Logger {
	return &Logger{
		tag: tag,
		std: log.New(os.Stdout, "", log.LstdFlags),
	}
}

func (l *Logger) printf(level, format string, args ...any) {
	if c, ok := levelColors[level]; ok {
		level = c.Sprint(level)
	}
	l.std.Printf("[%s] [%s] %s", level, l.tag, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	l.printf("DEBUG", format, args...)
}

func (l *Logger) Info(format string, args ...any) {
	l.printf("INFO", format, args...)
}

func (l *Logger) Success(format string, args ...any) {
	l.printf("OK", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.printf("WARN", format, args...)
}

// Error logs and returns the formatted error so callers can
// `return log.Error(...)` directly.
func (l *Logger) Error(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	l.printf("ERROR", "%s", err.Error())
	return err
}
