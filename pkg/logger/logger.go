// Package logger writes leveled diagnostics, one line per event, to stderr or
// any other writer.
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Logger receives diagnostics. obj, when non-nil, is appended as JSON.
type Logger interface {
	Info(msg string, obj any)
	Warn(msg string, obj any)
	Debug(msg string, obj any)
	Error(msg string, obj any)
}

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Info(string, any)  {}
func (NopLogger) Warn(string, any)  {}
func (NopLogger) Debug(string, any) {}
func (NopLogger) Error(string, any) {}

// Level is the severity tag printed on each line.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (lv Level) String() string {
	switch lv {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "?"
}

func (lv Level) color() *color.Color {
	switch lv {
	case LevelDebug:
		return color.New(color.FgCyan)
	case LevelInfo:
		return color.New(color.FgGreen)
	case LevelWarn:
		return color.New(color.FgYellow)
	}
	return color.New(color.FgRed, color.Bold)
}

// line is the text form of one event: "<RFC3339> <LEVEL> <msg>[ obj=<json>]".
type line struct {
	w     io.Writer
	color bool
	now   func() time.Time
}

func (l line) emit(lv Level, msg string, obj any) {
	if l.w == nil {
		return
	}
	tag := fmt.Sprintf("%-5s", lv)
	if l.color {
		c := lv.color()
		c.EnableColor()
		tag = c.Sprint(tag)
	}

	payload := ""
	if obj != nil {
		if b, err := json.Marshal(obj); err == nil {
			payload = " obj=" + string(b)
		} else {
			payload = fmt.Sprintf(" obj=%q", fmt.Sprintf("%+v", obj))
		}
	}
	_, _ = fmt.Fprintf(l.w, "%s %s %s%s\n", l.now().Format(time.RFC3339), tag, msg, payload)
}

func (l line) Info(msg string, obj any)  { l.emit(LevelInfo, msg, obj) }
func (l line) Warn(msg string, obj any)  { l.emit(LevelWarn, msg, obj) }
func (l line) Debug(msg string, obj any) { l.emit(LevelDebug, msg, obj) }
func (l line) Error(msg string, obj any) { l.emit(LevelError, msg, obj) }

// NewWriterLogger logs to w. Level tags are coloured only when w is a
// terminal and NO_COLOR is unset.
func NewWriterLogger(w io.Writer) Logger {
	return line{w: w, color: colorable(w), now: time.Now}
}

func colorable(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debug logs only when enabled, so call sites can pass the verbose flag.
func Debug(enabled bool, l Logger, msg string, obj any) {
	if enabled && l != nil {
		l.Debug(msg, obj)
	}
}

// Debugf is Debug with a formatted message and no payload.
func Debugf(enabled bool, l Logger, format string, args ...any) {
	if enabled && l != nil {
		l.Debug(fmt.Sprintf(format, args...), nil)
	}
}

// Warn tolerates a nil logger.
func Warn(l Logger, msg string, obj any) {
	if l != nil {
		l.Warn(msg, obj)
	}
}
