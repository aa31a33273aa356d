package logger

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func fixedLine(buf *bytes.Buffer) line {
	return line{w: buf, now: func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }}
}

func TestLineFormat(t *testing.T) {
	var buf bytes.Buffer
	l := fixedLine(&buf)

	l.Warn("reply truncated", map[string]any{"finish_reason": "length"})
	l.Info("done", nil)

	want := "2024-01-02T03:04:05Z WARN  reply truncated obj={\"finish_reason\":\"length\"}\n" +
		"2024-01-02T03:04:05Z INFO  done\n"
	if buf.String() != want {
		t.Fatalf("unexpected output:\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestLineUnmarshalableObject(t *testing.T) {
	var buf bytes.Buffer
	fixedLine(&buf).Error("bad", map[string]any{"ch": make(chan int)})
	if !strings.Contains(buf.String(), "ERROR bad obj=\"map[ch:") {
		t.Fatalf("expected %%+v fallback, got %q", buf.String())
	}
}

func TestWriterLoggerNoColourForBuffer(t *testing.T) {
	var buf bytes.Buffer
	NewWriterLogger(&buf).Warn("x", nil)
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no colour codes for a buffer: %q", buf.String())
	}
}

func TestDebugRespectsEnabled(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf)

	Debug(false, l, "hidden", nil)
	Debugf(false, l, "hidden %d", 1)
	if buf.Len() != 0 {
		t.Fatalf("expected no output, got %q", buf.String())
	}

	Debugf(true, l, "output closed: %s", "broken pipe")
	if !strings.Contains(buf.String(), "DEBUG output closed: broken pipe") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestHelpersTolerateNilLogger(t *testing.T) {
	Warn(nil, "x", nil)
	Debug(true, nil, "x", nil)
	Debugf(true, nil, "x")
}

func TestLevelString(t *testing.T) {
	for lv, want := range map[Level]string{LevelDebug: "DEBUG", LevelInfo: "INFO", LevelWarn: "WARN", LevelError: "ERROR"} {
		if lv.String() != want {
			t.Fatalf("expected %s, got %s", want, lv)
		}
	}
}
