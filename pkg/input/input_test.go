package input

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/minhyannv/cogni/pkg/chat"
)

// failingReader fails the test if the aggregator reads it.
type failingReader struct{ t *testing.T }

func (r failingReader) Read([]byte) (int, error) {
	r.t.Fatal("stdin must not be read")
	return 0, io.EOF
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func assertMessages(t *testing.T, conv chat.Conversation, want []chat.Message) {
	t.Helper()
	got := conv.Messages()
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("message %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func assertKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	var inErr *Error
	if !errors.As(err, &inErr) {
		t.Fatalf("expected *input.Error, got %v", err)
	}
	if inErr.Kind != kind {
		t.Fatalf("expected kind %s, got %s", kind, inErr.Kind)
	}
}

func TestAggregateScenario(t *testing.T) {
	conv, err := Aggregate(Sources{
		System: "Solve the problem",
		Messages: []chat.Message{
			chat.User("1+1"),
			chat.Assistant("2"),
			chat.User("22+20"),
			chat.Assistant("42"),
		},
		Stdin: strings.NewReader("50+50"),
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertMessages(t, conv, []chat.Message{
		chat.System("Solve the problem"),
		chat.User("1+1"),
		chat.Assistant("2"),
		chat.User("22+20"),
		chat.Assistant("42"),
		chat.User("50+50"),
	})
}

func TestAggregateFileWinsOverStdin(t *testing.T) {
	path := writeFile(t, "alpha")
	conv, err := Aggregate(Sources{
		Paths: []string{path},
		Stdin: failingReader{t},
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertMessages(t, conv, []chat.Message{chat.User("alpha")})
}

func TestAggregateNoContent(t *testing.T) {
	_, err := Aggregate(Sources{Stdin: strings.NewReader("")})
	assertKind(t, err, KindNoContent)
	if err.Error() != "no messages provided" {
		t.Fatalf("unexpected message: %q", err.Error())
	}

	_, err = Aggregate(Sources{Stdin: strings.NewReader(" \n\t")})
	assertKind(t, err, KindNoContent)

	_, err = Aggregate(Sources{})
	assertKind(t, err, KindNoContent)

	_, err = Aggregate(Sources{System: "  \n"})
	assertKind(t, err, KindNoContent)
}

func TestAggregateSystemOnly(t *testing.T) {
	conv, err := Aggregate(Sources{System: "Tell me a joke"})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	msgs := conv.Messages()
	if len(msgs) != 1 || msgs[0] != chat.System("Tell me a joke") {
		t.Fatalf("expected the system message alone, got %v", msgs)
	}
}

func TestAggregateFlagsOnlyOmitsBlankBody(t *testing.T) {
	conv, err := Aggregate(Sources{
		Messages: []chat.Message{chat.User("hello")},
		Stdin:    strings.NewReader("\n"),
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertMessages(t, conv, []chat.Message{chat.User("hello")})
}

func TestAggregateBodyKeptVerbatim(t *testing.T) {
	conv, err := Aggregate(Sources{Stdin: strings.NewReader("line one\nline two\n")})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertMessages(t, conv, []chat.Message{chat.User("line one\nline two\n")})
}

func TestAggregateConflictingSources(t *testing.T) {
	a := writeFile(t, "a")
	b := writeFile(t, "b")
	_, err := Aggregate(Sources{Paths: []string{a, b}})
	assertKind(t, err, KindConflictingSource)
}

func TestAggregateMissingFile(t *testing.T) {
	_, err := Aggregate(Sources{Paths: []string{"file_does_not_exist"}})
	assertKind(t, err, KindRead)
	if !strings.Contains(err.Error(), "failed to open file_does_not_exist") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected wrapped os.ErrNotExist, got %v", err)
	}
}

func TestAggregateDashReadsStdin(t *testing.T) {
	conv, err := Aggregate(Sources{Paths: []string{StdinPath}, Stdin: strings.NewReader("piped")})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertMessages(t, conv, []chat.Message{chat.User("piped")})

	_, err = Aggregate(Sources{Paths: []string{StdinPath}})
	assertKind(t, err, KindRead)
}

func TestAggregateBlankLastFlagMessageIsInvalid(t *testing.T) {
	_, err := Aggregate(Sources{Messages: []chat.Message{chat.User("q"), chat.Assistant("")}})
	assertKind(t, err, KindInvalid)
	if !errors.Is(err, chat.ErrEmptyTerminal) {
		t.Fatalf("expected ErrEmptyTerminal, got %v", err)
	}
}

func TestAggregateBlankFlagMessageBeforeBody(t *testing.T) {
	conv, err := Aggregate(Sources{
		Messages: []chat.Message{chat.User("q"), chat.Assistant("")},
		Stdin:    strings.NewReader("next"),
	})
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	assertMessages(t, conv, []chat.Message{chat.User("q"), chat.Assistant(""), chat.User("next")})
}
