// Package input merges flag-supplied messages with a file or stdin body into
// one ordered conversation.
package input

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minhyannv/cogni/pkg/chat"
)

// StdinPath names standard input as the body source.
const StdinPath = "-"

// Kind classifies aggregation failures.
type Kind int

const (
	KindNoContent Kind = iota + 1
	KindConflictingSource
	KindRead
	KindInvalid
)

func (k Kind) String() string {
	switch k {
	case KindNoContent:
		return "no content"
	case KindConflictingSource:
		return "conflicting source"
	case KindRead:
		return "read"
	case KindInvalid:
		return "invalid conversation"
	}
	return "unknown"
}

// Error is returned by Aggregate.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNoContent:
		return "no messages provided"
	case KindConflictingSource:
		return fmt.Sprintf("conflicting input sources: %v", e.Err)
	case KindRead:
		return fmt.Sprintf("failed to open %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Sources holds every place a message can come from.
type Sources struct {
	// System is the optional system prompt. Empty means none.
	System string
	// Messages are the -u/-a flag messages in command-line order.
	Messages []chat.Message
	// Paths are positional file arguments. At most one is allowed.
	Paths []string
	// Stdin is read when no path is given. Nil means stdin is unavailable,
	// e.g. attached to a terminal.
	Stdin io.Reader
}

// Aggregate builds the conversation: system first, flag messages in order,
// then one trailing user message from the body when it is not blank.
func Aggregate(src Sources) (chat.Conversation, error) {
	if len(src.Paths) > 1 {
		return chat.Conversation{}, &Error{
			Kind: KindConflictingSource,
			Err:  fmt.Errorf("expected at most one file argument, got %d (%s)", len(src.Paths), strings.Join(src.Paths, ", ")),
		}
	}

	body, err := readBody(src)
	if err != nil {
		return chat.Conversation{}, err
	}

	msgs := make([]chat.Message, 0, len(src.Messages)+2)
	if src.System != "" {
		msgs = append(msgs, chat.System(src.System))
	}
	msgs = append(msgs, src.Messages...)
	if strings.TrimSpace(body) != "" {
		msgs = append(msgs, chat.User(body))
	}

	if !hasContent(msgs) {
		return chat.Conversation{}, &Error{Kind: KindNoContent}
	}

	conv, err := chat.NewConversation(msgs...)
	if err != nil {
		return chat.Conversation{}, &Error{Kind: KindInvalid, Err: err}
	}
	return conv, nil
}

// readBody reads the file argument, or stdin when there is none. Stdin is
// never touched when a file is given.
func readBody(src Sources) (string, error) {
	path := ""
	if len(src.Paths) == 1 {
		path = src.Paths[0]
	}

	switch path {
	case "":
		if src.Stdin == nil {
			return "", nil
		}
		return readAll(src.Stdin, "stdin")
	case StdinPath:
		if src.Stdin == nil {
			return "", &Error{Kind: KindRead, Path: "stdin", Err: errors.New("stdin is not available")}
		}
		return readAll(src.Stdin, "stdin")
	}

	f, err := os.Open(path)
	if err != nil {
		return "", &Error{Kind: KindRead, Path: path, Err: err}
	}
	defer f.Close()
	return readAll(f, path)
}

func readAll(r io.Reader, name string) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", &Error{Kind: KindRead, Path: name, Err: err}
	}
	return string(b), nil
}

// hasContent reports whether any message carries content. A lone system
// prompt counts.
func hasContent(msgs []chat.Message) bool {
	for _, msg := range msgs {
		if !msg.Blank() {
			return true
		}
	}
	return false
}
