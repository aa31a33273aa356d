package chat

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrEmptyConversation = errors.New("conversation has no messages")
	ErrMultipleSystem    = errors.New("conversation has more than one system message")
	ErrSystemNotFirst    = errors.New("system message must be the first message")
	ErrEmptyTerminal     = errors.New("last message has no content")
)

// Conversation is an ordered, validated list of messages. Order is the
// dialogue turn order sent to the model.
type Conversation struct {
	messages []Message
}

// NewConversation validates msgs and returns them as a Conversation.
// The slice is copied.
func NewConversation(msgs ...Message) (Conversation, error) {
	if len(msgs) == 0 {
		return Conversation{}, ErrEmptyConversation
	}
	seenSystem := false
	for i, msg := range msgs {
		if !msg.role.Valid() {
			return Conversation{}, fmt.Errorf("message %d: %w: %q", i, ErrInvalidRole, msg.role)
		}
		if msg.role != RoleSystem {
			continue
		}
		if seenSystem {
			return Conversation{}, ErrMultipleSystem
		}
		if i != 0 {
			return Conversation{}, ErrSystemNotFirst
		}
		seenSystem = true
	}
	if msgs[len(msgs)-1].Blank() {
		return Conversation{}, ErrEmptyTerminal
	}

	out := make([]Message, len(msgs))
	copy(out, msgs)
	return Conversation{messages: out}, nil
}

func (c Conversation) Len() int { return len(c.messages) }

// Messages returns a copy of the messages in order.
func (c Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// System returns the system message, if any.
func (c Conversation) System() (Message, bool) {
	if len(c.messages) > 0 && c.messages[0].role == RoleSystem {
		return c.messages[0], true
	}
	return Message{}, false
}

func (c Conversation) MarshalJSON() ([]byte, error) {
	if c.messages == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.messages)
}
