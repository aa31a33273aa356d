package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role is the role for a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ErrInvalidRole is returned when a message is built with an unknown role.
var ErrInvalidRole = errors.New("invalid message role")

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// ParseRole converts a role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Message is one conversation turn. The zero value is not a valid message;
// use NewMessage or one of the role helpers.
type Message struct {
	role    Role
	content string
}

// NewMessage builds a message after checking the role.
func NewMessage(role Role, content string) (Message, error) {
	if !role.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return Message{role: role, content: content}, nil
}

func System(content string) Message    { return Message{role: RoleSystem, content: content} }
func User(content string) Message      { return Message{role: RoleUser, content: content} }
func Assistant(content string) Message { return Message{role: RoleAssistant, content: content} }

func (m Message) Role() Role      { return m.role }
func (m Message) Content() string { return m.content }

// Blank reports whether the content is empty or whitespace only.
func (m Message) Blank() bool {
	return strings.TrimSpace(m.content) == ""
}

func (m Message) String() string {
	return fmt.Sprintf("%s(%q)", m.role, m.content)
}

type messageJSON struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func (m Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(messageJSON{Role: m.role, Content: m.content})
}

func (m *Message) UnmarshalJSON(data []byte) error {
	var raw messageJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	msg, err := NewMessage(raw.Role, raw.Content)
	if err != nil {
		return err
	}
	*m = msg
	return nil
}
