package chat

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNewMessageRejectsUnknownRole(t *testing.T) {
	if _, err := NewMessage("tool", "x"); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
	if _, err := ParseRole(" Assistant "); err != nil {
		t.Fatalf("ParseRole: %v", err)
	}
}

func TestMessageEqualityIsStructural(t *testing.T) {
	a, err := NewMessage(RoleUser, "1+1")
	if err != nil {
		t.Fatalf("NewMessage: %v", err)
	}
	if a != User("1+1") {
		t.Fatalf("expected %v to equal %v", a, User("1+1"))
	}
	if a == Assistant("1+1") {
		t.Fatal("messages with different roles must differ")
	}
}

func TestNewConversationInvariants(t *testing.T) {
	cases := []struct {
		name string
		msgs []Message
		want error
	}{
		{"empty", nil, ErrEmptyConversation},
		{"two systems", []Message{System("a"), System("b"), User("c")}, ErrMultipleSystem},
		{"system not first", []Message{User("a"), System("b"), User("c")}, ErrSystemNotFirst},
		{"blank terminal", []Message{User("a"), Assistant("  ")}, ErrEmptyTerminal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewConversation(tc.msgs...); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestNewConversationToleratesRepeatedRolesAndEmptyMiddle(t *testing.T) {
	conv, err := NewConversation(System("s"), User(""), User("a"), Assistant(""), User("b"))
	if err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	if conv.Len() != 5 {
		t.Fatalf("expected 5 messages, got %d", conv.Len())
	}
	if sys, ok := conv.System(); !ok || sys.Content() != "s" {
		t.Fatalf("unexpected system message: %v %v", sys, ok)
	}
}

func TestConversationIsImmutable(t *testing.T) {
	src := []Message{User("a")}
	conv, err := NewConversation(src...)
	if err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	src[0] = User("changed")
	got := conv.Messages()
	got[0] = User("changed again")
	if conv.Messages()[0] != User("a") {
		t.Fatalf("conversation was mutated: %v", conv.Messages())
	}
}

func TestConversationJSON(t *testing.T) {
	conv, err := NewConversation(System("s"), User("u"))
	if err != nil {
		t.Fatalf("NewConversation: %v", err)
	}
	b, err := json.Marshal(conv)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"role":"system","content":"s"},{"role":"user","content":"u"}]`
	if string(b) != want {
		t.Fatalf("expected %s, got %s", want, b)
	}

	var msgs []Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(msgs) != 2 || msgs[0] != System("s") || msgs[1] != User("u") {
		t.Fatalf("unexpected messages: %v", msgs)
	}
}

func TestAccumulatorAssemblesFragments(t *testing.T) {
	var acc Accumulator
	acc.Add(Fragment{ID: "c1", Model: "m", Created: 7, Role: RoleAssistant, Content: "Hel"})
	acc.Add(Fragment{ID: "c1", Content: "lo"})
	acc.Add(Fragment{ID: "c1", FinishReason: "stop", Done: true})

	reply := acc.Reply()
	if reply.Content != "Hello" {
		t.Fatalf("expected content Hello, got %q", reply.Content)
	}
	if reply.ID != "c1" || reply.Model != "m" || reply.Created != 7 {
		t.Fatalf("unexpected metadata: %+v", reply)
	}
	if reply.FinishReason != "stop" || reply.Role != RoleAssistant {
		t.Fatalf("unexpected finish/role: %+v", reply)
	}
	if acc.Count() != 3 {
		t.Fatalf("expected 3 fragments, got %d", acc.Count())
	}
}

func TestAccumulatorDefaultsRole(t *testing.T) {
	var acc Accumulator
	acc.Add(Fragment{Content: "x"})
	if acc.Reply().Role != RoleAssistant {
		t.Fatalf("expected assistant role, got %q", acc.Reply().Role)
	}
}
