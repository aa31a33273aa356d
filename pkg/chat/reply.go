package chat

import "strings"

// FinishReasonLength marks a reply cut off by the token limit.
const FinishReasonLength = "length"

// Usage reports token accounting for one reply.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// Reply is one complete model reply.
type Reply struct {
	ID           string `json:"id,omitempty"`
	Model        string `json:"model,omitempty"`
	Created      int64  `json:"created,omitempty"`
	Role         Role   `json:"role"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
}

// Fragment is one incremental piece of a streamed reply. Done is set on the
// fragment that carries the finish reason.
type Fragment struct {
	ID           string `json:"id,omitempty"`
	Model        string `json:"model,omitempty"`
	Created      int64  `json:"created,omitempty"`
	Role         Role   `json:"role,omitempty"`
	Content      string `json:"content"`
	FinishReason string `json:"finish_reason,omitempty"`
	Usage        *Usage `json:"usage,omitempty"`
	Done         bool   `json:"done"`
}

// Accumulator reassembles fragments into a Reply.
type Accumulator struct {
	reply   Reply
	content strings.Builder
	count   int
}

// Add folds f into the reply being assembled.
func (a *Accumulator) Add(f Fragment) {
	a.count++
	if a.reply.ID == "" {
		a.reply.ID = f.ID
	}
	if a.reply.Model == "" {
		a.reply.Model = f.Model
	}
	if a.reply.Created == 0 {
		a.reply.Created = f.Created
	}
	if a.reply.Role == "" && f.Role != "" {
		a.reply.Role = f.Role
	}
	a.content.WriteString(f.Content)
	if f.FinishReason != "" {
		a.reply.FinishReason = f.FinishReason
	}
	if f.Usage != nil {
		u := *f.Usage
		a.reply.Usage = &u
	}
}

// Count returns the number of fragments added so far.
func (a *Accumulator) Count() int { return a.count }

// Reply returns the assembled reply. Role defaults to assistant.
func (a *Accumulator) Reply() Reply {
	r := a.reply
	r.Content = a.content.String()
	if r.Role == "" {
		r.Role = RoleAssistant
	}
	return r
}
