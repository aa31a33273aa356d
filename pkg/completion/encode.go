package completion

import (
	"errors"
	"fmt"

	"github.com/minhyannv/cogni/pkg/chat"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

var (
	ErrEmptyConversation = errors.New("cannot encode an empty conversation")
	ErrUnknownRole       = errors.New("cannot encode message role")
)

// Options are the generation parameters sent with the conversation.
type Options struct {
	Model           string
	Temperature     *float64
	MaxTokens       int64
	ReasoningEffort string
}

// Encode maps a conversation and options onto a chat completion request.
// Message order is preserved.
func Encode(conv chat.Conversation, opts Options) (openai.ChatCompletionNewParams, error) {
	if conv.Len() == 0 {
		return openai.ChatCompletionNewParams{}, ErrEmptyConversation
	}

	msgs := conv.Messages()
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for i, msg := range msgs {
		switch msg.Role() {
		case chat.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content()))
		case chat.RoleUser:
			out = append(out, openai.UserMessage(msg.Content()))
		case chat.RoleAssistant:
			out = append(out, openai.AssistantMessage(msg.Content()))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("%w at index %d: %q", ErrUnknownRole, i, msg.Role())
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(opts.Model),
		Messages: out,
	}
	if opts.Temperature != nil {
		params.Temperature = openai.Float(*opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(opts.MaxTokens)
	}
	if opts.ReasoningEffort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(opts.ReasoningEffort)
	}
	return params, nil
}
