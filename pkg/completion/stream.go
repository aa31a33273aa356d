package completion

import (
	"context"
	"errors"

	"github.com/minhyannv/cogni/pkg/chat"
	loggerpkg "github.com/minhyannv/cogni/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/packages/ssestream"
)

// Stream is a finite, non-restartable sequence of reply fragments. Each call
// to Next reads from the open connection until the next fragment arrives.
type Stream struct {
	stream *ssestream.Stream[openai.ChatCompletionChunk]
	ctx    context.Context
	cancel context.CancelFunc

	acc   openai.ChatCompletionAccumulator
	cur   chat.Fragment
	count int
	done  bool
	err   error

	logger  loggerpkg.Logger
	verbose bool
}

// Next advances to the next fragment. It returns false at the end of the
// stream or on error; check Err afterwards.
func (s *Stream) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	for s.stream.Next() {
		chunk := s.stream.Current()
		if !s.acc.AddChunk(chunk) {
			s.err = &Error{Kind: KindDecode, Err: errors.New("failed to accumulate stream")}
			return false
		}
		if len(chunk.Choices) == 0 && chunk.Usage.TotalTokens == 0 {
			continue
		}
		s.cur = fragmentFrom(chunk)
		s.count++
		return true
	}

	s.done = true
	if err := s.stream.Err(); err != nil {
		s.err = classify(s.ctx, err)
		loggerpkg.Debug(s.verbose, s.logger, "stream failed", map[string]any{
			"fragments": s.count,
			"error":     err.Error(),
		})
		return false
	}
	if len(s.acc.Choices) == 0 {
		s.err = &Error{Kind: KindDecode, Err: errors.New("empty streamed completion choices")}
		return false
	}
	loggerpkg.Debug(s.verbose, s.logger, "stream completed", map[string]any{
		"fragments":     s.count,
		"finish_reason": s.acc.Choices[0].FinishReason,
	})
	return false
}

// Current returns the fragment read by the last successful Next.
func (s *Stream) Current() chat.Fragment { return s.cur }

// Err returns the error that stopped the stream, if any.
func (s *Stream) Err() error { return s.err }

// Close releases the connection and the timeout.
func (s *Stream) Close() error {
	defer s.cancel()
	return s.stream.Close()
}

func fragmentFrom(chunk openai.ChatCompletionChunk) chat.Fragment {
	f := chat.Fragment{
		ID:      chunk.ID,
		Model:   chunk.Model,
		Created: chunk.Created,
	}
	if len(chunk.Choices) > 0 {
		choice := chunk.Choices[0]
		f.Role = chat.Role(choice.Delta.Role)
		f.Content = choice.Delta.Content
		f.FinishReason = choice.FinishReason
		f.Done = choice.FinishReason != ""
	}
	f.Usage = usageFrom(chunk.Usage)
	return f
}
