// Package render writes replies and fragment streams to an output stream.
package render

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/minhyannv/cogni/pkg/chat"
	loggerpkg "github.com/minhyannv/cogni/pkg/logger"
)

// Error wraps a failure to write output. BrokenPipe is set when the reader
// went away early.
type Error struct {
	Err        error
	BrokenPipe bool
}

func (e *Error) Error() string {
	if e.BrokenPipe {
		return "output closed by reader"
	}
	return fmt.Sprintf("write output: %v", e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FragmentSource is a pull-based sequence of reply fragments.
type FragmentSource interface {
	Next() bool
	Current() chat.Fragment
	Err() error
}

// Renderer encodes replies in one Format.
type Renderer struct {
	w       *bufio.Writer
	format  Format
	pretty  bool
	logger  loggerpkg.Logger
	verbose bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithPretty indents JSON documents.
func WithPretty(pretty bool) Option {
	return func(r *Renderer) { r.pretty = pretty }
}

// WithLogger injects a logger for diagnostics.
func WithLogger(l loggerpkg.Logger, verbose bool) Option {
	return func(r *Renderer) {
		r.logger = l
		r.verbose = verbose
	}
}

// New returns a Renderer writing to w.
func New(w io.Writer, format Format, opts ...Option) *Renderer {
	r := &Renderer{
		w:      bufio.NewWriter(w),
		format: format,
		logger: loggerpkg.NopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// RenderReply writes one complete reply.
func (r *Renderer) RenderReply(reply chat.Reply) error {
	r.checkFinish(reply.FinishReason)

	switch r.format {
	case FormatJSON:
		if err := r.writeJSON(reply, r.pretty); err != nil {
			return err
		}
	case FormatNDJSON:
		if err := r.writeJSON(fragmentOf(reply), false); err != nil {
			return err
		}
	default:
		if err := r.writeString(reply.Content); err != nil {
			return err
		}
		if !strings.HasSuffix(reply.Content, "\n") {
			if err := r.writeString("\n"); err != nil {
				return err
			}
		}
	}
	return r.flush()
}

// RenderStream drains src. Text and NDJSON output is flushed per fragment;
// JSON output is written once the stream is fully drained. An error from src
// is returned unchanged and anything already flushed stays written.
func (r *Renderer) RenderStream(src FragmentSource) error {
	switch r.format {
	case FormatJSON:
		return r.streamJSON(src)
	case FormatNDJSON:
		return r.streamNDJSON(src)
	}
	return r.streamText(src)
}

func (r *Renderer) streamText(src FragmentSource) error {
	endsWithNewline := false
	finish := ""
	for src.Next() {
		f := src.Current()
		if f.FinishReason != "" {
			finish = f.FinishReason
		}
		if f.Content == "" {
			continue
		}
		if err := r.writeString(f.Content); err != nil {
			return err
		}
		if err := r.flush(); err != nil {
			return err
		}
		endsWithNewline = strings.HasSuffix(f.Content, "\n")
	}
	if err := src.Err(); err != nil {
		return err
	}
	r.checkFinish(finish)
	if !endsWithNewline {
		if err := r.writeString("\n"); err != nil {
			return err
		}
	}
	return r.flush()
}

func (r *Renderer) streamNDJSON(src FragmentSource) error {
	count := 0
	finish := ""
	for src.Next() {
		f := src.Current()
		count++
		if f.FinishReason != "" {
			finish = f.FinishReason
		}
		if err := r.writeJSON(f, false); err != nil {
			return err
		}
		if err := r.flush(); err != nil {
			return err
		}
	}
	if err := src.Err(); err != nil {
		return err
	}
	loggerpkg.Debug(r.verbose, r.logger, "stream rendered", map[string]any{"fragments": count})
	r.checkFinish(finish)
	return nil
}

func (r *Renderer) streamJSON(src FragmentSource) error {
	var acc chat.Accumulator
	for src.Next() {
		acc.Add(src.Current())
	}
	if err := src.Err(); err != nil {
		return err
	}
	loggerpkg.Debug(r.verbose, r.logger, "stream assembled", map[string]any{"fragments": acc.Count()})
	return r.RenderReply(acc.Reply())
}

func (r *Renderer) writeJSON(v any, pretty bool) error {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return &Error{Err: fmt.Errorf("encode reply: %w", err)}
	}
	return r.writeString(buf.String())
}

func (r *Renderer) writeString(s string) error {
	if _, err := r.w.WriteString(s); err != nil {
		return wrapWriteErr(err)
	}
	return nil
}

func (r *Renderer) flush() error {
	if err := r.w.Flush(); err != nil {
		return wrapWriteErr(err)
	}
	return nil
}

func (r *Renderer) checkFinish(reason string) {
	if reason == chat.FinishReasonLength {
		loggerpkg.Warn(r.logger, "reply truncated by token limit", map[string]any{"finish_reason": reason})
	}
}

func wrapWriteErr(err error) error {
	return &Error{Err: err, BrokenPipe: errors.Is(err, syscall.EPIPE)}
}

func fragmentOf(reply chat.Reply) chat.Fragment {
	return chat.Fragment{
		ID:           reply.ID,
		Model:        reply.Model,
		Created:      reply.Created,
		Role:         reply.Role,
		Content:      reply.Content,
		FinishReason: reply.FinishReason,
		Usage:        reply.Usage,
		Done:         true,
	}
}
