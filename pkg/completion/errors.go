package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/openai/openai-go"
	"github.com/tidwall/gjson"
)

// Kind classifies client failures.
type Kind int

const (
	KindTimeout Kind = iota + 1
	KindTransport
	KindRemoteRejected
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindTransport:
		return "transport"
	case KindRemoteRejected:
		return "remote rejected"
	case KindDecode:
		return "decode"
	}
	return "unknown"
}

// Error is returned by Client calls. None of these are retried.
type Error struct {
	Kind Kind
	// StatusCode, Message and Body are set for KindRemoteRejected.
	StatusCode int
	Message    string
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("request timed out: %v", e.Err)
	case KindTransport:
		return fmt.Sprintf("failed to fetch: %v", e.Err)
	case KindRemoteRejected:
		detail := e.Message
		if detail == "" {
			detail = strings.TrimSpace(e.Body)
		}
		return fmt.Sprintf("remote rejected request (%d %s): %s", e.StatusCode, http.StatusText(e.StatusCode), detail)
	case KindDecode:
		return fmt.Sprintf("unexpected response: %v", e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// parseErrorPrefix is how openai-go wraps a response body it cannot decode.
const parseErrorPrefix = "error parsing response json"

// classify maps an openai-go or transport error onto the Error taxonomy. ctx
// is the bounded request context. Decode failures are recognised before the
// transport sentinels: a truncated body wraps io.ErrUnexpectedEOF too.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if errors.As(err, &already) {
		return err
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		body := apiErr.RawJSON()
		return &Error{
			Kind:       KindRemoteRejected,
			StatusCode: apiErr.StatusCode,
			Message:    remoteMessage(apiErr.Message, body),
			Body:       body,
			Err:        err,
		}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	if isDecodeError(err) {
		return &Error{Kind: KindDecode, Err: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return &Error{Kind: KindTimeout, Err: err}
		}
		return &Error{Kind: KindTransport, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return &Error{Kind: KindTimeout, Err: err}
		}
		return &Error{Kind: KindTransport, Err: err}
	}
	// A stream body cut off mid-read surfaces as a bare unexpected EOF.
	if errors.Is(err, context.Canceled) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &Error{Kind: KindTransport, Err: err}
	}
	return &Error{Kind: KindDecode, Err: err}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		strings.Contains(err.Error(), parseErrorPrefix)
}

// remoteMessage prefers the message parsed by the SDK and falls back to the
// usual {"error":{"message":...}} envelope.
func remoteMessage(parsed, body string) string {
	if parsed != "" {
		return parsed
	}
	for _, path := range []string{"error.message", "message", "error"} {
		if v := gjson.Get(body, path); v.Exists() && v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}
