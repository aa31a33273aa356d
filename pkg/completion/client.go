// Package completion encodes conversations into chat completion requests and
// performs them, either as one blocking call or as a pull-based stream.
package completion

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/minhyannv/cogni/pkg/chat"
	loggerpkg "github.com/minhyannv/cogni/pkg/logger"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// DefaultTimeout bounds a call when Config.Timeout is unset.
const DefaultTimeout = 60 * time.Second

// RequestIDHeader carries the per-invocation request id.
const RequestIDHeader = "X-Request-Id"

// Config holds what the client needs to reach the endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Verbose bool
}

// Option configures optional client dependencies.
type Option func(*clientDeps)

type clientDeps struct {
	logger     loggerpkg.Logger
	httpClient *http.Client
	requestID  string
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *clientDeps) {
		d.logger = l
	}
}

// WithHTTPClient replaces the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(d *clientDeps) {
		d.httpClient = hc
	}
}

// WithRequestID fixes the request id instead of generating one.
func WithRequestID(id string) Option {
	return func(d *clientDeps) {
		d.requestID = id
	}
}

// Client performs chat completion calls.
type Client struct {
	client    openai.Client
	timeout   time.Duration
	requestID string
	logger    loggerpkg.Logger
	verbose   bool
}

// New builds a Client. Retries are disabled: every failure is terminal.
func New(cfg Config, opts ...Option) (*Client, error) {
	deps := clientDeps{logger: loggerpkg.NopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(&deps)
		}
	}
	if cfg.APIKey == "" {
		return nil, errors.New("APIKey is not set")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if deps.requestID == "" {
		deps.requestID = uuid.NewString()
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHeader(RequestIDHeader, deps.requestID),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if deps.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(deps.httpClient))
	}

	loggerpkg.Debug(cfg.Verbose, deps.logger, "completion client init", map[string]any{
		"base_url":   cfg.BaseURL,
		"timeout":    cfg.Timeout.String(),
		"request_id": deps.requestID,
	})

	return &Client{
		client:    openai.NewClient(reqOpts...),
		timeout:   cfg.Timeout,
		requestID: deps.requestID,
		logger:    deps.logger,
		verbose:   cfg.Verbose,
	}, nil
}

// RequestID returns the id sent with every request of this client.
func (c *Client) RequestID() string { return c.requestID }

// Complete performs one blocking call and returns the first choice.
func (c *Client) Complete(ctx context.Context, params openai.ChatCompletionNewParams) (chat.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logRequest(params, false)
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return chat.Reply{}, classify(ctx, err)
	}
	if len(completion.Choices) == 0 {
		return chat.Reply{}, &Error{Kind: KindDecode, Err: errors.New("empty completion choices")}
	}
	loggerpkg.Debug(c.verbose, c.logger, "completion received", map[string]any{
		"id":            completion.ID,
		"choices":       len(completion.Choices),
		"finish_reason": completion.Choices[0].FinishReason,
	})
	return replyFrom(completion), nil
}

// Stream starts a streaming call. Nothing is read until Next is called, and
// the timeout covers the whole stream. Callers must Close the stream.
func (c *Client) Stream(ctx context.Context, params openai.ChatCompletionNewParams) *Stream {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	c.logRequest(params, true)
	return &Stream{
		stream:  c.client.Chat.Completions.NewStreaming(ctx, params),
		ctx:     ctx,
		cancel:  cancel,
		logger:  c.logger,
		verbose: c.verbose,
	}
}

func (c *Client) logRequest(params openai.ChatCompletionNewParams, stream bool) {
	loggerpkg.Debug(c.verbose, c.logger, "sending request", map[string]any{
		"model":      params.Model,
		"messages":   len(params.Messages),
		"stream":     stream,
		"request_id": c.requestID,
	})
}

func replyFrom(completion *openai.ChatCompletion) chat.Reply {
	choice := completion.Choices[0]
	role := chat.Role(choice.Message.Role)
	if role == "" {
		role = chat.RoleAssistant
	}
	return chat.Reply{
		ID:           completion.ID,
		Model:        completion.Model,
		Created:      completion.Created,
		Role:         role,
		Content:      choice.Message.Content,
		FinishReason: choice.FinishReason,
		Usage:        usageFrom(completion.Usage),
	}
}

func usageFrom(u openai.CompletionUsage) *chat.Usage {
	if u.TotalTokens == 0 && u.PromptTokens == 0 && u.CompletionTokens == 0 {
		return nil
	}
	return &chat.Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
