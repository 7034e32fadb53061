// Package llm talks to an Ollama-compatible text generation server.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/panbanda/probe/pkg/config"
	"github.com/panbanda/probe/pkg/generator"
)

// ErrUnavailable is returned when the server cannot be reached or answers
// with a non-success status.
var ErrUnavailable = errors.New("model server unavailable")

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "phi"

	probeTimeout = 2 * time.Second
)

// Client is a generator.TextGenerator backed by the Ollama HTTP API.
type Client struct {
	http  *resty.Client
	model string
	log   hclog.Logger
}

var _ generator.TextGenerator = (*Client)(nil)

type clientOptions struct {
	baseURL    string
	model      string
	timeout    time.Duration
	retryCount int
	logger     hclog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

// WithBaseURL sets the server address.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) {
		o.baseURL = u
	}
}

// WithModel sets the model name sent with every request.
func WithModel(m string) Option {
	return func(o *clientOptions) {
		o.model = m
	}
}

// WithTimeout bounds a single generation request.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithRetryCount sets how many times a failed request is retried.
func WithRetryCount(n int) Option {
	return func(o *clientOptions) {
		o.retryCount = n
	}
}

// WithLogger routes resty diagnostics to logger.
func WithLogger(l hclog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// New creates a client. Nothing is sent until Available or Generate is called.
func New(opts ...Option) *Client {
	o := &clientOptions{
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
		timeout: 120 * time.Second,
		logger:  hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}

	client := resty.New().
		SetBaseURL(o.baseURL).
		SetRetryCount(o.retryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetTimeout(o.timeout).
		SetHeader("Content-Type", "application/json")
	client.SetLogger(NewHclogAdapter(o.logger))

	return &Client{http: client, model: o.model, log: o.logger}
}

// NewFromConfig creates a client from the [llm] section.
func NewFromConfig(cfg config.LLMConfig, logger hclog.Logger) *Client {
	opts := []Option{WithRetryCount(cfg.RetryCount)}
	if cfg.URL != "" {
		opts = append(opts, WithBaseURL(cfg.URL))
	}
	if cfg.Model != "" {
		opts = append(opts, WithModel(cfg.Model))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(time.Duration(cfg.Timeout)*time.Second))
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger.Named("llm")))
	}
	return New(opts...)
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Available reports whether the server answers the tags endpoint within two
// seconds.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	resp, err := c.http.R().SetContext(ctx).Get("/api/tags")
	if err != nil {
		c.log.Debug("model server probe failed", "error", err)
		return false
	}
	return resp.IsSuccess()
}

// Models lists the model names installed on the server.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var tags tagsResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&tags).Get("/api/tags")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode())
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends a non-streaming completion request and returns the
// response text.
func (c *Client) Generate(ctx context.Context, prompt string, opts generator.ModelOptions) (string, error) {
	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(generateRequest{
			Model:  c.model,
			Prompt: prompt,
			Stream: false,
			Options: generateOptions{
				Temperature: opts.Temperature,
				NumPredict:  opts.MaxTokens,
			},
		}).
		SetResult(&out).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: status %d from %s", ErrUnavailable, resp.StatusCode(), c.model)
	}

	c.log.Debug("model response", "model", c.model, "chars", len(out.Response), "elapsed", resp.Time())
	return out.Response, nil
}
