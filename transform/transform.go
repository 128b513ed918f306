// Package transform implements the text-transformation capability the
// assembly-line rewriter invokes: a narrow interface over an LLM provider,
// with rate limiting and a recording test double.
package transform

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Constraints bound what a station's transformation may do to the text.
type Constraints struct {
	PreserveCodeSpans    bool
	PreserveHeadingLevel bool
	MaxLengthRatio       float64 // 0 means no cap; default 1.3 applied by caller
}

// Result is the outcome of one transformation call.
type Result struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Transformer is the narrow capability a rewrite station depends on.
type Transformer interface {
	Transform(ctx context.Context, instruction, text string, c Constraints) (Result, error)
}

// OpenAIOption configures an OpenAIClient.
type OpenAIOption func(*openaiConfig)

type openaiConfig struct {
	model   string
	apiKey  string
	baseURL string
	timeout time.Duration
}

// WithModel sets the model name (default "gpt-4o").
func WithModel(model string) OpenAIOption { return func(c *openaiConfig) { c.model = model } }

// WithAPIKey sets the API key; empty defers to OPENAI_API_KEY.
func WithAPIKey(key string) OpenAIOption { return func(c *openaiConfig) { c.apiKey = key } }

// WithBaseURL points at any OpenAI-compatible endpoint, including a local
// model server.
func WithBaseURL(url string) OpenAIOption { return func(c *openaiConfig) { c.baseURL = url } }

// WithTimeout sets the per-request timeout (default 30s, matching the
// per-station budget).
func WithTimeout(d time.Duration) OpenAIOption { return func(c *openaiConfig) { c.timeout = d } }

// OpenAIClient implements Transformer against the OpenAI chat completions
// API (or any compatible endpoint), rate-limited with
// golang.org/x/time/rate so a burst of stations never starves the
// underlying API.
type OpenAIClient struct {
	client  openai.Client
	model   string
	limiter *rate.Limiter
}

// NewOpenAIClient builds an OpenAIClient. ratePerMinute bounds outbound
// requests; 0 means unlimited.
func NewOpenAIClient(ratePerMinute int, opts ...OpenAIOption) *OpenAIClient {
	cfg := openaiConfig{model: "gpt-4o", timeout: 30 * time.Second}
	for _, o := range opts {
		o(&cfg)
	}

	var clientOpts []option.RequestOption
	if cfg.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.apiKey))
	}
	if cfg.baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		clientOpts = append(clientOpts, option.WithRequestTimeout(cfg.timeout))
	}

	var limiter *rate.Limiter
	if ratePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(ratePerMinute)/60.0), ratePerMinute)
	}

	return &OpenAIClient{
		client:  openai.NewClient(clientOpts...),
		model:   cfg.model,
		limiter: limiter,
	}
}

// Transform sends instruction and text as a chat completion request and
// returns the rewritten text.
func (c *OpenAIClient) Transform(ctx context.Context, instruction, text string, constraints Constraints) (Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("transform: rate limit wait: %w", err)
		}
	}

	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(instruction),
			openai.UserMessage(text),
		},
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("transform: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Result{}, fmt.Errorf("transform: no choices returned")
	}

	out := completion.Choices[0].Message.Content
	if constraints.MaxLengthRatio > 0 && len(text) > 0 {
		maxLen := int(float64(len(text)) * constraints.MaxLengthRatio)
		if len(out) > maxLen {
			out = out[:maxLen]
		}
	}

	return Result{
		Text:             out,
		PromptTokens:     int(completion.Usage.PromptTokens),
		CompletionTokens: int(completion.Usage.CompletionTokens),
	}, nil
}

// RecordingTransformer is a deterministic test double: it records every
// call and returns a configured canned response, mirroring the teacher's
// test-seam pattern for Provider.
type RecordingTransformer struct {
	Response Result
	Err      error
	Calls    []RecordedCall
}

// RecordedCall captures one Transform invocation's arguments.
type RecordedCall struct {
	Instruction string
	Text        string
	Constraints Constraints
}

// Transform records the call and returns the configured canned result.
func (r *RecordingTransformer) Transform(ctx context.Context, instruction, text string, c Constraints) (Result, error) {
	r.Calls = append(r.Calls, RecordedCall{Instruction: instruction, Text: text, Constraints: c})
	if r.Err != nil {
		return Result{}, r.Err
	}
	if r.Response.Text == "" {
		return Result{Text: text}, nil
	}
	return r.Response, nil
}
