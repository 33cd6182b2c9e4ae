// Package gollmclient implements the modelapi.ModelClient contract on top of
// the gollm library (github.com/teilomillet/gollm). It is chat-only: the
// embedder model type is rejected, and the native response delivered to
// callers is the generated text.
package gollmclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/teilomillet/gollm"

	"github.com/MaTriXy/modelbridge/modelapi"
)

// Client adapts a gollm.LLM to the modelapi.ModelClient contract.
type Client struct {
	provider string
	llm      gollm.LLM
	retry    modelapi.RetryPolicy

	// callMu serializes calls: per-call overrides mutate the shared gollm
	// instance via SetOption, so unserialized concurrent calls would
	// cross-contaminate model and temperature.
	callMu sync.Mutex
}

// Option configures a Client.
type Option func(*config)

type config struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	retry       modelapi.RetryPolicy
	extraOpts   []gollm.ConfigOption
}

// WithModel sets the default model.
func WithModel(model string) Option {
	return func(c *config) {
		c.model = model
	}
}

// WithMaxTokens sets the default max tokens.
func WithMaxTokens(n int) Option {
	return func(c *config) {
		c.maxTokens = n
	}
}

// WithTemperature sets the default temperature.
func WithTemperature(t float64) Option {
	return func(c *config) {
		c.temperature = t
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p modelapi.RetryPolicy) Option {
	return func(c *config) {
		c.retry = p
	}
}

// WithGollmOptions adds extra gollm configuration options.
func WithGollmOptions(opts ...gollm.ConfigOption) Option {
	return func(c *config) {
		c.extraOpts = append(c.extraOpts, opts...)
	}
}

// New creates a Client for the given gollm provider. If apiKey is empty,
// gollm reads the provider's credential from the environment; a missing
// credential surfaces as a ConfigurationError.
func New(provider, apiKey string, opts ...Option) (*Client, error) {
	cfg := &config{
		apiKey:      apiKey,
		maxTokens:   4096,
		temperature: 0.7,
		retry:       modelapi.DefaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	model := cfg.model
	if model == "" {
		model = defaultModelFor(provider)
	}

	gollmOpts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(model),
		gollm.SetMaxTokens(cfg.maxTokens),
		gollm.SetTemperature(cfg.temperature),
		gollm.SetMaxRetries(0), // retry is owned by this layer
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if cfg.apiKey != "" {
		gollmOpts = append(gollmOpts, gollm.SetAPIKey(cfg.apiKey))
	}
	gollmOpts = append(gollmOpts, cfg.extraOpts...)

	llm, err := gollm.NewLLM(gollmOpts...)
	if err != nil {
		return nil, &modelapi.ConfigurationError{ClientError: modelapi.ClientError{
			Message: fmt.Sprintf("failed to configure gollm for provider %s", provider),
			Cause:   err,
		}}
	}

	return &Client{provider: provider, llm: llm, retry: cfg.retry}, nil
}

// NewFromLLM wraps an existing gollm.LLM instance.
func NewFromLLM(provider string, llm gollm.LLM) *Client {
	return &Client{provider: provider, llm: llm, retry: modelapi.DefaultRetryPolicy()}
}

func defaultModelFor(provider string) string {
	switch provider {
	case "anthropic":
		return "claude-sonnet-4-5"
	default:
		return "gpt-5.2-mini"
	}
}

// Provider returns the provider identifier.
func (c *Client) Provider() string {
	return c.provider
}

// BuildRequest stores a message sequence under "messages". The embedder tag
// is rejected: gollm backs only the chat path here.
func (c *Client) BuildRequest(input any, baseOptions modelapi.CallArguments, modelType modelapi.ModelType) (modelapi.CallArguments, error) {
	if modelType != modelapi.ModelTypeLLM {
		return nil, modelapi.NewUnsupportedModelTypeError(modelType)
	}
	args := baseOptions.Clone()
	messages, err := normalizeMessages(input)
	if err != nil {
		return nil, err
	}
	args["messages"] = messages
	return args, nil
}

// Call flattens the message sequence into a gollm prompt and generates,
// retrying transient failures under the configured budget. The native
// response is the generated text. Calls sharing a Client are serialized so
// per-call overrides apply to exactly one generation.
func (c *Client) Call(ctx context.Context, args modelapi.CallArguments, modelType modelapi.ModelType) (any, error) {
	if modelType != modelapi.ModelTypeLLM {
		return nil, modelapi.NewUnsupportedModelTypeError(modelType)
	}

	prompt, err := c.buildPrompt(args)
	if err != nil {
		return nil, err
	}

	c.callMu.Lock()
	defer c.callMu.Unlock()
	c.applyCallOptions(args)

	return modelapi.Retry(ctx, c.retry, func(ctx context.Context) (any, error) {
		text, err := c.llm.Generate(ctx, prompt)
		if err != nil {
			return nil, translateError(c.provider, err)
		}
		return text, nil
	})
}

// CallAsync mirrors Call off the caller's goroutine; the channel yields
// exactly one result and is closed.
func (c *Client) CallAsync(ctx context.Context, args modelapi.CallArguments, modelType modelapi.ModelType) <-chan modelapi.CallResult {
	out := make(chan modelapi.CallResult, 1)
	go func() {
		defer close(out)
		resp, err := c.Call(ctx, args, modelType)
		out <- modelapi.CallResult{Response: resp, Err: err}
	}()
	return out
}

// buildPrompt folds the "messages" argument into a single gollm prompt:
// system messages become the system prompt, the rest are joined in order.
func (c *Client) buildPrompt(args modelapi.CallArguments) (*gollm.Prompt, error) {
	messages, err := normalizeMessages(args["messages"])
	if err != nil {
		return nil, err
	}

	var systemParts, userParts []string
	for _, msg := range messages {
		switch msg.Role {
		case modelapi.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case modelapi.RoleAssistant:
			if msg.Content != "" {
				userParts = append(userParts, "[Assistant]: "+msg.Content)
			}
		default:
			userParts = append(userParts, msg.Content)
		}
	}

	promptText := strings.Join(userParts, "\n")
	var promptOpts []gollm.PromptOption
	if len(systemParts) > 0 {
		promptOpts = append(promptOpts, gollm.WithSystemPrompt(strings.Join(systemParts, "\n"), gollm.CacheTypeEphemeral))
	}
	return gollm.NewPrompt(promptText, promptOpts...), nil
}

// applyCallOptions forwards per-call named options to gollm.
func (c *Client) applyCallOptions(args modelapi.CallArguments) {
	if model, ok := args["model"].(string); ok && model != "" {
		c.llm.SetOption("model", model)
	}
	if temp, ok := args["temperature"].(float64); ok {
		c.llm.SetOption("temperature", temp)
	}
	switch mt := args["max_tokens"].(type) {
	case int:
		c.llm.SetOption("max_tokens", mt)
	case float64:
		c.llm.SetOption("max_tokens", int(mt))
	}
}

// normalizeMessages accepts []modelapi.Message directly or any slice whose
// JSON form matches it (e.g. []map[string]any from decoded configuration).
func normalizeMessages(input any) ([]modelapi.Message, error) {
	switch v := input.(type) {
	case []modelapi.Message:
		return v, nil
	case nil:
		return nil, &modelapi.InvalidInputError{ClientError: modelapi.ClientError{
			Message: "input must be a sequence of messages",
		}}
	}

	raw, err := json.Marshal(input)
	if err != nil || len(raw) == 0 || raw[0] != '[' {
		return nil, &modelapi.InvalidInputError{ClientError: modelapi.ClientError{
			Message: "input must be a sequence of messages",
			Cause:   err,
		}}
	}
	var messages []modelapi.Message
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, &modelapi.InvalidInputError{ClientError: modelapi.ClientError{
			Message: "input must be a sequence of messages",
			Cause:   err,
		}}
	}
	return messages, nil
}
