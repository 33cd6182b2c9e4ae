// Package openaiclient implements the modelapi.ModelClient contract for the
// OpenAI API, wrapping github.com/sashabaranov/go-openai. It shapes the
// request payload (the "input"/"messages" keys), dispatches on the model-type
// tag, and retries transient failures under a cumulative time budget; the
// transport, auth headers, and response parsing belong to the SDK.
package openaiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	openai "github.com/sashabaranov/go-openai"

	"github.com/MaTriXy/modelbridge/modelapi"
)

// ProviderName identifies this client in registries and provider errors.
const ProviderName = "openai"

// Config is the environment-driven client configuration.
type Config struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	OrgID   string `env:"OPENAI_ORG_ID"`
}

// Client adapts the OpenAI SDK to the modelapi.ModelClient contract. It holds
// one eagerly-created handle for the blocking path and one lazily-created
// handle for the asynchronous path; both are write-once.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      modelapi.RetryPolicy

	syncClient *openai.Client

	asyncOnce   sync.Once
	asyncClient *openai.Client
	asyncErr    error
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sets the credential explicitly, overriding the environment.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.cfg.APIKey = key
	}
}

// WithBaseURL points the client at an alternate API endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.cfg.BaseURL = url
	}
}

// WithOrgID sets the OpenAI organization id.
func WithOrgID(org string) Option {
	return func(c *Client) {
		c.cfg.OrgID = org
	}
}

// WithHTTPClient sets the underlying HTTP client for both handles.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p modelapi.RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p
	}
}

// New creates a Client. Configuration is read from the environment first
// (OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_ORG_ID); options override whatever
// the environment set. A missing credential is a ConfigurationError raised
// here, before any network use. The synchronous handle is created eagerly,
// the asynchronous one on first CallAsync.
func New(opts ...Option) (*Client, error) {
	c := &Client{retry: modelapi.DefaultRetryPolicy()}
	if err := env.Parse(&c.cfg); err != nil {
		return nil, &modelapi.ConfigurationError{ClientError: modelapi.ClientError{
			Message: "invalid environment configuration",
			Cause:   err,
		}}
	}
	for _, opt := range opts {
		opt(c)
	}

	handle, err := c.newHandle()
	if err != nil {
		return nil, err
	}
	c.syncClient = handle
	return c, nil
}

// newHandle builds one SDK handle from the current configuration. It
// re-validates the credential so the lazy async path fails the same way
// construction does.
func (c *Client) newHandle() (*openai.Client, error) {
	if c.cfg.APIKey == "" {
		return nil, &modelapi.ConfigurationError{ClientError: modelapi.ClientError{
			Message: "environment variable OPENAI_API_KEY must be set",
		}}
	}
	sdkCfg := openai.DefaultConfig(c.cfg.APIKey)
	if c.cfg.BaseURL != "" {
		sdkCfg.BaseURL = c.cfg.BaseURL
	}
	if c.cfg.OrgID != "" {
		sdkCfg.OrgID = c.cfg.OrgID
	}
	if c.httpClient != nil {
		sdkCfg.HTTPClient = c.httpClient
	}
	return openai.NewClientWithConfig(sdkCfg), nil
}

// Provider returns the provider identifier.
func (c *Client) Provider() string {
	return ProviderName
}

// BuildRequest converts generic input plus caller options into the OpenAI
// argument set. The result is a fresh mapping; baseOptions is never mutated.
func (c *Client) BuildRequest(input any, baseOptions modelapi.CallArguments, modelType modelapi.ModelType) (modelapi.CallArguments, error) {
	args := baseOptions.Clone()

	switch modelType {
	case modelapi.ModelTypeEmbedder:
		if s, ok := input.(string); ok {
			input = []string{s}
		}
		if !isSequence(input) {
			return nil, &modelapi.InvalidInputError{ClientError: modelapi.ClientError{
				Message: "input must be a sequence of text",
			}}
		}
		args["input"] = input
	case modelapi.ModelTypeLLM:
		if !isSequence(input) {
			return nil, &modelapi.InvalidInputError{ClientError: modelapi.ClientError{
				Message: "input must be a sequence of messages",
			}}
		}
		args["messages"] = input
	default:
		return nil, modelapi.NewUnsupportedModelTypeError(modelType)
	}
	return args, nil
}

// Call dispatches one call on the synchronous handle, blocking the caller's
// goroutine, with transient failures retried under the configured budget.
// The returned value is the SDK's native response, unmodified.
func (c *Client) Call(ctx context.Context, args modelapi.CallArguments, modelType modelapi.ModelType) (any, error) {
	return modelapi.Retry(ctx, c.retry, func(ctx context.Context) (any, error) {
		return c.dispatch(ctx, c.syncClient, args, modelType)
	})
}

// CallAsync dispatches the same call off the caller's goroutine. The channel
// yields exactly one result and is closed. The asynchronous handle is created
// on first use, at most once.
func (c *Client) CallAsync(ctx context.Context, args modelapi.CallArguments, modelType modelapi.ModelType) <-chan modelapi.CallResult {
	out := make(chan modelapi.CallResult, 1)
	go func() {
		defer close(out)
		handle, err := c.ensureAsyncClient()
		if err != nil {
			out <- modelapi.CallResult{Err: err}
			return
		}
		resp, err := modelapi.Retry(ctx, c.retry, func(ctx context.Context) (any, error) {
			return c.dispatch(ctx, handle, args, modelType)
		})
		out <- modelapi.CallResult{Response: resp, Err: err}
	}()
	return out
}

// ensureAsyncClient constructs the asynchronous handle exactly once.
func (c *Client) ensureAsyncClient() (*openai.Client, error) {
	c.asyncOnce.Do(func() {
		c.asyncClient, c.asyncErr = c.newHandle()
	})
	return c.asyncClient, c.asyncErr
}

// dispatch selects the SDK endpoint by model type and passes args verbatim as
// the request's named options.
func (c *Client) dispatch(ctx context.Context, handle *openai.Client, args modelapi.CallArguments, modelType modelapi.ModelType) (any, error) {
	switch modelType {
	case modelapi.ModelTypeEmbedder:
		var req openai.EmbeddingRequest
		if err := decodeArguments(args, &req); err != nil {
			return nil, err
		}
		resp, err := handle.CreateEmbeddings(ctx, req)
		if err != nil {
			return nil, translateError(err)
		}
		return &resp, nil
	case modelapi.ModelTypeLLM:
		var req openai.ChatCompletionRequest
		if err := decodeArguments(args, &req); err != nil {
			return nil, err
		}
		resp, err := handle.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, translateError(err)
		}
		return &resp, nil
	default:
		return nil, modelapi.NewUnsupportedModelTypeError(modelType)
	}
}

// decodeArguments maps the named options onto the SDK's typed request through
// their shared JSON form.
func decodeArguments(args modelapi.CallArguments, dst any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return &modelapi.InvalidInputError{ClientError: modelapi.ClientError{
			Message: "call arguments are not serializable",
			Cause:   err,
		}}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &modelapi.InvalidInputError{ClientError: modelapi.ClientError{
			Message: fmt.Sprintf("call arguments do not match the %T request shape", dst),
			Cause:   err,
		}}
	}
	return nil
}

// isSequence reports whether v is a slice or array.
func isSequence(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}
