package gollmclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teilomillet/gollm"
	gollmllm "github.com/teilomillet/gollm/llm"

	"github.com/MaTriXy/modelbridge/modelapi"
)

// stubLLM answers Generate with the model option in effect at generation
// time. Methods not overridden here panic if reached.
type stubLLM struct {
	gollm.LLM

	mu      sync.Mutex
	options map[string]any
}

func newStubLLM() *stubLLM { return &stubLLM{options: make(map[string]any)} }

func (s *stubLLM) SetOption(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options[key] = value
}

func (s *stubLLM) Generate(ctx context.Context, prompt *gollm.Prompt, opts ...gollmllm.GenerateOption) (string, error) {
	time.Sleep(5 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	model, _ := s.options["model"].(string)
	return "echo:" + model, nil
}

func TestBuildRequestMessages(t *testing.T) {
	c := NewFromLLM("openai", nil)
	messages := []modelapi.Message{
		modelapi.SystemMessage("be brief"),
		modelapi.UserMessage("hello"),
	}

	args, err := c.BuildRequest(messages, modelapi.CallArguments{"model": "gpt-5.2-mini"}, modelapi.ModelTypeLLM)
	require.NoError(t, err)
	assert.Equal(t, messages, args["messages"])
	assert.Equal(t, "gpt-5.2-mini", args["model"])
}

func TestBuildRequestDoesNotMutateBaseOptions(t *testing.T) {
	c := NewFromLLM("openai", nil)
	base := modelapi.CallArguments{"temperature": 0.3}

	_, err := c.BuildRequest([]modelapi.Message{modelapi.UserMessage("hi")}, base, modelapi.ModelTypeLLM)
	require.NoError(t, err)
	assert.Equal(t, modelapi.CallArguments{"temperature": 0.3}, base)
}

func TestBuildRequestEmbedderUnsupported(t *testing.T) {
	c := NewFromLLM("openai", nil)
	_, err := c.BuildRequest([]string{"x"}, nil, modelapi.ModelTypeEmbedder)
	var unsupported *modelapi.UnsupportedModelTypeError
	require.ErrorAs(t, err, &unsupported)
}

func TestBuildRequestRejectsNonSequence(t *testing.T) {
	c := NewFromLLM("openai", nil)
	_, err := c.BuildRequest("not a sequence", nil, modelapi.ModelTypeLLM)
	var invalid *modelapi.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestCallUnsupportedModelType(t *testing.T) {
	c := NewFromLLM("openai", nil)
	_, err := c.Call(context.Background(), modelapi.CallArguments{}, modelapi.ModelTypeEmbedder)
	var unsupported *modelapi.UnsupportedModelTypeError
	require.ErrorAs(t, err, &unsupported)
}

func TestCallConcurrentModelOverridesIsolated(t *testing.T) {
	c := NewFromLLM("openai", newStubLLM())

	const calls = 8
	results := make([]string, calls)
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := c.Call(context.Background(), modelapi.CallArguments{
				"model":    fmt.Sprintf("model-%d", i),
				"messages": []modelapi.Message{modelapi.UserMessage("hi")},
			}, modelapi.ModelTypeLLM)
			if !assert.NoError(t, err) {
				return
			}
			results[i] = resp.(string)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, fmt.Sprintf("echo:model-%d", i), got, "call %d saw another call's model", i)
	}
}

func TestCallAsyncUnsupportedModelType(t *testing.T) {
	c := NewFromLLM("openai", nil)
	res, ok := <-c.CallAsync(context.Background(), modelapi.CallArguments{}, modelapi.ModelTypeUndefined)
	require.True(t, ok)
	var unsupported *modelapi.UnsupportedModelTypeError
	require.ErrorAs(t, res.Err, &unsupported)
}

func TestNormalizeMessagesFromMaps(t *testing.T) {
	got, err := normalizeMessages([]map[string]any{
		{"role": "system", "content": "be brief"},
		{"role": "user", "content": "hello"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, modelapi.RoleSystem, got[0].Role)
	assert.Equal(t, "hello", got[1].Content)
}

func TestNormalizeMessagesRejectsNonSequence(t *testing.T) {
	for _, input := range []any{nil, "text", 12, map[string]any{"role": "user"}} {
		_, err := normalizeMessages(input)
		var invalid *modelapi.InvalidInputError
		require.ErrorAs(t, err, &invalid, "input %v", input)
	}
}

func TestBuildPrompt(t *testing.T) {
	c := NewFromLLM("openai", nil)
	prompt, err := c.buildPrompt(modelapi.CallArguments{
		"messages": []modelapi.Message{
			modelapi.SystemMessage("be brief"),
			modelapi.UserMessage("hello"),
			modelapi.AssistantMessage("hi"),
			modelapi.UserMessage("how are you"),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, prompt)
}

func TestBuildPromptMissingMessages(t *testing.T) {
	c := NewFromLLM("openai", nil)
	_, err := c.buildPrompt(modelapi.CallArguments{})
	var invalid *modelapi.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}

func TestTranslateErrorClassification(t *testing.T) {
	cases := []struct {
		msg       string
		retryable bool
	}{
		{"429: rate limit exceeded", true},
		{"internal server error", true},
		{"request timed out", true},
		{"401 unauthorized", false},
		{"model not found", false},
		{"forbidden", false},
	}
	for _, c := range cases {
		err := translateError("openai", fakeErr(c.msg))
		require.Error(t, err, c.msg)
		assert.Equal(t, c.retryable, modelapi.IsRetryable(err), c.msg)
	}
}

func TestTranslateErrorUnknownUnchanged(t *testing.T) {
	orig := errors.New("some novel failure")
	err := translateError("openai", orig)
	assert.Same(t, orig, err)
	assert.False(t, modelapi.IsRetryable(err))
}

func fakeErr(msg string) error { return errors.New(msg) }
