package openaiclient

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/MaTriXy/modelbridge/modelapi"
)

// Chat is a typed convenience wrapper over BuildRequest and Call for chat
// completions. When opts names no model, the catalog default is used.
func (c *Client) Chat(ctx context.Context, messages []modelapi.Message, opts modelapi.CallArguments) (*openai.ChatCompletionResponse, error) {
	args, err := c.BuildRequest(messages, opts, modelapi.ModelTypeLLM)
	if err != nil {
		return nil, err
	}
	if _, ok := args["model"]; !ok {
		args["model"] = DefaultModel(modelapi.ModelTypeLLM)
	}

	resp, err := c.Call(ctx, args, modelapi.ModelTypeLLM)
	if err != nil {
		return nil, err
	}
	chat, ok := resp.(*openai.ChatCompletionResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected chat response type %T", resp)
	}
	return chat, nil
}

// Embed is the embedding counterpart of Chat. A single string input is
// accepted and normalized to a one-element sequence by BuildRequest.
func (c *Client) Embed(ctx context.Context, input any, opts modelapi.CallArguments) (*openai.EmbeddingResponse, error) {
	args, err := c.BuildRequest(input, opts, modelapi.ModelTypeEmbedder)
	if err != nil {
		return nil, err
	}
	if _, ok := args["model"]; !ok {
		args["model"] = DefaultModel(modelapi.ModelTypeEmbedder)
	}

	resp, err := c.Call(ctx, args, modelapi.ModelTypeEmbedder)
	if err != nil {
		return nil, err
	}
	emb, ok := resp.(*openai.EmbeddingResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected embedding response type %T", resp)
	}
	return emb, nil
}
