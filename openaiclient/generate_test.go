package openaiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaTriXy/modelbridge/modelapi"
)

func TestChatFillsDefaultModel(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, chatBody)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	resp, err := c.Chat(context.Background(), []modelapi.Message{modelapi.UserMessage("hi")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Choices[0].Message.Content)
	assert.Equal(t, DefaultModel(modelapi.ModelTypeLLM), gotBody["model"])
}

func TestChatKeepsCallerModel(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, chatBody)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	opts := modelapi.CallArguments{"model": "gpt-4o"}
	_, err := c.Chat(context.Background(), []modelapi.Message{modelapi.UserMessage("hi")}, opts)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", gotBody["model"])
	assert.Equal(t, modelapi.CallArguments{"model": "gpt-4o"}, opts, "caller options unchanged")
}

func TestEmbedSingleString(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeJSON(w, http.StatusOK, embeddingBody)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	resp, err := c.Embed(context.Background(), "just one text", nil)
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)

	assert.Equal(t, DefaultModel(modelapi.ModelTypeEmbedder), gotBody["model"])
	assert.Equal(t, []any{"just one text"}, gotBody["input"], "single string normalized to a sequence")
}

func TestEmbedRejectsNonSequence(t *testing.T) {
	c := &Client{retry: fastRetry()}
	_, err := c.Embed(context.Background(), 7, nil)
	var invalid *modelapi.InvalidInputError
	require.ErrorAs(t, err, &invalid)
}
