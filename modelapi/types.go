// Package modelapi defines the provider-agnostic model client contract:
// the model-type tag, the per-call argument mapping, the error taxonomy,
// and retry plumbing shared by every provider adapter.
package modelapi

import "context"

// ModelType selects how a provider adapter interprets the call input and
// which provider endpoint it dispatches to.
type ModelType string

const (
	ModelTypeUndefined ModelType = ""
	ModelTypeEmbedder  ModelType = "embedder"
	ModelTypeLLM       ModelType = "llm"
)

func (t ModelType) String() string {
	if t == ModelTypeUndefined {
		return "undefined"
	}
	return string(t)
}

// CallArguments is the named-option set for a single provider call. Each call
// works on its own mapping; adapters must never mutate a caller-supplied base.
type CallArguments map[string]any

// Clone returns a shallow copy of the arguments. Clone of a nil map returns
// an empty, usable map.
func (a CallArguments) Clone() CallArguments {
	out := make(CallArguments, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a minimal chat message. Its JSON form matches the OpenAI wire
// shape, so a []Message can be handed to an adapter as the LLM input as-is.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage creates a user Message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage creates an assistant Message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// CallResult is the single value delivered on the channel returned by
// CallAsync. Response holds the provider's native response object unmodified.
type CallResult struct {
	Response any
	Err      error
}

// ModelClient is the contract every provider adapter implements. Call and
// CallAsync return the provider's native response objects; this layer does
// not normalize them into a provider-agnostic shape.
type ModelClient interface {
	// Provider returns the provider identifier (e.g. "openai").
	Provider() string

	// BuildRequest converts generic input plus caller options into the
	// provider-specific argument set for the given model type. It is a pure
	// transformation: baseOptions is treated as read-only.
	BuildRequest(input any, baseOptions CallArguments, modelType ModelType) (CallArguments, error)

	// Call executes one provider call on the caller's goroutine, blocking
	// for the network round-trip (plus any retries).
	Call(ctx context.Context, args CallArguments, modelType ModelType) (any, error)

	// CallAsync executes the same call off the caller's goroutine. The
	// returned channel yields exactly one CallResult and is then closed.
	CallAsync(ctx context.Context, args CallArguments, modelType ModelType) <-chan CallResult
}

// Closer is implemented by adapters that hold resources.
type Closer interface {
	Close() error
}
