package openaiclient

import "github.com/MaTriXy/modelbridge/modelapi"

// ModelKind distinguishes chat models from embedding models in the catalog.
type ModelKind string

const (
	ModelKindChat      ModelKind = "chat"
	ModelKindEmbedding ModelKind = "embedding"
)

// ModelInfo describes a known OpenAI model.
type ModelInfo struct {
	ID            string    `json:"id"`
	Kind          ModelKind `json:"kind"`
	ContextWindow int       `json:"context_window,omitempty"`
	Dimensions    int       `json:"dimensions,omitempty"` // embedding models only
	Aliases       []string  `json:"aliases,omitempty"`
}

// Models is the built-in model catalog.
var Models = []ModelInfo{
	{ID: "gpt-5.2", Kind: ModelKindChat, ContextWindow: 1047576, Aliases: []string{"gpt5"}},
	{ID: "gpt-5.2-mini", Kind: ModelKindChat, ContextWindow: 1047576, Aliases: []string{"gpt5-mini"}},
	{ID: "gpt-4o", Kind: ModelKindChat, ContextWindow: 128000},
	{ID: "gpt-4o-mini", Kind: ModelKindChat, ContextWindow: 128000},
	{ID: "text-embedding-3-small", Kind: ModelKindEmbedding, Dimensions: 1536},
	{ID: "text-embedding-3-large", Kind: ModelKindEmbedding, Dimensions: 3072},
	{ID: "text-embedding-ada-002", Kind: ModelKindEmbedding, Dimensions: 1536, Aliases: []string{"ada"}},
}

// LookupModel finds a model by id or alias. Returns nil if unknown.
func LookupModel(id string) *ModelInfo {
	for i := range Models {
		if Models[i].ID == id {
			return &Models[i]
		}
		for _, alias := range Models[i].Aliases {
			if alias == id {
				return &Models[i]
			}
		}
	}
	return nil
}

// DefaultModel returns the model used when a call does not name one.
func DefaultModel(modelType modelapi.ModelType) string {
	switch modelType {
	case modelapi.ModelTypeEmbedder:
		return "text-embedding-3-small"
	case modelapi.ModelTypeLLM:
		return "gpt-5.2-mini"
	default:
		return ""
	}
}
