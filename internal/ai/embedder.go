package ai

import "context"

// Embedder turns text into a fixed-dimension vector.
// Vectors produced by one Embedder are only comparable with each other.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Identifier is implemented by embedders whose vectors depend on more than the
// model name, such as output dimensions or task type. Identity must differ
// whenever two configurations produce incomparable vectors.
type Identifier interface {
	Identity() string
}

// Identity returns e's Identity when it has one and its model otherwise.
func Identity(e Embedder) string {
	if id, ok := e.(Identifier); ok {
		return id.Identity()
	}
	return e.Model()
}

// Provider names accepted in configuration.
const (
	ProviderGemini  = "gemini"
	ProviderLexical = "lexical"
)
