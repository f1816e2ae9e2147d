package embedding

import "context"

// Dimension is the embedding size used across the catalog corpus.
// Gemini text-embedding-004 produces 768-dimensional vectors; the Ollama
// default model (nomic-embed-text) matches.
const Dimension = 768

// Task types hint the provider at how the embedding will be used.
const (
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
)

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}
