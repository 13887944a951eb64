package embedding

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(text string) (*EmbeddingResponse, error)
	// Ping checks whether the embedding backend is reachable.
	Ping() error
}

type EmbeddingResponse struct {
	Values []float32
}
