// Package rag implements the retrieval step of the chat pipeline: embed the
// query, run a vector search, and keep only the chunks that clear the
// similarity threshold.
package rag

import (
	"context"
	"fmt"

	"spinach-be/internal/repository/contract"
	"spinach-be/pkg/embedding"
)

type Retriever struct {
	embedder embedding.EmbeddingProvider
}

func NewRetriever(embedder embedding.EmbeddingProvider) *Retriever {
	return &Retriever{
		embedder: embedder,
	}
}

// Retrieve runs the linear retrieval chain against the chunk repository.
// Results arrive best-first; an empty slice means nothing cleared the
// threshold and the caller should fall back to a plain completion.
func (r *Retriever) Retrieve(
	ctx context.Context,
	repo contract.DocumentChunkRepository,
	query string,
	topK int,
	threshold float64,
) ([]*contract.ScoredDocumentChunk, error) {
	embedded, err := r.embedder.Generate(query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := repo.SearchSimilarWithScore(ctx, embedded.Values, topK, threshold)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	return scored, nil
}
