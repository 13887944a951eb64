package integration

import (
	"context"
	"log"
	"math"
	"os"
	"testing"
	"time"

	"spinach-be/internal/entity"
	"spinach-be/internal/repository/contract"
	"spinach-be/internal/repository/unitofwork"
	"spinach-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const embeddingDim = 768

// axisVector returns a unit vector along one axis, so cosine similarity
// between two of them is exactly 1 (same axis) or 0 (different axes).
func axisVector(axis int) []float32 {
	v := make([]float32, embeddingDim)
	v[axis] = 1
	return v
}

// mixedVector blends two axes and normalizes, giving a cosine similarity of
// 1/sqrt(2) against either axis.
func mixedVector(a, b int) []float32 {
	v := make([]float32, embeddingDim)
	norm := float32(1 / math.Sqrt2)
	v[a] = norm
	v[b] = norm
	return v
}

func TestSearchSimilarWithScore(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	ctx := context.Background()
	uow := unitofwork.NewRepositoryFactory(gormDB).NewUnitOfWork(ctx)
	repo := uow.DocumentChunkRepository()

	filename := "vector_search_test_" + uuid.NewString() + ".md"
	now := time.Now()

	chunks := []*entity.DocumentChunk{
		{
			Id:         uuid.New(),
			Filename:   filename,
			FileType:   "markdown",
			ChunkIndex: 0,
			Content:    "exact match",
			Embedding:  axisVector(0),
			CreatedAt:  now,
		},
		{
			Id:         uuid.New(),
			Filename:   filename,
			FileType:   "markdown",
			ChunkIndex: 1,
			Content:    "partial match",
			Embedding:  mixedVector(0, 1),
			CreatedAt:  now,
		},
		{
			Id:         uuid.New(),
			Filename:   filename,
			FileType:   "markdown",
			ChunkIndex: 2,
			Content:    "orthogonal",
			Embedding:  axisVector(1),
			CreatedAt:  now,
		},
		{
			// Not yet indexed: embedding stays NULL.
			Id:         uuid.New(),
			Filename:   filename,
			FileType:   "markdown",
			ChunkIndex: 3,
			Content:    "unindexed",
			CreatedAt:  now,
		},
	}
	require.NoError(t, repo.CreateBulk(ctx, chunks))
	defer func() {
		if _, err := repo.DeleteByFilename(ctx, filename); err != nil {
			t.Logf("cleanup failed: %v", err)
		}
	}()

	results, err := repo.SearchSimilarWithScore(ctx, axisVector(0), 10, 0.5)
	require.NoError(t, err)

	// Only chunks from this test document matter; other data may be present.
	var got []*contract.ScoredDocumentChunk
	for _, r := range results {
		if r.Chunk.Filename == filename {
			got = append(got, r)
		}
	}

	// The orthogonal chunk (similarity 0) falls below the threshold and the
	// NULL-embedding chunk is excluded entirely.
	require.Len(t, got, 2)

	// Best match first.
	assert.Equal(t, "exact match", got[0].Chunk.Content)
	assert.InDelta(t, 1.0, got[0].Similarity, 0.01)
	assert.Equal(t, "partial match", got[1].Chunk.Content)
	assert.InDelta(t, 1/math.Sqrt2, got[1].Similarity, 0.01)

	// Tightening the threshold drops the partial match too.
	strict, err := repo.SearchSimilarWithScore(ctx, axisVector(0), 10, 0.9)
	require.NoError(t, err)
	for _, r := range strict {
		if r.Chunk.Filename == filename {
			assert.Equal(t, "exact match", r.Chunk.Content)
		}
	}
}
