package embedding

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaGenerateNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "some text", req.Prompt)

		fmt.Fprint(w, `{"embedding":[3.0,4.0]}`)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "nomic-embed-text")

	res, err := p.Generate("some text")
	require.NoError(t, err)
	require.Len(t, res.Values, 2)

	// 3-4-5 triangle: unit vector is (0.6, 0.8)
	assert.InDelta(t, 0.6, res.Values[0], 1e-6)
	assert.InDelta(t, 0.8, res.Values[1], 1e-6)

	var magnitude float64
	for _, v := range res.Values {
		magnitude += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 1e-6)
}

func TestOllamaGenerateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "missing-model")

	_, err := p.Generate("text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllamaPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		fmt.Fprint(w, `{"models":[]}`)
	}))
	defer server.Close()

	p := NewOllamaProvider(server.URL, "")
	assert.NoError(t, p.Ping())
}

func TestNormalizeVectorZero(t *testing.T) {
	got := normalizeVector([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, got)
}
