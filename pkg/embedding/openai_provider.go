package embedding

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// OpenAIProvider implements EmbeddingProvider against an OpenAI-compatible
// /embeddings endpoint (llama.cpp --embedding, LM Studio).
type OpenAIProvider struct {
	BaseURL string
	Model   string
}

func NewOpenAIProvider(baseURL string, model string) EmbeddingProvider {
	return &OpenAIProvider{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Model:   model,
	}
}

type openaiEmbeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type openaiEmbeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *OpenAIProvider) Generate(text string) (*EmbeddingResponse, error) {
	reqBody := openaiEmbeddingRequest{
		Model: p.Model,
		Input: text,
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, err
	}

	resp, err := http.Post(p.BaseURL+"/embeddings", "application/json", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai embedding error: %s", string(bodyBytes))
	}

	var openaiResp openaiEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &openaiResp); err != nil {
		return nil, err
	}
	if len(openaiResp.Data) == 0 {
		return nil, fmt.Errorf("openai embedding returned no data")
	}

	return &EmbeddingResponse{
		Values: normalizeVector(openaiResp.Data[0].Embedding),
	}, nil
}

func (p *OpenAIProvider) Ping() error {
	resp, err := http.Get(p.BaseURL + "/models")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("embedding server returned status %d", resp.StatusCode)
	}
	return nil
}
