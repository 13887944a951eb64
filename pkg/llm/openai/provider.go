// Package openai talks to any OpenAI-compatible chat completion server
// (llama.cpp, LM Studio, vLLM). Only the endpoints the application needs are
// covered: /chat/completions (plain and streamed) and /models.
package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"spinach-be/pkg/llm"
)

type Provider struct {
	mu      sync.RWMutex
	baseURL string
	model   string
	Client  *http.Client
}

// Ensure Provider implements LLMProvider
var _ llm.LLMProvider = &Provider{}

func NewProvider(baseURL, model string) *Provider {
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// SetBaseURL swaps the upstream server at runtime (settings update).
func (p *Provider) SetBaseURL(baseURL string) {
	p.mu.Lock()
	p.baseURL = strings.TrimRight(baseURL, "/")
	p.mu.Unlock()
}

// SetModel swaps the default model at runtime (settings update).
func (p *Provider) SetModel(model string) {
	p.mu.Lock()
	p.model = model
	p.mu.Unlock()
}

func (p *Provider) BaseURL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.baseURL
}

func (p *Provider) Model() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model
}

// --- Request/Response structs (Internal to this package) ---

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// ModelInfo mirrors one entry of the /models listing, including the llama.cpp
// "meta" extension with parameter counts and context length.
type ModelInfo struct {
	Id      string `json:"id"`
	OwnedBy string `json:"owned_by"`
	Created int64  `json:"created"`
	Meta    struct {
		NParams   int64 `json:"n_params"`
		Size      int64 `json:"size"`
		NVocab    int   `json:"n_vocab"`
		NCtxTrain int   `json:"n_ctx_train"`
		NEmbd     int   `json:"n_embd"`
	} `json:"meta"`
}

type modelList struct {
	Data []ModelInfo `json:"data"`
}

// --- Interface Implementation ---

func (p *Provider) buildRequest(history []llm.Message, stream bool, opts ...llm.Option) chatRequest {
	options := &llm.Options{
		Temperature: 0.7, // Default
	}
	for _, opt := range opts {
		opt(options)
	}

	messages := make([]chatMessage, len(history))
	for i, msg := range history {
		messages[i] = chatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	model := p.Model()
	if options.Model != "" {
		model = options.Model
	}

	return chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
		Stream:      stream,
	}
}

func (p *Provider) post(ctx context.Context, path string, payload interface{}) (*http.Response, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := p.BaseURL() + path
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("llm error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	return resp, nil
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	reqPayload := p.buildRequest(history, false, opts...)

	resp, err := p.post(ctx, "/chat/completions", reqPayload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(bodyBytes, &chatResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// ChatStream reads the upstream SSE stream line by line. Every "data: {...}"
// payload is handed to fn untouched; "data: [DONE]" ends the stream. The
// concatenated delta content is returned for persistence.
func (p *Provider) ChatStream(ctx context.Context, history []llm.Message, fn llm.StreamFunc, opts ...llm.Option) (string, error) {
	reqPayload := p.buildRequest(history, true, opts...)

	resp, err := p.post(ctx, "/chat/completions", reqPayload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		if fn != nil {
			if err := fn(data); err != nil {
				return full.String(), err
			}
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue // tolerate keep-alive or malformed payloads
		}
		if len(chunk.Choices) > 0 {
			full.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("read stream: %w", err)
	}

	return full.String(), nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// Models fetches the /models listing from the upstream server.
func (p *Provider) Models(ctx context.Context) ([]ModelInfo, error) {
	url := p.BaseURL() + "/models"
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llm request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("llm error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var list modelList
	if err := json.Unmarshal(bodyBytes, &list); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return list.Data, nil
}
