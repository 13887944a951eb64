package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"spinach-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChat(t *testing.T) {
	var gotReq chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"こんにちは!"}}]}`)
	}))
	defer server.Close()

	p := NewProvider(server.URL, "test-model")

	reply, err := p.Chat(context.Background(), []llm.Message{
		{Role: "system", Content: "You are helpful."},
		{Role: "user", Content: "hi"},
	}, llm.WithTemperature(0.3))

	require.NoError(t, err)
	assert.Equal(t, "こんにちは!", reply)
	assert.Equal(t, "test-model", gotReq.Model)
	assert.Equal(t, 0.3, gotReq.Temperature)
	assert.False(t, gotReq.Stream)
	require.Len(t, gotReq.Messages, 2)
	assert.Equal(t, "system", gotReq.Messages[0].Role)
}

func TestChatUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewProvider(server.URL, "test-model")

	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestChatStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"Hel\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"lo\"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive comment\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	p := NewProvider(server.URL, "test-model")

	var relayed []string
	reply, err := p.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, func(data string) error {
		relayed = append(relayed, data)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello", reply)
	// The raw payloads pass through untouched; [DONE] is not relayed.
	require.Len(t, relayed, 2)
	assert.JSONEq(t, `{"choices":[{"delta":{"content":"Hel"}}]}`, relayed[0])
}

func TestChatStreamCallbackErrorStopsStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"a\"}}]}\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"b\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	p := NewProvider(server.URL, "test-model")

	calls := 0
	_, err := p.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}}, func(data string) error {
		calls++
		return fmt.Errorf("client went away")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestModels(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[{"id":"/models/qwen2.5-7b.gguf","owned_by":"llamacpp","created":1700000000,"meta":{"n_params":7615616512,"size":4683073536,"n_vocab":152064,"n_ctx_train":32768,"n_embd":3584}}]}`)
	}))
	defer server.Close()

	p := NewProvider(server.URL, "")

	models, err := p.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, "/models/qwen2.5-7b.gguf", models[0].Id)
	assert.Equal(t, int64(7615616512), models[0].Meta.NParams)
	assert.Equal(t, 32768, models[0].Meta.NCtxTrain)
}

func TestRuntimeBaseURLSwap(t *testing.T) {
	p := NewProvider("http://old:8080/v1/", "model-a")
	assert.Equal(t, "http://old:8080/v1", p.BaseURL())

	p.SetBaseURL("http://new:9090/v1")
	p.SetModel("model-b")

	assert.Equal(t, "http://new:9090/v1", p.BaseURL())
	assert.Equal(t, "model-b", p.Model())
}
