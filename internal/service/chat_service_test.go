package service

import (
	"context"
	"fmt"
	"testing"

	"spinach-be/internal/config"
	"spinach-be/internal/constant"
	"spinach-be/internal/dto"
	"spinach-be/internal/model"
	"spinach-be/internal/repository/unitofwork"
	"spinach-be/pkg/llm"
	"spinach-be/pkg/llm/openai"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubLLM returns canned replies and records the history it was called with.
type stubLLM struct {
	reply       string
	chunks      []string
	err         error
	lastHistory []llm.Message
}

func (s *stubLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.lastHistory = history
	return s.reply, s.err
}

func (s *stubLLM) ChatStream(ctx context.Context, history []llm.Message, fn llm.StreamFunc, options ...llm.Option) (string, error) {
	s.lastHistory = history
	full := ""
	for _, chunk := range s.chunks {
		if fn != nil {
			if err := fn(fmt.Sprintf(`{"choices":[{"delta":{"content":%q}}]}`, chunk)); err != nil {
				return full, err
			}
		}
		full += chunk
	}
	return full, s.err
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newChatService(t *testing.T, provider llm.LLMProvider) IChatService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.Setting{},
	))

	uowFactory := unitofwork.NewRepositoryFactory(db)
	cfg := &config.Config{
		Rag: config.RagConfig{TopK: 3, SimilarityThreshold: 0.5, ChunkSize: 1000, ChunkOverlap: 200},
	}
	settingService := NewSettingService(uowFactory, cfg, openai.NewProvider("http://localhost:8080/v1", ""))

	return NewChatService(uowFactory, provider, nil, settingService, nopLogger{})
}

func TestCreateSessionPersistsGreeting(t *testing.T) {
	svc := newChatService(t, &stubLLM{})
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{})
	require.NoError(t, err)

	history, err := svc.GetChatHistory(ctx, created.Id)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, constant.ChatMessageRoleAssistant, history[0].Role)
	assert.Equal(t, constant.ChatSessionGreeting, history[0].Content)

	sessions, err := svc.GetAllSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, constant.ChatSessionDefaultTitle, sessions[0].Title)
}

func TestCompletionPersistsExchangeAndTitles(t *testing.T) {
	stub := &stubLLM{reply: "はい、できます。"}
	svc := newChatService(t, stub)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{})
	require.NoError(t, err)

	res, err := svc.Completion(ctx, &dto.ChatCompletionRequest{
		ChatSessionId: created.Id,
		Message:       "日報の書き方を教えてください",
	})
	require.NoError(t, err)
	assert.Equal(t, "日報の書き方を教えてください", res.Sent.Content)
	assert.Equal(t, "はい、できます。", res.Reply.Content)

	// System prompt heads the history sent upstream.
	require.NotEmpty(t, stub.lastHistory)
	assert.Equal(t, constant.ChatMessageRoleSystem, stub.lastHistory[0].Role)

	// Greeting + user + assistant
	history, err := svc.GetChatHistory(ctx, created.Id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "はい、できます。", history[2].Content)

	// First user message becomes the session title.
	sessions, err := svc.GetAllSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "日報の書き方を教えてください", sessions[0].Title)
}

func TestCompletionUnknownSession(t *testing.T) {
	svc := newChatService(t, &stubLLM{reply: "x"})

	_, err := svc.Completion(context.Background(), &dto.ChatCompletionRequest{
		ChatSessionId: uuid.New(),
		Message:       "hello",
	})
	require.Error(t, err)
}

func TestCompletionStreamRelaysAndPersists(t *testing.T) {
	stub := &stubLLM{chunks: []string{"お疲れ", "様です"}}
	svc := newChatService(t, stub)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{})
	require.NoError(t, err)

	var relayed []string
	res, err := svc.CompletionStream(ctx, &dto.ChatCompletionRequest{
		ChatSessionId: created.Id,
		Message:       "こんにちは",
	}, func(data string) error {
		relayed = append(relayed, data)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, relayed, 2)
	assert.Equal(t, "お疲れ様です", res.Reply.Content)

	history, err := svc.GetChatHistory(ctx, created.Id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "お疲れ様です", history[2].Content)
}

func TestCompletionStreamErrorAfterPartialReply(t *testing.T) {
	stub := &stubLLM{chunks: []string{"部分的な"}, err: fmt.Errorf("connection reset")}
	svc := newChatService(t, stub)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{})
	require.NoError(t, err)

	res, err := svc.CompletionStream(ctx, &dto.ChatCompletionRequest{
		ChatSessionId: created.Id,
		Message:       "今日の予定は？",
	}, func(data string) error { return nil })

	// The interruption must reach the caller so the client gets an error frame.
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, "部分的な", res.Reply.Content)

	// The partial reply is still persisted.
	history, err := svc.GetChatHistory(ctx, created.Id)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "部分的な", history[2].Content)
}

func TestDeleteSessionRemovesHistory(t *testing.T) {
	svc := newChatService(t, &stubLLM{})
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, &dto.CreateSessionRequest{Title: "temp"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, created.Id))

	_, err = svc.GetChatHistory(ctx, created.Id)
	require.Error(t, err)

	sessions, err := svc.GetAllSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}
