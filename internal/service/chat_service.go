package service

import (
	"context"
	"time"

	"spinach-be/internal/constant"
	"spinach-be/internal/dto"
	"spinach-be/internal/entity"
	"spinach-be/internal/pkg/logger"
	"spinach-be/internal/pkg/serverutils"
	"spinach-be/internal/repository/contract"
	"spinach-be/internal/repository/specification"
	"spinach-be/internal/repository/unitofwork"
	"spinach-be/pkg/llm"
	"spinach-be/pkg/rag"
	"spinach-be/pkg/rag/prompt"

	"github.com/google/uuid"
)

type IChatService interface {
	CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	GetAllSessions(ctx context.Context) ([]*dto.SessionResponse, error)
	GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.ChatHistoryResponse, error)
	RenameSession(ctx context.Context, request *dto.RenameSessionRequest) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, sessionId uuid.UUID) error
	Completion(ctx context.Context, request *dto.ChatCompletionRequest) (*dto.ChatCompletionResponse, error)
	// CompletionStream runs the same pipeline but relays upstream SSE payloads
	// to fn as they arrive. The full reply is persisted once the stream ends.
	// When the stream breaks after partial content, the partial reply is
	// persisted and returned together with a non-nil error.
	CompletionStream(ctx context.Context, request *dto.ChatCompletionRequest, fn llm.StreamFunc) (*dto.ChatCompletionResponse, error)
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	retriever      *rag.Retriever
	settingService ISettingService
	log            logger.ILogger
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	retriever *rag.Retriever,
	settingService ISettingService,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		retriever:      retriever,
		settingService: settingService,
		log:            log,
	}
}

func (cs *chatService) CreateSession(ctx context.Context, request *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	title := request.Title
	if title == "" {
		title = constant.ChatSessionDefaultTitle
	}

	chatSession := entity.ChatSession{
		Id:        uuid.New(),
		Title:     title,
		CreatedAt: now,
	}

	greeting := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: chatSession.Id,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       constant.ChatSessionGreeting,
		CreatedAt:     now,
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatSessionRepository().Create(ctx, &chatSession); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &greeting); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.CreateSessionResponse{Id: chatSession.Id}, nil
}

func (cs *chatService) GetAllSessions(ctx context.Context) ([]*dto.SessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, &dto.SessionResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return response, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, sessionId uuid.UUID) ([]*dto.ChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	resp := make([]*dto.ChatHistoryResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, &dto.ChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		})
	}

	return resp, nil
}

func (cs *chatService) RenameSession(ctx context.Context, request *dto.RenameSessionRequest) (*dto.SessionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: request.Id})
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}

	sess.Title = request.Title
	if err := uow.ChatSessionRepository().Update(ctx, sess); err != nil {
		return nil, err
	}

	return &dto.SessionResponse{
		Id:        sess.Id,
		Title:     sess.Title,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}, nil
}

func (cs *chatService) DeleteSession(ctx context.Context, sessionId uuid.UUID) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if sess == nil {
		return serverutils.NewNotFoundError("session not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}

	return uow.Commit()
}

// preparedCompletion carries everything the two completion paths share.
type preparedCompletion struct {
	session *entity.ChatSession
	history []llm.Message
	sources []*contract.ScoredDocumentChunk
}

func (cs *chatService) prepare(ctx context.Context, uow unitofwork.UnitOfWork, request *dto.ChatCompletionRequest) (*preparedCompletion, error) {
	sess, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: request.ChatSessionId})
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, serverutils.NewNotFoundError("session not found")
	}

	previous, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: request.ChatSessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	var sources []*contract.ScoredDocumentChunk
	if request.UseRag {
		params := cs.settingService.RagParams(ctx)
		sources, err = cs.retriever.Retrieve(ctx, uow.DocumentChunkRepository(), request.Message, params.TopK, params.SimilarityThreshold)
		if err != nil {
			cs.log.Error("chat_service", "retrieval failed", map[string]interface{}{
				"session_id": request.ChatSessionId,
				"error":      err.Error(),
			})
			return nil, serverutils.NewBadGatewayError("retrieval failed: " + err.Error())
		}
	}

	history := make([]llm.Message, 0, len(previous)+2)
	history = append(history, llm.Message{
		Role:    constant.ChatMessageRoleSystem,
		Content: constant.DefaultSystemPrompt,
	})
	for _, msg := range previous {
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	history = append(history, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: prompt.NewContextualBuilder(request.Message, sources).Build(),
	})

	return &preparedCompletion{
		session: sess,
		history: history,
		sources: sources,
	}, nil
}

// persistExchange stores the user turn and the assistant reply, and promotes
// the first user message to the session title while it still has the default.
func (cs *chatService) persistExchange(ctx context.Context, request *dto.ChatCompletionRequest, sess *entity.ChatSession, reply string) (*dto.ChatCompletionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	sent := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: request.ChatSessionId,
		Role:          constant.ChatMessageRoleUser,
		Content:       request.Message,
		CreatedAt:     now,
	}
	replyMsg := entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: request.ChatSessionId,
		Role:          constant.ChatMessageRoleAssistant,
		Content:       reply,
		CreatedAt:     now.Add(1 * time.Millisecond),
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().Create(ctx, &sent); err != nil {
		return nil, err
	}
	if err := uow.ChatMessageRepository().Create(ctx, &replyMsg); err != nil {
		return nil, err
	}

	if sess.Title == constant.ChatSessionDefaultTitle {
		sess.Title = truncateTitle(request.Message, 50)
		if err := uow.ChatSessionRepository().Update(ctx, sess); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return &dto.ChatCompletionResponse{
		ChatSessionId: request.ChatSessionId,
		Sent: &dto.ChatMessageDTO{
			Id:        sent.Id,
			Role:      sent.Role,
			Content:   sent.Content,
			CreatedAt: sent.CreatedAt,
		},
		Reply: &dto.ChatMessageDTO{
			Id:        replyMsg.Id,
			Role:      replyMsg.Role,
			Content:   replyMsg.Content,
			CreatedAt: replyMsg.CreatedAt,
		},
	}, nil
}

func (cs *chatService) options(request *dto.ChatCompletionRequest) []llm.Option {
	var opts []llm.Option
	if request.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(request.Temperature))
	}
	return opts
}

func sourcesToDTO(sources []*contract.ScoredDocumentChunk) []dto.SourceDTO {
	out := make([]dto.SourceDTO, 0, len(sources))
	for _, s := range sources {
		out = append(out, dto.SourceDTO{
			Filename:   s.Chunk.Filename,
			ChunkIndex: s.Chunk.ChunkIndex,
			Content:    s.Chunk.Content,
			Similarity: s.Similarity,
		})
	}
	return out
}

func (cs *chatService) Completion(ctx context.Context, request *dto.ChatCompletionRequest) (*dto.ChatCompletionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	prepared, err := cs.prepare(ctx, uow, request)
	if err != nil {
		return nil, err
	}

	reply, err := cs.llmProvider.Chat(ctx, prepared.history, cs.options(request)...)
	if err != nil {
		cs.log.Error("chat_service", "completion failed", map[string]interface{}{
			"session_id": request.ChatSessionId,
			"error":      err.Error(),
		})
		return nil, serverutils.NewBadGatewayError("llm request failed: " + err.Error())
	}

	response, err := cs.persistExchange(ctx, request, prepared.session, reply)
	if err != nil {
		return nil, err
	}
	response.Sources = sourcesToDTO(prepared.sources)
	return response, nil
}

func (cs *chatService) CompletionStream(ctx context.Context, request *dto.ChatCompletionRequest, fn llm.StreamFunc) (*dto.ChatCompletionResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	prepared, err := cs.prepare(ctx, uow, request)
	if err != nil {
		return nil, err
	}

	reply, streamErr := cs.llmProvider.ChatStream(ctx, prepared.history, fn, cs.options(request)...)
	if streamErr != nil {
		cs.log.Error("chat_service", "stream failed", map[string]interface{}{
			"session_id": request.ChatSessionId,
			"error":      streamErr.Error(),
		})
		if reply == "" {
			return nil, serverutils.NewBadGatewayError("llm request failed: " + streamErr.Error())
		}
	}

	response, err := cs.persistExchange(ctx, request, prepared.session, reply)
	if err != nil {
		return nil, err
	}
	response.Sources = sourcesToDTO(prepared.sources)

	// A partially relayed reply is still worth keeping for the history, but
	// the caller must hear about the interruption so the client does too.
	if streamErr != nil {
		return response, serverutils.NewBadGatewayError("llm stream interrupted: " + streamErr.Error())
	}
	return response, nil
}

func truncateTitle(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
