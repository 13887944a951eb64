package service

import (
	"context"
	"fmt"
	"strings"

	"spinach-be/internal/config"
	"spinach-be/internal/dto"
	"spinach-be/internal/pkg/logger"
	"spinach-be/internal/pkg/serverutils"
	"spinach-be/internal/repository/unitofwork"
	"spinach-be/pkg/embedding"
	"spinach-be/pkg/llm/openai"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const (
	appVersion = "1.0.0"

	llmInfoCacheKey = "llm_info"
)

type ISystemService interface {
	Banner() *dto.BannerResponse
	Health(ctx context.Context) (*dto.HealthResponse, error)
	// LLMInfo queries the upstream /models listing. Results are cached for a
	// few minutes since the loaded model rarely changes while serving.
	LLMInfo(ctx context.Context) (*dto.LLMInfoResponse, error)
	ModelStatus(ctx context.Context) *dto.ModelStatusResponse
}

type systemService struct {
	db                *gorm.DB
	uowFactory        unitofwork.RepositoryFactory
	llmProvider       *openai.Provider
	embeddingProvider embedding.EmbeddingProvider
	embeddingConfig   config.LLMConfig
	infoCache         *cache.Cache
	log               logger.ILogger
}

func NewSystemService(
	db *gorm.DB,
	uowFactory unitofwork.RepositoryFactory,
	llmProvider *openai.Provider,
	embeddingProvider embedding.EmbeddingProvider,
	cfg *config.Config,
	infoCache *cache.Cache,
	log logger.ILogger,
) ISystemService {
	return &systemService{
		db:                db,
		uowFactory:        uowFactory,
		llmProvider:       llmProvider,
		embeddingProvider: embeddingProvider,
		embeddingConfig:   cfg.LLM,
		infoCache:         infoCache,
		log:               log,
	}
}

func (ss *systemService) Banner() *dto.BannerResponse {
	return &dto.BannerResponse{
		Service: "spinach-backend",
		Version: appVersion,
	}
}

func (ss *systemService) Health(ctx context.Context) (*dto.HealthResponse, error) {
	response := &dto.HealthResponse{
		Status:   "healthy",
		Version:  appVersion,
		Database: "connected",
	}

	sqlDB, err := ss.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		response.Status = "unhealthy"
		response.Database = "disconnected"
		return response, nil
	}

	uow := ss.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.DocumentChunkRepository().Count(ctx)
	if err != nil {
		response.Status = "unhealthy"
		return response, nil
	}
	response.ChunkCount = count

	return response, nil
}

func (ss *systemService) LLMInfo(ctx context.Context) (*dto.LLMInfoResponse, error) {
	if cached, found := ss.infoCache.Get(llmInfoCacheKey); found {
		return cached.(*dto.LLMInfoResponse), nil
	}

	models, err := ss.llmProvider.Models(ctx)
	if err != nil {
		ss.log.Warn("system_service", "failed to query model listing", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, serverutils.NewBadGatewayError("inference server unreachable: " + err.Error())
	}
	if len(models) == 0 {
		return nil, serverutils.NewBadGatewayError("inference server reports no loaded model")
	}

	info := models[0]
	response := &dto.LLMInfoResponse{
		ModelId:   info.Id,
		ModelName: modelDisplayName(info.Id),
		OwnedBy:   info.OwnedBy,
		Created:   info.Created,
		Specs: dto.LLMSpecsDTO{
			NParams:          info.Meta.NParams,
			NParamsFormatted: formatParamCount(info.Meta.NParams),
			Size:             info.Meta.Size,
			SizeFormatted:    formatByteSize(info.Meta.Size),
			VocabSize:        info.Meta.NVocab,
			ContextLength:    info.Meta.NCtxTrain,
			EmbeddingDim:     info.Meta.NEmbd,
		},
	}

	ss.infoCache.Set(llmInfoCacheKey, response, cache.DefaultExpiration)
	return response, nil
}

func (ss *systemService) ModelStatus(ctx context.Context) *dto.ModelStatusResponse {
	response := &dto.ModelStatusResponse{
		Provider: ss.embeddingConfig.EmbeddingProvider,
		Model:    ss.embeddingConfig.EmbeddingModel,
		Ready:    true,
	}

	if err := ss.embeddingProvider.Ping(); err != nil {
		response.Ready = false
		response.Error = err.Error()
	}

	return response
}

// modelDisplayName strips the path and extension llama.cpp reports as the
// model id, e.g. "/models/qwen2.5-7b-instruct-q4_k_m.gguf" -> "qwen2.5-7b-instruct-q4_k_m".
func modelDisplayName(id string) string {
	name := id
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndexByte(name, '.'); idx > 0 {
		name = name[:idx]
	}
	return name
}

func formatParamCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n > 0:
		return fmt.Sprintf("%d", n)
	default:
		return "unknown"
	}
}

func formatByteSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n > 0:
		return fmt.Sprintf("%d B", n)
	default:
		return "unknown"
	}
}
