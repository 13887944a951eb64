package service

import (
	"context"
	"fmt"
	"strconv"

	"spinach-be/internal/config"
	"spinach-be/internal/dto"
	"spinach-be/internal/entity"
	"spinach-be/internal/repository/unitofwork"
	"spinach-be/pkg/llm/openai"
)

// Setting keys persisted in the settings table. Anything not stored falls
// back to the value loaded from the environment.
const (
	SettingKeyLLMBaseURL   = "llm.base_url"
	SettingKeyLLMModel     = "llm.model"
	SettingKeyRagTopK      = "rag.top_k"
	SettingKeyRagThreshold = "rag.similarity_threshold"
	SettingKeyChunkSize    = "rag.chunk_size"
	SettingKeyChunkOverlap = "rag.chunk_overlap"
)

type ISettingService interface {
	Effective(ctx context.Context) (*dto.SettingsResponse, error)
	Update(ctx context.Context, request *dto.UpdateSettingsRequest) (*dto.UpdateSettingsResponse, error)
	// RagParams resolves the RAG knobs for the current request.
	RagParams(ctx context.Context) config.RagConfig
	// ApplyOverrides pushes persisted LLM settings into the provider at boot.
	ApplyOverrides(ctx context.Context) error
}

type settingService struct {
	uowFactory  unitofwork.RepositoryFactory
	cfg         *config.Config
	llmProvider *openai.Provider
}

func NewSettingService(
	uowFactory unitofwork.RepositoryFactory,
	cfg *config.Config,
	llmProvider *openai.Provider,
) ISettingService {
	return &settingService{
		uowFactory:  uowFactory,
		cfg:         cfg,
		llmProvider: llmProvider,
	}
}

func (s *settingService) loadStored(ctx context.Context) map[string]string {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	stored, err := uow.SettingRepository().GetAll(ctx)
	if err != nil {
		// Settings are an overlay; without them the env config still works.
		return map[string]string{}
	}
	values := make(map[string]string, len(stored))
	for _, row := range stored {
		values[row.Key] = row.Value
	}
	return values
}

func (s *settingService) Effective(ctx context.Context) (*dto.SettingsResponse, error) {
	values := s.loadStored(ctx)

	resp := &dto.SettingsResponse{
		LLM: dto.LLMSettingsDTO{
			BaseURL: s.llmProvider.BaseURL(),
			Model:   s.llmProvider.Model(),
		},
		Rag: dto.RagSettingsDTO{
			TopK:                s.cfg.Rag.TopK,
			SimilarityThreshold: s.cfg.Rag.SimilarityThreshold,
			ChunkSize:           s.cfg.Rag.ChunkSize,
			ChunkOverlap:        s.cfg.Rag.ChunkOverlap,
		},
	}

	if v, ok := values[SettingKeyRagTopK]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			resp.Rag.TopK = n
		}
	}
	if v, ok := values[SettingKeyRagThreshold]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			resp.Rag.SimilarityThreshold = f
		}
	}
	if v, ok := values[SettingKeyChunkSize]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			resp.Rag.ChunkSize = n
		}
	}
	if v, ok := values[SettingKeyChunkOverlap]; ok {
		if n, err := strconv.Atoi(v); err == nil {
			resp.Rag.ChunkOverlap = n
		}
	}

	return resp, nil
}

func (s *settingService) RagParams(ctx context.Context) config.RagConfig {
	effective, err := s.Effective(ctx)
	if err != nil {
		return s.cfg.Rag
	}
	return config.RagConfig{
		TopK:                effective.Rag.TopK,
		SimilarityThreshold: effective.Rag.SimilarityThreshold,
		ChunkSize:           effective.Rag.ChunkSize,
		ChunkOverlap:        effective.Rag.ChunkOverlap,
	}
}

func (s *settingService) Update(ctx context.Context, request *dto.UpdateSettingsRequest) (*dto.UpdateSettingsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.SettingRepository()

	var updated []string

	set := func(key, value string) error {
		if err := repo.Set(ctx, &entity.Setting{Key: key, Value: value}); err != nil {
			return err
		}
		updated = append(updated, key)
		return nil
	}

	if request.LLM != nil {
		if request.LLM.BaseURL != nil {
			if err := set(SettingKeyLLMBaseURL, *request.LLM.BaseURL); err != nil {
				return nil, err
			}
			s.llmProvider.SetBaseURL(*request.LLM.BaseURL)
		}
		if request.LLM.Model != nil {
			if err := set(SettingKeyLLMModel, *request.LLM.Model); err != nil {
				return nil, err
			}
			s.llmProvider.SetModel(*request.LLM.Model)
		}
	}

	if request.Rag != nil {
		if request.Rag.TopK != nil {
			if err := set(SettingKeyRagTopK, strconv.Itoa(*request.Rag.TopK)); err != nil {
				return nil, err
			}
		}
		if request.Rag.SimilarityThreshold != nil {
			if err := set(SettingKeyRagThreshold, fmt.Sprintf("%g", *request.Rag.SimilarityThreshold)); err != nil {
				return nil, err
			}
		}
		if request.Rag.ChunkSize != nil {
			if err := set(SettingKeyChunkSize, strconv.Itoa(*request.Rag.ChunkSize)); err != nil {
				return nil, err
			}
		}
		if request.Rag.ChunkOverlap != nil {
			if err := set(SettingKeyChunkOverlap, strconv.Itoa(*request.Rag.ChunkOverlap)); err != nil {
				return nil, err
			}
		}
	}

	return &dto.UpdateSettingsResponse{UpdatedFields: updated}, nil
}

func (s *settingService) ApplyOverrides(ctx context.Context) error {
	values := s.loadStored(ctx)

	if v, ok := values[SettingKeyLLMBaseURL]; ok && v != "" {
		s.llmProvider.SetBaseURL(v)
	}
	if v, ok := values[SettingKeyLLMModel]; ok && v != "" {
		s.llmProvider.SetModel(v)
	}
	return nil
}
