package service

import (
	"context"
	"encoding/json"
	"testing"

	"spinach-be/internal/config"
	"spinach-be/internal/dto"
	"spinach-be/internal/model"
	"spinach-be/internal/repository/unitofwork"
	"spinach-be/pkg/llm/openai"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSettingService(t *testing.T) (ISettingService, *openai.Provider) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Setting{}))

	cfg := &config.Config{
		Rag: config.RagConfig{
			TopK:                3,
			SimilarityThreshold: 0.5,
			ChunkSize:           1000,
			ChunkOverlap:        200,
		},
	}
	provider := openai.NewProvider("http://localhost:8080/v1", "default-model")

	return NewSettingService(unitofwork.NewRepositoryFactory(db), cfg, provider), provider
}

func TestEffectiveDefaults(t *testing.T) {
	svc, _ := newSettingService(t)

	got, err := svc.Effective(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/v1", got.LLM.BaseURL)
	assert.Equal(t, "default-model", got.LLM.Model)
	assert.Equal(t, 3, got.Rag.TopK)
	assert.Equal(t, 0.5, got.Rag.SimilarityThreshold)
}

func TestUpdateOverridesRagAndLLM(t *testing.T) {
	svc, provider := newSettingService(t)
	ctx := context.Background()

	var req dto.UpdateSettingsRequest
	require.NoError(t, json.Unmarshal([]byte(`{
		"llm": {"model": "qwen2.5-14b"},
		"rag": {"top_k": 7, "similarity_threshold": 0.35}
	}`), &req))

	res, err := svc.Update(ctx, &req)
	require.NoError(t, err)
	assert.Len(t, res.UpdatedFields, 3)

	// The provider picks up the model without a restart.
	assert.Equal(t, "qwen2.5-14b", provider.Model())

	effective, err := svc.Effective(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, effective.Rag.TopK)
	assert.Equal(t, 0.35, effective.Rag.SimilarityThreshold)
	// Untouched knobs keep their env defaults.
	assert.Equal(t, 1000, effective.Rag.ChunkSize)

	params := svc.RagParams(ctx)
	assert.Equal(t, 7, params.TopK)
	assert.Equal(t, 0.35, params.SimilarityThreshold)
}

func TestApplyOverridesAtBoot(t *testing.T) {
	svc, provider := newSettingService(t)
	ctx := context.Background()

	var req dto.UpdateSettingsRequest
	require.NoError(t, json.Unmarshal([]byte(`{"llm": {"base_url": "http://gpu-box:8080/v1"}}`), &req))
	_, err := svc.Update(ctx, &req)
	require.NoError(t, err)

	// Simulate a restart: fresh provider, stored rows reapplied.
	provider.SetBaseURL("http://localhost:8080/v1")
	require.NoError(t, svc.ApplyOverrides(ctx))
	assert.Equal(t, "http://gpu-box:8080/v1", provider.BaseURL())
}
