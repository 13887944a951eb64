package dto

type LLMSettingsDTO struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

type RagSettingsDTO struct {
	TopK                int     `json:"top_k"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	ChunkSize           int     `json:"chunk_size"`
	ChunkOverlap        int     `json:"chunk_overlap"`
}

type SettingsResponse struct {
	LLM LLMSettingsDTO `json:"llm"`
	Rag RagSettingsDTO `json:"rag"`
}

// UpdateSettingsRequest carries a partial update; nil fields stay untouched.
type UpdateSettingsRequest struct {
	LLM *struct {
		BaseURL *string `json:"base_url"`
		Model   *string `json:"model"`
	} `json:"llm"`
	Rag *struct {
		TopK                *int     `json:"top_k" validate:"omitempty,gte=1,lte=50"`
		SimilarityThreshold *float64 `json:"similarity_threshold" validate:"omitempty,gte=0,lte=1"`
		ChunkSize           *int     `json:"chunk_size" validate:"omitempty,gte=100,lte=8000"`
		ChunkOverlap        *int     `json:"chunk_overlap" validate:"omitempty,gte=0,lte=4000"`
	} `json:"rag"`
}

type UpdateSettingsResponse struct {
	UpdatedFields []string `json:"updated_fields"`
}
