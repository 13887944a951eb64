package dto

type BannerResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Database   string `json:"database"`
	ChunkCount int64  `json:"chunk_count"`
}

type LLMSpecsDTO struct {
	NParams          int64  `json:"n_params"`
	NParamsFormatted string `json:"n_params_formatted"`
	Size             int64  `json:"size"`
	SizeFormatted    string `json:"size_formatted"`
	VocabSize        int    `json:"vocab_size"`
	ContextLength    int    `json:"context_length"`
	EmbeddingDim     int    `json:"embedding_dim"`
}

type LLMInfoResponse struct {
	ModelId   string      `json:"model_id"`
	ModelName string      `json:"model_name"`
	OwnedBy   string      `json:"owned_by"`
	Created   int64       `json:"created"`
	Specs     LLMSpecsDTO `json:"specs"`
}

type ModelStatusResponse struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Ready    bool   `json:"ready"`
	Error    string `json:"error,omitempty"`
}
