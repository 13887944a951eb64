package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Rag      RagConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	TemplatesDir       string
	IndexTopicName     string
}

type DatabaseConfig struct {
	Connection string
}

type LLMConfig struct {
	BaseURL           string // OpenAI-compatible server (llama.cpp, LM Studio)
	Model             string
	EmbeddingProvider string // "ollama" or "openai"
	EmbeddingBaseURL  string
	EmbeddingModel    string
}

type RagConfig struct {
	TopK                int
	SimilarityThreshold float64
	ChunkSize           int
	ChunkOverlap        int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "8000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "spinach.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
			TemplatesDir:       getEnv("TEMPLATES_DIR", "./templates"),
			IndexTopicName:     getEnv("INDEX_DOCUMENT_TOPIC_NAME", "INDEX_DOCUMENT_CHUNKS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		LLM: LLMConfig{
			BaseURL:           getEnv("LLM_BASE_URL", "http://localhost:8080/v1"),
			Model:             getEnv("LLM_MODEL", ""),
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			EmbeddingBaseURL:  getEnv("EMBEDDING_BASE_URL", "http://localhost:11434"),
			EmbeddingModel:    getEnv("EMBEDDING_MODEL", "nomic-embed-text"),
		},
		Rag: RagConfig{
			TopK:                getEnvAsInt("RAG_TOP_K", 3),
			SimilarityThreshold: getEnvAsFloat("RAG_SIMILARITY_THRESHOLD", 0.5),
			ChunkSize:           getEnvAsInt("RAG_CHUNK_SIZE", 1000),
			ChunkOverlap:        getEnvAsInt("RAG_CHUNK_OVERLAP", 200),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
