package bootstrap

import (
	"log"
	"time"

	"spinach-be/internal/config"
	"spinach-be/internal/controller"
	"spinach-be/internal/pkg/logger"
	"spinach-be/internal/repository/unitofwork"
	"spinach-be/internal/service"
	"spinach-be/pkg/embedding"
	"spinach-be/pkg/llm/openai"
	"spinach-be/pkg/rag"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	ReportController   controller.IReportController
	SettingController  controller.ISettingController
	SystemController   controller.ISystemController

	// Background Services (Exposed for main.go to run)
	IndexerService service.IIndexerService

	// Exposed for boot-time settings sync in main.go
	SettingService service.ISettingService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.LLM.EmbeddingProvider == "openai" {
		embeddingProvider = embedding.NewOpenAIProvider(cfg.LLM.EmbeddingBaseURL, cfg.LLM.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OPENAI-compatible (%s)", cfg.LLM.EmbeddingModel)
	} else {
		embeddingProvider = embedding.NewOllamaProvider(cfg.LLM.EmbeddingBaseURL, cfg.LLM.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.LLM.EmbeddingModel)
	}

	llmProvider := openai.NewProvider(cfg.LLM.BaseURL, cfg.LLM.Model)
	log.Printf("[INFO] Using LLM server: %s", cfg.LLM.BaseURL)

	retriever := rag.NewRetriever(embeddingProvider)
	infoCache := cache.New(5*time.Minute, 10*time.Minute)

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.IndexTopicName, pubSub)
	indexerService := service.NewIndexerService(
		pubSub,
		cfg.App.IndexTopicName,
		uowFactory,
		embeddingProvider,
		sysLogger,
	)

	settingService := service.NewSettingService(uowFactory, cfg, llmProvider)
	chatService := service.NewChatService(uowFactory, llmProvider, retriever, settingService, sysLogger)
	documentService := service.NewDocumentService(uowFactory, publisherService, settingService, retriever, cfg, sysLogger)
	reportService := service.NewReportService(uowFactory, llmProvider, sysLogger)
	systemService := service.NewSystemService(db, uowFactory, llmProvider, embeddingProvider, cfg, infoCache, sysLogger)

	// 5. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService, sysLogger),
		DocumentController: controller.NewDocumentController(documentService),
		ReportController:   controller.NewReportController(reportService),
		SettingController:  controller.NewSettingController(settingService),
		SystemController:   controller.NewSystemController(systemService),

		IndexerService: indexerService,
		SettingService: settingService,
		Logger:         sysLogger,
	}
}
