package bootstrap

import (
	"log"

	"what-coffee-be/internal/config"
	"what-coffee-be/internal/controller"
	"what-coffee-be/internal/pkg/logger"
	"what-coffee-be/internal/repository/contract"
	"what-coffee-be/internal/repository/implementation"
	"what-coffee-be/internal/repository/memory"
	"what-coffee-be/internal/service"
	"what-coffee-be/pkg/affiliate"
	"what-coffee-be/pkg/answer"
	"what-coffee-be/pkg/embedding"
	"what-coffee-be/pkg/llm/factory"
	pktNats "what-coffee-be/pkg/nats"
	"what-coffee-be/pkg/profile"
	"what-coffee-be/pkg/retrieval"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	CatalogController controller.ICatalogController

	// Services
	CatalogService service.ICatalogService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

// NewContainer wires every component. db may be nil, in which case the
// catalog falls back to the in-memory index (useful for local runs without
// Postgres; the catalog is then empty until seeded through the API).
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	pipelineLogger := service.InitPipelineLogger()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Catalog index
	var coffeeRepo contract.CoffeeRepository
	if db != nil {
		coffeeRepo = implementation.NewCoffeeRepository(db)
	} else {
		log.Println("[WARN] No database configured, using in-memory catalog index")
		coffeeRepo = memory.NewCoffeeIndex()
	}

	// 5. Session store
	sessionRepo := memory.NewSessionRepository(cfg.Chat.SessionTTL)

	// 6. Optional infrastructure
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Invalid REDIS_URL, affiliate cache is process-local: %v", err)
		} else {
			rdb = redis.NewClient(opts)
		}
	}

	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	// 7. Pipeline components
	extractor := profile.NewExtractor(llmProvider, pipelineLogger, cfg.Chat.ExtractTimeout)
	engine := retrieval.NewEngine(coffeeRepo, embeddingProvider, pipelineLogger)
	streamer := answer.NewStreamer(llmProvider, pipelineLogger, cfg.Chat.HistoryWindow, cfg.Chat.GenerateTimeout)
	affiliates := affiliate.NewResolver(coffeeRepo, rdb, pipelineLogger)

	// 8. Services
	consumerService := service.NewConsumerService(pubSub, natsPub, sysLogger)
	chatService := service.NewChatService(
		sessionRepo,
		extractor,
		engine,
		streamer,
		pubSub,
		sysLogger,
		cfg.Chat.MaxTurns,
		cfg.Chat.TopN,
	)
	catalogService := service.NewCatalogService(coffeeRepo, engine, affiliates, consumerService)

	return &Container{
		ChatController:    controller.NewChatController(chatService),
		CatalogController: controller.NewCatalogController(catalogService),
		CatalogService:    catalogService,
		ConsumerService:   consumerService,
	}
}
