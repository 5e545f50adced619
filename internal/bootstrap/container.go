package bootstrap

import (
	"context"
	"log"

	"legal-assistant-be/internal/config"
	"legal-assistant-be/internal/controller"
	"legal-assistant-be/internal/handler"
	"legal-assistant-be/internal/pkg/logger"
	"legal-assistant-be/internal/repository/memory"
	"legal-assistant-be/internal/repository/unitofwork"
	"legal-assistant-be/internal/service"
	"legal-assistant-be/internal/websocket"
	"legal-assistant-be/pkg/conversation"
	"legal-assistant-be/pkg/ingest"
	"legal-assistant-be/pkg/llm/factory"

	pktNats "legal-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ChatEventsTopic carries controller events from the observer to the websocket relay.
const ChatEventsTopic = "chat.events"

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background Services (Exposed for main.go to run)
	ChatService     service.IChatService
	ConsumerService service.IConsumerService
	AuditService    *service.TurnAuditService // nil without NATS

	// WebSockets
	ChatEventsHandler *handler.ChatEventsHandler
	WebSocketHub      *websocket.Hub

	Logger logger.ILogger

	pubSub  *gochannel.GoChannel
	natsPub *pktNats.Publisher
	natsSub *pktNats.Subscriber
	rdb     *redis.Client
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())

	// 2. Event Bus
	// Publishing blocks until the relay has handed the frame to the hub, so
	// websocket clients see events in controller order.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            256,
			BlockPublishUntilSubscriberAck: true,
		},
		watermillLogger,
	)

	// 3. Infrastructure
	// NATS (optional)
	var (
		natsPub *pktNats.Publisher
		natsSub *pktNats.Subscriber
		err     error
	)
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
		}
	}

	// Redis (optional, only bridges websocket fan-out between instances)
	rdb := newRedisClient(cfg.App.RedisURL)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 4. Conversation
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	if cfg.Keys.GoogleGemini == "" {
		log.Printf("[WARN] API_KEY is not set; every chat turn will fail until it is configured")
	}

	searchCache := memory.NewSearchCache(cfg.Search.CacheTTL)
	transcriptStore := service.NewTranscriptStore(uowFactory, sysLogger)
	legalSearch := service.NewLegalSearchService(uowFactory, searchCache, sysLogger)
	publisherService := service.NewPublisherService(ChatEventsTopic, pubSub, sysLogger)

	chatController := conversation.NewController(
		llmProvider,
		transcriptStore,
		legalSearch,
		ingest.New(),
		conversation.WithObserver(publisherService),
		conversation.WithLogger(sysLogger),
	)

	// Keep the interface nil when NATS is not there
	var eventPublisher service.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}
	chatService := service.NewChatService(chatController, eventPublisher, sysLogger)

	consumerService := service.NewConsumerService(
		pubSub,
		ChatEventsTopic,
		wsHub,
		wsLogger,
	)

	var auditService *service.TurnAuditService
	if natsSub != nil {
		auditLogger := logger.NewIsolatedLogger(cfg.App.EventsLogFilePath)
		auditService = service.NewTurnAuditService(natsSub, auditLogger, sysLogger)
	}

	// 5. Controllers
	return &Container{
		ChatController:    controller.NewChatController(chatService),
		ChatService:       chatService,
		ConsumerService:   consumerService,
		AuditService:      auditService,
		ChatEventsHandler: handler.NewChatEventsHandler(wsHub, wsLogger),
		WebSocketHub:      wsHub,
		Logger:            sysLogger,

		pubSub:  pubSub,
		natsPub: natsPub,
		natsSub: natsSub,
		rdb:     rdb,
	}
}

func newRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: url,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Websocket events stay local", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

// Close waits for pending writes and releases the infrastructure clients.
func (c *Container) Close() {
	c.ChatService.Shutdown()

	if err := c.pubSub.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.natsSub != nil {
		c.natsSub.Close()
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		_ = c.rdb.Close()
	}
	_ = c.Logger.Sync()
}
