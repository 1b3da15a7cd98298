package bootstrap

import (
	"context"
	"log"

	"notefiber-editor-be/internal/config"
	"notefiber-editor-be/internal/controller"
	"notefiber-editor-be/internal/handler"
	"notefiber-editor-be/internal/pkg/logger"
	"notefiber-editor-be/internal/repository/memory"
	"notefiber-editor-be/internal/repository/unitofwork"
	"notefiber-editor-be/internal/service"
	"notefiber-editor-be/internal/websocket"
	"notefiber-editor-be/pkg/database"
	"notefiber-editor-be/pkg/editor"
	"notefiber-editor-be/pkg/editor/bridge"
	"notefiber-editor-be/pkg/eventbus"
	"notefiber-editor-be/pkg/events"

	pktNats "notefiber-editor-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	EditorController controller.IEditorController

	// WebSockets
	EditorSocketHandler *handler.EditorSocketHandler
	WebSocketHub        *websocket.Hub

	// Background services (started and stopped by main.go)
	Editor      *editor.Controller
	SyncService *service.SyncService

	Logger logger.ILogger

	bus      *eventbus.Bus
	natsConn *pktNats.Conn
	rdb      *redis.Client
	eventSub *eventbus.Subscription
	vaults   service.IVaultService
}

// EditorOptions converts the config section into controller options.
func EditorOptions(cfg config.EditorConfig) editor.Options {
	return editor.Options{
		DebounceDelay: cfg.DebounceDelay,
		ProbeTimeout:  cfg.ProbeTimeout,
		ProbeInterval: cfg.ProbeInterval,
		FlushTimeout:  cfg.FlushTimeout,
	}
}

// NewLogger builds the main application logger.
func NewLogger(cfg *config.Config) logger.ILogger {
	return logger.NewZapLogger(logger.Options{
		FilePath:   cfg.App.LogFilePath,
		Production: cfg.App.Environment == "production",
		Level:      cfg.App.LogLevel,
	})
}

// DatabaseOptions converts the config section into pool and SQL log options.
func DatabaseOptions(cfg config.DatabaseConfig, log logger.ILogger) database.Options {
	opts := database.DefaultOptions()
	opts.MaxOpenConns = cfg.MaxOpenConns
	opts.MaxIdleConns = cfg.MaxIdleConns
	opts.SlowThreshold = cfg.SlowQuery
	opts.TraceSQL = cfg.TraceSQL
	opts.Logger = log
	return opts
}

func NewContainer(db *gorm.DB, cfg *config.Config, sysLogger logger.ILogger) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	surfaceLogger := logger.NewIsolatedLogger(cfg.App.SurfaceLogFilePath)

	// 2. Event bus
	bus := eventbus.New(sysLogger)

	// 3. Infrastructure. NATS and Redis are optional; the editor works on a
	// single instance without them.
	var (
		natsPub *pktNats.Publisher
		natsSub *pktNats.Subscriber
	)
	natsConn, err := pktNats.Connect(cfg.App.NatsURL, sysLogger)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS: %v", err)
	} else {
		natsPub = pktNats.NewPublisher(natsConn)
		natsSub = pktNats.NewSubscriber(natsConn)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Events stay on this instance", err)
		rdb.Close()
		rdb = nil
	}

	wsHub := websocket.NewHub(rdb, cfg.App.InstanceID, sysLogger)
	eventSub, err := bus.Subscribe(wsHub.HandleEvent, events.EditorEventTypes...)
	if err != nil {
		log.Fatalf("[FATAL] Failed to subscribe hub to editor events: %v", err)
	}

	// 4. Editor core
	unlocks := memory.NewUnlockRepository(cfg.Editor.VaultUnlockTTL)
	vaultService := service.NewVaultService(uowFactory, unlocks, bus, cfg.Editor.UnlockTimeout, sysLogger)
	noteStore := service.NewNoteStore(uowFactory, unlocks, sysLogger)

	surfaceBridge := bridge.New(surfaceLogger)
	editorCtrl := editor.NewController(
		surfaceBridge,
		noteStore,
		vaultService,
		bus,
		EditorOptions(cfg.Editor),
		sysLogger,
	)

	// 5. Services
	var cluster service.IEventPublisher
	var subscriber service.IEventSubscriber
	if natsPub != nil {
		cluster = natsPub
		subscriber = natsSub
	}
	editorService := service.NewEditorService(uowFactory, editorCtrl, vaultService, cluster, sysLogger)
	syncService := service.NewSyncService(bus, subscriber, cluster, editorCtrl, cfg.App.InstanceID, sysLogger)

	// 6. Controllers and handlers
	return &Container{
		EditorController:    controller.NewEditorController(editorService, vaultService, cfg.App.JwtSecret),
		EditorSocketHandler: handler.NewEditorSocketHandler(editorCtrl, surfaceBridge, wsHub, cfg.App.JwtSecret, surfaceLogger),
		WebSocketHub:        wsHub,
		Editor:              editorCtrl,
		SyncService:         syncService,
		Logger:              sysLogger,
		bus:                 bus,
		natsConn:            natsConn,
		rdb:                 rdb,
		eventSub:            eventSub,
		vaults:              vaultService,
	}
}

// Close releases infrastructure after the editor has been torn down.
func (c *Container) Close() {
	c.vaults.LockAll()
	c.SyncService.Stop()
	c.eventSub.Close()
	if err := c.bus.Close(); err != nil {
		log.Printf("[WARN] Failed to close event bus: %v", err)
	}
	if c.natsConn != nil {
		c.natsConn.Close()
	}
	if c.rdb != nil {
		c.rdb.Close()
	}
}
