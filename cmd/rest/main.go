package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notefiber-editor-be/internal/bootstrap"
	"notefiber-editor-be/internal/config"
	"notefiber-editor-be/internal/server"
	"notefiber-editor-be/internal/tracer"
	"notefiber-editor-be/pkg/database"
)

func main() {
	// 1. Configuration and logging
	cfg := config.Load()

	sysLogger := bootstrap.NewLogger(cfg)
	defer sysLogger.Sync()

	shutdownTracer := tracer.InitTracer(cfg.Tracing, cfg.App.InstanceID, sysLogger)
	defer shutdownTracer(context.Background())

	// 2. Database
	gormDB, err := database.Open(cfg.Database.Connection, bootstrap.DatabaseOptions(cfg.Database, sysLogger))
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Dependencies
	container := bootstrap.NewContainer(gormDB, cfg, sysLogger)

	// 4. Background services
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := container.WebSocketHub.Start(ctx); err != nil {
		sysLogger.Warn("Main", "Event hub fanout unavailable", map[string]interface{}{"error": err.Error()})
	}
	if err := container.SyncService.Start(); err != nil {
		sysLogger.Warn("Main", "Cluster sync unavailable", map[string]interface{}{"error": err.Error()})
	}
	container.Editor.Start(ctx)

	// 5. HTTP
	srv := server.New(cfg, container)
	go func() {
		if err := srv.Run(); err != nil {
			sysLogger.Error("Main", "Server stopped", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	sysLogger.Info("Main", "Shutting down", nil)

	// Flush the open note before anything it depends on goes away.
	teardownCtx, cancel := context.WithTimeout(context.Background(), cfg.Editor.FlushTimeout+time.Second)
	defer cancel()
	if err := container.Editor.Teardown(teardownCtx); err != nil {
		sysLogger.Error("Main", "Editor teardown failed", map[string]interface{}{"error": err.Error()})
	}

	if err := srv.Shutdown(); err != nil {
		sysLogger.Warn("Main", "Server shutdown", map[string]interface{}{"error": err.Error()})
	}
	container.Close()
}
