package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/evalboard/evalboard/internal/config"
	"github.com/evalboard/evalboard/internal/coordinator"
	"github.com/evalboard/evalboard/internal/engine"
	"github.com/evalboard/evalboard/internal/registry"
	"github.com/evalboard/evalboard/internal/store"
	handler "github.com/evalboard/evalboard/internal/transport/http"
	v1 "github.com/evalboard/evalboard/internal/transport/http/v1"
	"github.com/evalboard/evalboard/policy"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting evaluation coordinator...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Engine mode: %s", cfg.EngineMode)

	// Initialize store
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer db.Close()

	// Initialize evaluation engine
	var eng engine.Engine
	switch cfg.EngineMode {
	case "sse":
		eng = engine.NewSSEClient(cfg.EngineURL)
	case "subprocess":
		eng = engine.NewSubprocess(cfg.EvaluationsBin, cfg.ConfigPath, cfg.GatewayURL)
	default:
		log.Fatalf("Unknown engine mode: %s", cfg.EngineMode)
	}

	// Initialize launch policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize run registry with periodic cleanup
	reg := registry.NewRunRegistry(cfg.CompletedRetention, cfg.RunningRetention)
	stopCleanup := reg.StartPeriodicCleanup(cfg.CleanupInterval)
	defer stopCleanup()

	// Initialize coordinator
	coord := coordinator.New(reg, eng, policyEngine, cfg.StartTimeout)

	// Initialize HTTP server
	h := v1.NewHandler(coord, db, cfg)
	server := handler.NewServer(h)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down coordinator...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("Coordinator stopped")
}
