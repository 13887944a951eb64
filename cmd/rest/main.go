package main

import (
	"context"
	"log"

	"spinach-be/internal/bootstrap"
	"spinach-be/internal/config"
	"spinach-be/internal/server"
	"spinach-be/internal/tracer"
	"spinach-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Push persisted settings overrides into the LLM provider
	if err := container.SettingService.ApplyOverrides(context.Background()); err != nil {
		log.Printf("Warning: could not apply stored settings: %v", err)
	}

	// 5. Start Background Services
	go func() {
		log.Println("Background: Starting Indexer Service...")
		if err := container.IndexerService.Consume(context.Background()); err != nil {
			log.Printf("Background Indexer Error: %v", err)
		}
	}()

	// 6. Initialize and Run Server
	srv := server.New(cfg, container)
	log.Fatal(srv.Run())
}
