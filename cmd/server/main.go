package main

import (
	"context"
	"log"
	"net/http"

	"perf360/internal/app/server"
	"perf360/internal/platform/config"
	"perf360/internal/platform/db"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config invalid: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	srv, err := server.New(cfg, pool)
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}
	defer srv.Close()

	log.Printf("listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Router); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
