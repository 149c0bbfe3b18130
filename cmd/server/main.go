package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"cardlink/internal/card"
	"cardlink/internal/claim"
	claimmetrics "cardlink/internal/claim/metrics"
	"cardlink/internal/event"
	"cardlink/internal/platform/config"
	"cardlink/internal/platform/database"
	"cardlink/internal/platform/httpserver"
	"cardlink/internal/platform/logger"
	platformredis "cardlink/internal/platform/redis"
	"cardlink/internal/token"
	httptransport "cardlink/internal/transport/http"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var cards card.Store
	var events event.Store
	if cfg.DatabaseURL != "" {
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database open failed: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("database ping failed: %v", err)
		}
		defer db.Close()
		cards = card.NewPostgresStore(db)
		events = event.NewPostgresStore(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		cards = card.NewMemoryStore()
		events = event.NewMemoryStore()
	}

	var counter event.ScanCounter
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis connect failed: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		counter = event.NewRedisCounter(redisClient)
	}

	codec := token.NewCodec(cfg.SigningKey, cfg.ClaimTokenTTL, cfg.OwnershipTokenTTL)
	claims := claim.NewService(cards, codec, claimmetrics.New())
	recorder := event.NewRecorder(events, counter, log)

	handler := httptransport.NewHandler(claims, cards, recorder, log, cfg.AdminKey)
	router := httptransport.NewRouter(handler)

	srv := httpserver.New(cfg.Addr, router)

	log.Infof("starting cardlink on %s", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}
