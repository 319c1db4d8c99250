package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/khatri-raj/healthcare-app/internal/api"
	"github.com/khatri-raj/healthcare-app/internal/config"
	"github.com/khatri-raj/healthcare-app/internal/session"
	"github.com/khatri-raj/healthcare-app/internal/web"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := session.NewFileBackend(cfg.SessionFile)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatalf("redis ping failed: %v", err)
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Printf("redis close error: %v", err)
			}
		}()
		backend = session.NewRedisBackend(redisClient)
	}

	httpClient := &http.Client{Timeout: cfg.APITimeout}
	sessions, err := session.NewStore(ctx, backend, api.Refresher(httpClient, cfg.APIBaseURL))
	if err != nil {
		log.Fatalf("session store init failed: %v", err)
	}
	client := api.New(httpClient, cfg.APIBaseURL, sessions)

	server, err := web.NewServer(sessions, client)
	if err != nil {
		log.Fatalf("server init failed: %v", err)
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("portal listening on %s (api %s)", cfg.HTTPAddr, cfg.APIBaseURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
