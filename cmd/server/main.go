package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/wanderplan/wanderplan/internal/api"
	"github.com/wanderplan/wanderplan/internal/assistant"
	"github.com/wanderplan/wanderplan/internal/cache"
	"github.com/wanderplan/wanderplan/internal/trip"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(log); err != nil {
		log.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	weatherKey := mustEnv("OPENWEATHER_API_KEY")
	placesKey := mustEnv("FOURSQUARE_API_KEY")
	geminiKey := mustEnv("GEMINI_API_KEY")
	redisURL := getEnv("REDIS_URL", "")
	port := getEnv("PORT", "8080")
	cacheTTL := getDurationEnv("CACHE_TTL_SECONDS", cache.DefaultTTL)

	ctx := context.Background()

	// Connect to Redis. Caching is best-effort: an unreachable store
	// downgrades the server to cacheless operation instead of failing boot.
	var planCache trip.PlanCache
	var cachePing api.CachePinger
	if redisURL == "" {
		log.Warn("REDIS_URL not set, caching disabled")
	} else if redisClient, err := cache.Connect(ctx, redisURL); err != nil {
		log.Warn("redis unavailable, caching disabled", "err", err)
	} else {
		defer func() { _ = redisClient.Close() }()
		planCache = cache.New(redisClient, cacheTTL)
		cachePing = &redisPingerAdapter{client: redisClient}
		log.Info("redis connection established", "ttl", cacheTTL)
	}

	gemini, err := assistant.NewGeminiClient(ctx, geminiKey)
	if err != nil {
		return fmt.Errorf("creating gemini client: %w", err)
	}

	// Wire dependencies.
	planner := trip.NewPlanner(weatherKey, placesKey, planCache, log)
	chat := assistant.New(gemini, planner, log)
	handlers := api.NewHandlers(planner, chat, cachePing, log)
	router := api.NewRouter(handlers, log)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("listening: %w", err)
		}
	}()

	select {
	case sig := <-quit:
		log.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server shut down cleanly")
	return nil
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable not set", "key", key)
		os.Exit(1)
	}
	return v
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		slog.Warn("ignoring invalid duration environment variable", "key", key, "value", v)
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// redisPingerAdapter adapts redis.Client to the api.CachePinger interface.
type redisPingerAdapter struct {
	client *redis.Client
}

func (r *redisPingerAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
