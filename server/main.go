package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/meikuraledutech/storytree"
	"github.com/meikuraledutech/storytree/badger"
	"github.com/meikuraledutech/storytree/gemini"
	"github.com/meikuraledutech/storytree/generator"
	"github.com/meikuraledutech/storytree/internal/config"
	"github.com/meikuraledutech/storytree/internal/logger"
	"github.com/meikuraledutech/storytree/ollama"
	"github.com/meikuraledutech/storytree/openai"
	"github.com/meikuraledutech/storytree/postgres"
	"github.com/meikuraledutech/storytree/redis"
	"github.com/meikuraledutech/storytree/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := openStore(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to open story store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	completer, model, closeAI, err := newCompleter(ctx, cfg)
	if err != nil {
		zlog.Fatal("Failed to create AI client", zap.String("provider", cfg.AIProvider), zap.Error(err))
	}
	defer closeAI()

	repo := storytree.NewRepository(kv, cfg.StoreKey, zlog)
	gen := generator.New(generator.Instrument(completer, cfg.AIProvider, model), zlog)
	session := storytree.NewSession(repo, gen, zlog)

	app := newApp(session, zlog, cfg.AITimeout)

	go func() {
		zlog.Info("Starting server",
			zap.String("port", cfg.Port),
			zap.String("store", cfg.StoreDriver),
			zap.String("ai_provider", cfg.AIProvider),
			zap.String("ai_model", model),
		)
		if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			zlog.Error("Server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zlog.Info("Shutting down server")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zlog.Error("Server shutdown failed", zap.Error(err))
	}
}

// openStore returns the KV selected by STORE_DRIVER and a func releasing it.
func openStore(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (storytree.KV, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.DriverMemory:
		zlog.Warn("Using in-memory store, stories are lost on restart")
		return storytree.NewMemoryKV(), noop, nil

	case config.DriverBadger:
		if err := os.MkdirAll(cfg.BadgerPath, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create badger dir: %w", err)
		}
		s, err := badger.Open(badger.Config{Path: cfg.BadgerPath, Logger: zlog})
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create sqlite dir: %w", err)
		}
		s, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		s := postgres.New(pool)
		if err := s.CreateSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("schema: %w", err)
		}
		return s, pool.Close, nil

	case config.DriverRedis:
		client := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s := redis.New(client, zlog)
		if err := s.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return s, func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// newCompleter returns the model client selected by AI_PROVIDER, the model
// name it talks to, and a func releasing it.
func newCompleter(ctx context.Context, cfg *config.Config) (generator.Completer, string, func(), error) {
	noop := func() {}

	switch cfg.AIProvider {
	case config.ProviderGemini:
		c, err := gemini.New(ctx, cfg.AIAPIKey, cfg.AIModel)
		if err != nil {
			return nil, "", nil, err
		}
		return c, c.Model(), func() { _ = c.Close() }, nil

	case config.ProviderOpenAI:
		c := openai.New(openai.Config{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
		})
		return c, c.Model(), noop, nil

	case config.ProviderOllama:
		c, err := ollama.New(cfg.AIBaseURL, cfg.AIModel, cfg.AITimeout)
		if err != nil {
			return nil, "", nil, err
		}
		return c, c.Model(), noop, nil
	}
	return nil, "", nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
}
