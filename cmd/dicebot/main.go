// Package main runs the dice bot behind the Telnet chat console.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/dicebot/internal/bot"
	"github.com/cory-johannsen/dicebot/internal/bot/reroll"
	"github.com/cory-johannsen/dicebot/internal/config"
	"github.com/cory-johannsen/dicebot/internal/dice"
	"github.com/cory-johannsen/dicebot/internal/frontend/handlers"
	"github.com/cory-johannsen/dicebot/internal/frontend/telnet"
	"github.com/cory-johannsen/dicebot/internal/observability"
	"github.com/cory-johannsen/dicebot/internal/server"
	"github.com/cory-johannsen/dicebot/internal/storage"
	"github.com/cory-johannsen/dicebot/internal/storage/memory"
	"github.com/cory-johannsen/dicebot/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, "dicebot")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting dicebot",
		zap.String("console_addr", cfg.Console.Addr()),
		zap.String("storage", cfg.Bot.Storage),
		zap.String("reroll_store", cfg.Bot.RerollStore),
	)

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)
	src := dice.NewCryptoSource()

	var stores storage.Stores
	switch cfg.Bot.Storage {
	case "postgres":
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		stores = pool.Stores()
		lifecycle.Add("postgres", healthService(pool, logger))
	default:
		stores = memory.New(src).Stores()
		logger.Warn("using in-memory storage; keywords, prefixes and characters are lost on exit")
	}

	var rerolls reroll.Store
	switch cfg.Bot.RerollStore {
	case "bolt":
		rerolls, err = reroll.OpenBolt(cfg.Bot.RerollPath, cfg.Bot.RerollCapacity)
		if err != nil {
			logger.Fatal("opening reroll cache", zap.String("path", cfg.Bot.RerollPath), zap.Error(err))
		}
	default:
		rerolls = reroll.NewMemoryStore(cfg.Bot.RerollCapacity)
	}
	defer rerolls.Close()

	b, err := bot.New(cfg.Bot, bot.Deps{Stores: stores, Rerolls: rerolls, Source: src}, logger.Named("bot"))
	if err != nil {
		logger.Fatal("building bot", zap.Error(err))
	}

	chat := handlers.NewChatHandler(cfg.Console, b, handlers.NewHub(), logger.Named("console"))
	acceptor := telnet.NewAcceptor(cfg.Console, chat, logger)
	lifecycle.Add("console", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})

	logger.Info("dicebot initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("commands", len(b.Registry().Commands())),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}
}

// healthService pings the database every 30 seconds and closes the pool on stop.
func healthService(pool *postgres.Pool, logger *zap.Logger) server.Service {
	done := make(chan struct{})
	return &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return nil
				case <-ticker.C:
					if err := pool.Health(context.Background(), 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() {
			close(done)
			pool.Close()
		},
	}
}
