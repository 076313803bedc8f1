// Command insided serves point-in-polygon lookups over a registry of
// geofences.
package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/anandthakker/turf-inside/internal/cache/redisstore"
	"github.com/anandthakker/turf-inside/internal/core/config"
	"github.com/anandthakker/turf-inside/internal/core/observability"
	"github.com/anandthakker/turf-inside/internal/core/router"
	"github.com/anandthakker/turf-inside/internal/core/server"
	"github.com/anandthakker/turf-inside/internal/fence"
	"github.com/anandthakker/turf-inside/internal/fence/h3index"
	"github.com/anandthakker/turf-inside/internal/invalidation/kafkaconsumer"
	"github.com/anandthakker/turf-inside/internal/logger"
	"github.com/anandthakker/turf-inside/internal/service"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "insided",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting insided",
		"addr", cfg.Addr,
		"version", Version,
		"prefilter", cfg.PrefilterOn,
		"cache", cfg.CacheEnabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := service.Options{
		CacheTTL:  cfg.CacheTTLDefault,
		OpTimeout: cfg.CacheOpTimeout,
	}

	if cfg.PrefilterOn {
		idx, err := h3index.New(cfg.H3Res)
		if err != nil {
			appLog.Error("prefilter setup failed", "err", err)
			return 1
		}
		opts.Index = idx
	}

	if cfg.CacheEnabled && cfg.RedisAddr != "" {
		rc, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Error("redis setup failed", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = rc.Close() }()
		opts.Cache = rc
	}

	store := fence.NewStore()
	loc := service.New(store, appLog, opts)

	if cfg.FenceFile != "" {
		fences, err := fence.LoadFile(cfg.FenceFile)
		if err != nil {
			appLog.Error("fence file load failed", "path", cfg.FenceFile, "err", err)
			return 1
		}
		for _, f := range fences {
			loc.Upsert(ctx, f)
		}
		appLog.Info("fence file loaded", "path", cfg.FenceFile, "fences", len(fences))
	}
	store.SetReady()

	if cfg.Invalidation.Enabled {
		kcfg := kafkaconsumer.FromBrokerList(
			cfg.Invalidation.Brokers,
			cfg.Invalidation.Topic,
			cfg.Invalidation.GroupID,
		)
		kcfg.DedupeSize = cfg.DedupeLRUSize
		consumer := kafkaconsumer.New(kcfg, appLog, loc)
		go func() {
			if err := consumer.Start(ctx); err != nil {
				appLog.Error("fence update consumer failed", "err", err)
				stop()
			}
		}()
	}

	api := router.New(appLog, loc)
	if err := server.Run(ctx, cfg, appLog, api, store); err != nil {
		appLog.Error("server failed", "err", err)
		return 1
	}
	return 0
}
