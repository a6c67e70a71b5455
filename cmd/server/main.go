package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"vitrine/internal/cart"
	carthandler "vitrine/internal/cart/handler"
	cartmetrics "vitrine/internal/cart/metrics"
	"vitrine/internal/cart/tracker"
	"vitrine/internal/catalog"
	"vitrine/internal/platform/config"
	"vitrine/internal/platform/httpserver"
	"vitrine/internal/platform/logger"
	platformmetrics "vitrine/internal/platform/metrics"
	platformredis "vitrine/internal/platform/redis"
	"vitrine/internal/preview"
	previewmetrics "vitrine/internal/preview/metrics"
	storefronthandler "vitrine/internal/storefront/handler"
	storefrontmetrics "vitrine/internal/storefront/metrics"
	storefrontservice "vitrine/internal/storefront/service"
	"vitrine/internal/storefront/store"
	"vitrine/internal/telemetry"
	telemetrykafka "vitrine/internal/telemetry/kafka"
	httptransport "vitrine/internal/transport/http"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis init failed", "error", err)
		os.Exit(1)
	}

	// Stores: Postgres when configured, then Redis, then in-memory.
	var configStore storefrontservice.ConfigStore = store.NewInMemoryStore()
	var cartStore cart.Store = cart.NewInMemoryStore()
	var catalogStore catalog.Store = catalog.NewInMemoryStore()
	if redisClient != nil {
		configStore = store.NewRedis(redisClient.Client)
		cartStore = cart.NewRedis(redisClient.Client)
	}
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.Postgres.URL)
		if err != nil {
			log.Error("postgres init failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		configStore = store.NewPostgres(pool)
		catalogStore = catalog.NewPostgres(pool)
	}

	// Telemetry: Kafka when brokers are configured, structured log otherwise.
	var baseSink telemetry.Sink = telemetry.NewLogSink(log)
	kafkaPublisher, err := telemetrykafka.New(cfg.Kafka, log)
	if err != nil {
		log.Error("kafka init failed", "error", err)
		os.Exit(1)
	}
	if kafkaPublisher != nil {
		baseSink = kafkaPublisher
	}
	sink := telemetry.NewAsyncSink(baseSink, 256, log)

	sfMetrics := storefrontmetrics.New()
	storefront, err := storefrontservice.New(configStore,
		storefrontservice.WithLogger(log),
		storefrontservice.WithMetrics(sfMetrics),
		storefrontservice.WithTelemetry(sink),
	)
	if err != nil {
		log.Error("storefront service init failed", "error", err)
		os.Exit(1)
	}

	cMetrics := cartmetrics.New()
	abandonTracker := tracker.New(cfg.CartAbandonTimeout, sink, log, tracker.WithMetrics(cMetrics))

	carts, err := cart.New(cartStore, catalogStore,
		cart.WithLogger(log),
		cart.WithMetrics(cMetrics),
		cart.WithTelemetry(sink),
		cart.WithObserver(abandonTracker),
	)
	if err != nil {
		log.Error("cart service init failed", "error", err)
		os.Exit(1)
	}

	hub := preview.NewHub(storefront, log, preview.WithTelemetry(sink))
	tokens := preview.NewTokenIssuer(cfg.PreviewSigningKey)

	router := httptransport.NewRouter(log, platformmetrics.New(),
		preview.NewHandler(hub, tokens, cfg.AuthoringOrigin, log,
			preview.WithMetrics(previewmetrics.New())),
		storefronthandler.New(storefront, log),
		carthandler.New(carts, log),
	)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting vitrine", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := sink.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		hub.Shutdown()
		abandonTracker.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if kafkaPublisher != nil {
			if err := kafkaPublisher.Close(shutdownCtx); err != nil {
				log.Warn("kafka flush on shutdown failed", "error", err)
			}
		}
		if redisClient != nil {
			_ = redisClient.Close()
		}
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}
