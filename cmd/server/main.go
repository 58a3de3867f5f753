package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minaarly/internal/config"
	"github.com/Nixie-Tech-LLC/minaarly/internal/db"
	"github.com/Nixie-Tech-LLC/minaarly/internal/notify"
	"github.com/Nixie-Tech-LLC/minaarly/internal/payment"
	"github.com/Nixie-Tech-LLC/minaarly/internal/redis"
	"github.com/Nixie-Tech-LLC/minaarly/internal/viewport"
)

func main() {
	config.LoadDotEnv()

	// load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogging(cfg)

	// initialize PostgreSQL
	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	defer conn.Close()

	// run pending migrations
	applied, err := db.RunMigrations(conn, cfg.MigrationsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	log.Info().Strs("applied", applied).Msg("migrations up to date")

	store := db.NewStore(conn)

	var fetcher viewport.Fetcher = store
	var invalidators []notify.Invalidator
	if rdb := redis.NewClient(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword); rdb != nil {
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Msg("redis unreachable, cache reads will fall through")
		}
		cache := redis.NewMosqueCache(rdb, store, cfg.MapCacheTTL)
		fetcher = cache
		invalidators = append(invalidators, cache)
	} else {
		log.Info().Msg("redis disabled")
	}

	var pub notify.Publisher = notify.Nop{}
	if cfg.MQTTBrokerURL != "" {
		mqttPub, disconnect, err := notify.Connect(cfg.MQTTBrokerURL, cfg.MQTTClientID)
		if err != nil {
			log.Error().Err(err).Msg("MQTT unavailable, change notifications disabled")
		} else {
			defer disconnect()
			pub = mqttPub
		}
	}

	var payments *payment.Service
	if cfg.StripeSecretKey != "" {
		payments = payment.NewService(payment.NewStripeProvider(cfg.StripeSecretKey, nil), payment.Config{
			Currency:   cfg.CheckoutCurrency,
			SuccessURL: cfg.CheckoutSuccess,
			CancelURL:  cfg.CheckoutCancel,
		})
	} else {
		log.Info().Msg("STRIPE_SECRET_KEY not set, checkout disabled")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	live := RegisterRoutes(r, cfg, Services{
		Store:    store,
		Fetcher:  fetcher,
		Storage:  InitStorage(cfg),
		Changes:  notify.NewChanges(pub, invalidators...),
		Payments: payments,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(live.CloseAll)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
