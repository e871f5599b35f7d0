package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/example/storefront/internal/api"
	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain/auth"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/review"
	"github.com/example/storefront/internal/domain/wishlist"
	"github.com/example/storefront/internal/events"
	"github.com/example/storefront/internal/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	st, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to open persistent store")
	}
	defer st.Close()
	log.WithField("backend", cfg.StoreBackend).Info("persistent store ready")

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		log.WithField("topic", cfg.KafkaTopic).Info("kafka publisher ready")
	}
	defer publisher.Close()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)

	authenticator, err := newAuthenticator(cfg, tokens, st)
	if err != nil {
		log.WithError(err).Fatal("failed to build authenticator")
	}

	// Managers are constructed once per session and passed by
	// reference; each rehydrates its collection from the store.
	cartMgr := cart.NewManager(st, log)
	wishMgr := wishlist.NewManager(st, log)
	authMgr := auth.NewManager(authenticator, st, log)
	orderMgr := order.NewManager(st, publisher, log)
	reviewMgr := review.NewManager(st, log)

	catalogClient := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout)

	handlers := api.NewHandlers(catalogClient, cartMgr, wishMgr, authMgr, orderMgr, reviewMgr, log)
	router := api.NewRouter(handlers, log)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("storefront listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("shutdown failed")
	}
}

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case "file":
		return store.NewFileStore(cfg.DataDir)
	case "postgres":
		return store.ConnectPostgres(cfg.DatabaseURL)
	case "redis":
		return store.ConnectRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func newAuthenticator(cfg config.Config, tokens *auth.TokenService, st store.Store) (auth.Authenticator, error) {
	switch cfg.AuthBackend {
	case "mock":
		return auth.NewMockAuthenticator(tokens, cfg.AuthDelay), nil
	case "local":
		return auth.NewLocalAuthenticator(tokens, st)
	default:
		return nil, fmt.Errorf("unknown auth backend %q", cfg.AuthBackend)
	}
}
