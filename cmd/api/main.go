package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"foodifusion/internal/auth"
	"foodifusion/internal/cart"
	"foodifusion/internal/config"
	"foodifusion/internal/db"
	"foodifusion/internal/events"
	"foodifusion/internal/llm"
	"foodifusion/internal/logging"
	"foodifusion/internal/menu"
	"foodifusion/internal/metrics"
	"foodifusion/internal/order"
	"foodifusion/internal/payment"
	"foodifusion/internal/restaurant"
	"foodifusion/internal/router"
	"foodifusion/internal/session"
	"foodifusion/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {

	// ───────────────────────── CONFIG ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ───────────────────────── DB ─────────────────────────
	pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("postgres connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// ───────────────────────── STORAGE ─────────────────────────
	temp := storage.NewTempStore(cfg.TempUploadDir)

	var evidence storage.EvidenceStore
	switch cfg.EvidenceBackend {
	case "r2":
		evidence, err = storage.NewR2Evidence(ctx,
			cfg.R2.Endpoint, cfg.R2.AccessKey, cfg.R2.SecretKey, cfg.R2.Bucket, cfg.R2.PublicBaseURL)
		if err != nil {
			logger.Error("r2 init failed", "error", err)
			os.Exit(1)
		}
	default:
		evidence = storage.NewLocalEvidence(cfg.PaymentDir)
	}
	logger.Info("evidence store ready", "backend", cfg.EvidenceBackend)

	// ───────────────────────── SESSIONS ─────────────────────────
	store, err := session.OpenBadger(cfg.SessionDir)
	if err != nil {
		logger.Error("session store open failed", "error", err, "dir", cfg.SessionDir)
		os.Exit(1)
	}
	defer store.Close()

	sessions := session.NewManager(store, temp, cfg.SessionTTL, logging.Component(logger, "session"))
	sweeper := session.NewSweeper(sessions, temp, cfg.SweepInterval, logging.Component(logger, "sweeper"))
	go sweeper.Run(ctx)

	m := metrics.New()

	// ───────────────────────── AUTH ─────────────────────────
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL)
	userRepo := auth.NewPostgresUserRepository(pool)
	authService := auth.NewService(userRepo, sessions, tokens)
	authHandler := auth.NewHandler(authService, logging.Component(logger, "auth"))

	// ───────────────────────── MENU / CART ─────────────────────────
	menuRepo := menu.NewPostgresRepository(pool)
	menuHandler := menu.NewHandler(menu.NewService(menuRepo), logging.Component(logger, "menu"))

	cartService := cart.NewService(store, menuRepo, cfg.DeliveryFee)
	cartHandler := cart.NewHandler(cartService, logging.Component(logger, "cart"))

	// ───────────────────────── PAYMENTS ─────────────────────────
	vision := llm.NewOpenRouterClient(
		cfg.Vision.APIKey, cfg.Vision.Model, cfg.Vision.Endpoint, cfg.Vision.Title, cfg.Vision.Timeout)
	if !vision.Configured() {
		logger.Warn("OPENROUTER_API_KEY not set, payment verification disabled")
	}

	paymentLog := logging.Component(logger, "payment")
	receiver := payment.NewReceiver(temp, cfg.UploadMaxBytes, cfg.UploadSniffContent)
	verifier := payment.NewVerifier(
		vision,
		temp,
		llm.BuildPaymentPrompt(cfg.Accounts),
		cfg.Vision.Timeout,
		cfg.Vision.MaxInFlight,
		m,
		paymentLog,
	)
	state := payment.NewState(store, temp, paymentLog)
	paymentService := payment.NewService(vision, receiver, verifier, state, m, paymentLog)
	paymentHandler := payment.NewHandler(paymentService, paymentLog)

	// ───────────────────────── ORDERS ─────────────────────────
	var publisher interface {
		order.Publisher
		restaurant.StatusPublisher
		Close() error
	} = events.Noop{}
	if brokers := events.ParseBrokers(cfg.KafkaBrokers); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers, cfg.KafkaOrderTopic)
		logger.Info("order events enabled", "brokers", brokers, "topic", cfg.KafkaOrderTopic)
	}
	defer publisher.Close()

	orderRepo := order.NewPostgresRepository(pool)
	orderLog := logging.Component(logger, "order")
	orderService := order.NewService(
		orderRepo,
		menuRepo,
		store,
		state,
		evidence,
		publisher,
		cfg.DeliveryFee,
		m,
		orderLog,
	)
	orderHandler := order.NewHandler(orderService, cartService, orderLog)

	// ───────────────────────── RESTAURANT OWNERS ─────────────────────────
	restaurantLog := logging.Component(logger, "restaurant")
	restaurantService := restaurant.NewService(
		restaurant.NewPostgresRepository(pool),
		orderRepo,
		menuRepo,
		publisher,
		restaurantLog,
	)
	restaurantHandler := restaurant.NewHandler(restaurantService, restaurantLog)

	// ───────────────────────── HTTP ─────────────────────────
	r := router.NewRouter(router.Deps{
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     m,
		Ping:        pool.Ping,
		Tokens:      tokens,
		Sessions:    sessions,
		Auth:        authHandler,
		Menu:        menuHandler,
		Cart:        cartHandler,
		Payments:    paymentHandler,
		Orders:      orderHandler,

		Restaurants: restaurantHandler,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("🚀 server running", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
