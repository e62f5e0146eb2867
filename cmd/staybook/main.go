package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	bookingapp "staybook/internal/app/handlers/booking"
	meapp "staybook/internal/app/handlers/me"
	"staybook/internal/app/policies"
	"staybook/internal/domain/auth"
	"staybook/internal/domain/pricing"
	"staybook/internal/domain/shared/money"
	"staybook/internal/infra/backend"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/obs"
	"staybook/internal/infra/session"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && (args[0] == "serve" || args[0] == "book") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	logger := obs.NewLogger(cfg.Env, cfg.LogLevel, os.Stderr)

	switch cmd {
	case "book":
		err = runBook(ctx, cfg, logger, args, os.Stdout)
	default:
		err = runServe(ctx, cfg, logger)
	}
	if err != nil {
		logger.Error("staybook failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// application holds the adapters shared by both commands.
type application struct {
	backend  *backend.Client
	fees     pricing.FeeSchedule
	notifier policies.Notifier
	closers  []func() error
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

func buildApplication(cfg config.Config, logger *slog.Logger) (*application, error) {
	client, err := backend.NewClient(backend.Config{
		BaseURL:          cfg.BackendURL,
		Timeout:          cfg.BackendTimeout,
		PropertyCacheTTL: cfg.PropertyCacheTTL,
	}, logger)
	if err != nil {
		return nil, err
	}
	app := &application{backend: client, fees: feeSchedule(cfg)}
	app.closers = append(app.closers, func() error { client.Close(); return nil })

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.KafkaBrokers, Timeout: cfg.BackendTimeout})
		if err != nil {
			logger.Warn("kafka disabled", "error", err, "brokers", cfg.KafkaBrokers)
		} else {
			app.notifier = kafka.Notifier{Producer: producer, Topic: cfg.KafkaTopic, Logger: logger}
			app.closers = append(app.closers, producer.Close)
			logger.Info("kafka notifier enabled", "topic", cfg.KafkaTopic)
		}
	}
	return app, nil
}

func feeSchedule(cfg config.Config) pricing.FeeSchedule {
	return pricing.FeeSchedule{
		CleaningFee: money.Must(cfg.CleaningFeeCents, money.DefaultCurrency),
		ServiceFee:  money.Must(cfg.ServiceFeeCents, money.DefaultCurrency),
	}
}

func (a *application) submitter(sessions auth.Accessor, cfg config.Config, logger *slog.Logger) *bookingapp.RequestBookingHandler {
	return &bookingapp.RequestBookingHandler{
		Gateway:       a.backend,
		Sessions:      sessions,
		Pricing:       a.fees,
		Notifier:      a.notifier,
		Logger:        logger,
		RedirectDelay: cfg.RedirectDelay,
	}
}

func runServe(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	if err := cfg.ValidateServe(); err != nil {
		return err
	}
	app, err := buildApplication(cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	resolver, checks, err := buildResolver(ctx, cfg, app)
	if err != nil {
		return err
	}

	sessions := auth.ContextAccessor{}
	handlers := ginserver.Handlers{
		Quote: ginserver.QuoteHandler{Properties: app.backend, Pricing: app.fees},
		Booking: ginserver.BookingHandler{
			Properties: app.backend,
			Submit:     app.submitter(sessions, cfg, logger),
			Lookups:    &bookingapp.GetBookingHandler{Gateway: app.backend, Sessions: sessions, Logger: logger},
			Cancels:    &bookingapp.CancelBookingHandler{Gateway: app.backend, Sessions: sessions, Logger: logger},
		},
		Me:             ginserver.MeHandler{Bookings: &meapp.ListGuestBookingsHandler{Gateway: app.backend, Sessions: sessions, Logger: logger}},
		AuthMiddleware: ginserver.AuthMiddleware{Resolver: resolver, Logger: logger}.Handle,
	}
	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{Checks: checks}, handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "backend", cfg.BackendURL, "session_mode", cfg.SessionMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("HTTP server stopped")
	return nil
}

// buildResolver picks the token resolver for SESSION_MODE and the readiness checks that go with it.
func buildResolver(ctx context.Context, cfg config.Config, app *application) (auth.TokenResolver, map[string]obs.Check, error) {
	checks := map[string]obs.Check{"backend": app.backend.Ping}
	switch cfg.SessionMode {
	case config.SessionModeRedis:
		client, err := session.NewRedisClient(ctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		app.closers = append(app.closers, client.Close)
		store := session.RedisStore{Client: client, Prefix: cfg.RedisPrefix}
		checks["redis"] = store.Ping
		return store, checks, nil
	default:
		return session.JWTResolver{Secret: []byte(cfg.JWTSecret), Leeway: 30 * time.Second}, checks, nil
	}
}
