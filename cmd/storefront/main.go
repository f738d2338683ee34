// Package main запускает HTTP-сервер витрины.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/storefront-system/internal/assistant"
	"github.com/mmeshcher/storefront-system/internal/backend"
	"github.com/mmeshcher/storefront-system/internal/cart"
	"github.com/mmeshcher/storefront-system/internal/catalog"
	"github.com/mmeshcher/storefront-system/internal/checkout"
	"github.com/mmeshcher/storefront-system/internal/config"
	"github.com/mmeshcher/storefront-system/internal/events"
	"github.com/mmeshcher/storefront-system/internal/handler"
	"github.com/mmeshcher/storefront-system/internal/mailer"
	"github.com/mmeshcher/storefront-system/internal/middleware"
	"github.com/mmeshcher/storefront-system/internal/repository"
	"github.com/mmeshcher/storefront-system/internal/service"
	"github.com/mmeshcher/storefront-system/internal/session"
)

const sessionCleanupInterval = time.Hour

type storeResources struct {
	store   session.Store
	sweeper service.Sweeper
	close   func()
}

func openStore(ctx context.Context, cfg *config.Config) (*storeResources, error) {
	switch cfg.SessionStore {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddress})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return &storeResources{
			store: session.NewRedisStore(client, cfg.SessionTTL),
			close: func() { _ = client.Close() },
		}, nil
	case config.StorePostgres:
		repo, err := repository.NewPostgresRepository(cfg.DatabaseURI)
		if err != nil {
			return nil, err
		}
		return &storeResources{
			store:   repo,
			sweeper: repo,
			close:   func() { _ = repo.Close() },
		}, nil
	default:
		store := session.NewMemoryStore()
		return &storeResources{
			store:   store,
			sweeper: store,
			close:   func() {},
		}, nil
	}
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := openStore(ctx, cfg)
	if err != nil {
		sugar.Fatalw("session store initialization error", "store", cfg.SessionStore, "error", err.Error())
	}
	defer res.close()

	sessions := session.NewManager(res.store)
	bus := events.NewBus()
	api := backend.NewClient(cfg.BackendAddress, cfg.BackendTimeout)

	mail := mailer.NewClient(mailer.Config{
		APIAddress:      cfg.Mail.APIAddress,
		ServiceID:       cfg.Mail.ServiceID,
		TemplateID:      cfg.Mail.TemplateID,
		ReplyTemplateID: cfg.Mail.ReplyTemplateID,
		SenderName:      cfg.Mail.SenderName,
		PublicKey:       cfg.Mail.PublicKey,
		PrivateKey:      cfg.Mail.PrivateKey,
		RatePerSec:      cfg.Mail.RatePerSec,
	})
	if !cfg.MailEnabled() {
		sugar.Warn("mail service is not configured, order confirmations and contact replies will be skipped")
	}

	var generator assistant.Generator
	if cfg.GeminiAPIKey != "" {
		gemini, err := assistant.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			sugar.Warnw("assistant generator disabled", "error", err.Error())
		} else {
			generator = gemini
		}
	}

	carts := cart.NewService(api, sessions, bus, logger)
	account := service.NewService(api, sessions, bus, logger)
	products := catalog.NewService(api)

	h := handler.NewHandler(handler.Services{
		Account:  account,
		Catalog:  products,
		Contacts: service.NewContacts(api, mail, logger),
		Cart:     carts,
		Checkout: checkout.NewService(api, mail, carts, sessions, bus, logger),
		Admin:    service.NewAdmin(api),
		Assistant: assistant.New(assistant.Sources{
			Carts:    carts,
			Orders:   account,
			Profiles: account,
			Catalog:  products,
		}, generator, sessions, logger),
		Events: bus,
	}, logger, middleware.NewSessionMiddleware(cfg.CookieSecret, cfg.SessionTTL))

	r := h.SetupRouter()

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: otelhttp.NewHandler(r, "storefront"),
	}

	g, ctx := errgroup.WithContext(ctx)

	// Фоновая очистка просроченных сессий (Redis истекает сам)
	if res.sweeper != nil {
		g.Go(func() error {
			service.StartSessionCleanup(ctx, res.sweeper, cfg.SessionTTL, sessionCleanupInterval, logger)
			return nil
		})
	}

	// Запуск HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting storefront server",
			"addr", cfg.RunAddress,
			"backend", cfg.BackendAddress,
			"store", cfg.SessionStore,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		// Закрытие шины завершает открытые SSE-потоки до ожидания Shutdown.
		bus.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
