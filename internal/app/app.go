package app

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"bookshop/internal/bot"
	"bookshop/internal/config"
	"bookshop/internal/httpapi"
	"bookshop/internal/logger"
	"bookshop/internal/shop"
	"bookshop/internal/storage"
	"bookshop/internal/storage/ch"
	"bookshop/internal/storage/file"
	"bookshop/internal/storage/stubs"
	"bookshop/internal/store"
)

// App represents the application
type App struct {
	config *config.Config
	logger *zap.Logger
	store  *store.Store
	shop   *shop.Shop
	bot    *bot.Bot
	server *httpapi.Server

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	envErr := godotenv.Load()

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.NewLogger(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if envErr != nil {
		log.Debug("No .env file found, using system environment variables")
	}

	app := &App{config: cfg, logger: log}

	log.Info("Starting bookshop service", zap.String("storage_backend", cfg.StorageBackend))

	// Initialize the document store
	if err := app.initStore(); err != nil {
		return nil, err
	}

	app.shop = shop.New(app.store, shop.SystemClock{}, log)

	// Initialize bot
	if err := app.initBot(); err != nil {
		return nil, err
	}

	// Initialize HTTP server
	app.initHTTPServer()

	return app, nil
}

// openBackend selects the storage backend named in the configuration
func (a *App) openBackend() (storage.Backend, error) {
	switch a.config.StorageBackend {
	case config.BackendMemory:
		a.logger.Warn("Using in-memory storage, data is lost on exit")
		return stubs.NewMockBackend(), nil
	case config.BackendClickHouse:
		tlsStatus := "without TLS"
		if a.config.ClickHouseUseTLS {
			tlsStatus = "with TLS"
		}
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", a.config.ClickHouseHost),
			zap.Int("port", a.config.ClickHousePort),
			zap.String("database", a.config.ClickHouseDatabase),
			zap.String("user", a.config.ClickHouseUser),
			zap.String("tls", tlsStatus),
			zap.String("document", a.config.ClickHouseDocument),
		)
		backend, err := ch.NewClickHouseBackend(
			a.config.ClickHouseHost,
			a.config.ClickHousePort,
			a.config.ClickHouseDatabase,
			a.config.ClickHouseUser,
			a.config.ClickHousePassword,
			a.config.ClickHouseUseTLS,
			a.config.ClickHouseDocument,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		return backend, nil
	default:
		a.logger.Info("Using JSON file storage", zap.String("path", a.config.DataFile))
		return file.NewBackend(a.config.DataFile), nil
	}
}

// initStore opens the backend and loads the document
func (a *App) initStore() error {
	backend, err := a.openBackend()
	if err != nil {
		return err
	}

	st := store.New(backend, a.logger)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := st.Load(ctx); err != nil {
		_ = backend.Close()
		return fmt.Errorf("failed to load data: %w", err)
	}

	a.store = st
	return nil
}

// initBot initializes the Telegram bot when a token is configured
func (a *App) initBot() error {
	if !a.config.BotEnabled() {
		a.logger.Info("TELEGRAM_BOT_TOKEN not set, staff bot disabled")
		return nil
	}

	telegramBot, err := bot.NewBot(
		a.config.TelegramToken,
		a.shop,
		a.config.AllowedUserIDs,
		a.config.NotifyChatID,
		a.logger,
	)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	a.logger.Info("Bot created successfully", zap.Int64s("allowed_users", a.config.AllowedUserIDs))

	a.bot = telegramBot
	return nil
}

// initHTTPServer builds the API server; the webhook route is mounted only in webhook mode
func (a *App) initHTTPServer() {
	opts := httpapi.Options{
		Addr:        ":" + a.config.Port,
		ServiceName: a.config.ServiceName,
		CORSOrigin:  a.config.CORSOrigin,
		BotMode:     a.botMode(),
	}
	if a.bot != nil && a.config.WebhookMode {
		opts.Webhook = a.bot.WebhookHandler()
	}
	a.server = httpapi.NewServer(a.shop, opts, a.logger)
}

func (a *App) botMode() string {
	switch {
	case a.bot == nil:
		return "disabled"
	case a.config.WebhookMode:
		return "webhook"
	default:
		return "polling"
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, a.cancel = context.WithCancel(ctx)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- a.server.Start()
	}()

	if a.bot != nil {
		if err := a.startBot(ctx); err != nil {
			a.cancel()
			_ = a.Shutdown()
			return err
		}
	}

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("HTTP server error: %w", err)
		}
	}

	a.logger.Info("Shutting down...")
	return errors.Join(runErr, a.Shutdown())
}

// startBot starts the bot in the configured mode and schedules the overdue digest
func (a *App) startBot(ctx context.Context) error {
	if a.config.WebhookMode {
		// Webhook mode: configure webhook and wait for HTTP requests
		if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
		a.logger.Info("Webhook configured. Bot will receive updates via HTTP endpoint /telegram-webhook")
	} else {
		// Polling mode: actively poll Telegram servers
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.bot.Start(ctx); err != nil {
				a.logger.Error("Bot polling stopped with error", zap.Error(err))
			}
		}()
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.bot.RunOverdueDigest(ctx, a.config.OverdueDigestInterval)
	}()
	return nil
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	if a.cancel != nil {
		a.cancel()
	}

	// Shutdown HTTP server gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	a.wg.Wait()

	// Flush and close the document store
	err := a.store.Close(shutdownCtx)
	if err != nil {
		a.logger.Error("Error closing store", zap.Error(err))
	}

	a.logger.Info("Shutdown complete")
	_ = a.logger.Sync()
	return err
}
