package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"dailybet/api"
	"dailybet/application"
	"dailybet/config"
	"dailybet/database"
	"dailybet/domain/events"
	"dailybet/infrastructure"
	"dailybet/infrastructure/etherscan"
	"dailybet/infrastructure/notify"
	"dailybet/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// ConfigureLogging applies the configured log level and format
func ConfigureLogging(cfg *config.Config) {
	log.SetOutput(os.Stdout)
	if strings.EqualFold(cfg.LogFormat, "json") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithField("level", cfg.LogLevel).Warn("Unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	ConfigureLogging(cfg)
	log.Info("Starting dailybet server...")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	log.Info("Initializing metrics...")
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	log.WithField("broker", cfg.EventBroker).Info("Initializing event publisher...")
	sink, err := newEventSink(ctx, cfg)
	if err != nil {
		return err
	}
	eventPublisher := infrastructure.NewDomainEventPublisher(sink)
	defer func() {
		if err := eventPublisher.Close(); err != nil {
			log.WithError(err).Error("Error closing event publisher")
		}
	}()

	registry := notify.NewRegistry()
	eventPublisher.RegisterGlobalHandler(registry.HandleEvent)
	eventPublisher.RegisterGlobalHandler(metrics.HandleEvent)

	if cfg.DiscordToken != "" && cfg.DiscordAnnounceChannelID != "" {
		log.Info("Initializing Discord announcer...")
		announcer, err := infrastructure.NewDiscordAnnouncer(cfg.DiscordToken, cfg.DiscordAnnounceChannelID)
		if err != nil {
			return fmt.Errorf("failed to initialize Discord announcer: %w", err)
		}
		eventPublisher.RegisterLocalHandler(events.EventTypeDailyLineUpdated, announcer.HandleEvent)
		eventPublisher.RegisterLocalHandler(events.EventTypeLineResolved, announcer.HandleEvent)
	}

	log.Info("Initializing handlers...")
	uowFactory := infrastructure.NewUnitOfWorkFactory(db, eventPublisher)
	userLocks := application.NewUserLocks()
	lookup := etherscan.NewClient(cfg.EtherscanBaseURL, cfg.EtherscanAPIKey, cfg.EtherscanTimeout)

	server := api.NewServer(api.Dependencies{
		Accounts:   application.NewAccountHandler(uowFactory),
		Betting:    application.NewBettingHandler(uowFactory, userLocks),
		Settlement: application.NewSettlementHandler(uowFactory, userLocks, eventPublisher),
		Wallet:     application.NewWalletHandler(uowFactory, userLocks, lookup, cfg.PlatformWallet),
		Tokens:     api.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Sockets:    notify.NewServer(registry, cfg.IsOriginAllowed),
		Health:     db,
		Recorder:   metrics.RecordHTTPRequest,
		Config:     cfg,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Infof("Server is running in %s mode", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	}

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	if err := metrics.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down metrics")
	}

	log.Info("Shutdown completed")
	return nil
}

// newEventSink connects the configured broker. A nil sink keeps events in process.
func newEventSink(ctx context.Context, cfg *config.Config) (infrastructure.EventSink, error) {
	switch strings.ToLower(cfg.EventBroker) {
	case "", "none":
		return nil, nil
	case "nats":
		client := infrastructure.NewNATSClient(cfg.NATSServers)
		if err := client.Connect(ctx); err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		sink := infrastructure.NewNATSEventSink(client, infrastructure.NewEventSubjectMapper())
		if err := sink.EnsureDomainEventStream(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to create domain event stream: %w", err)
		}
		return sink, nil
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("KAFKA_BROKERS is required when EVENT_BROKER=kafka")
		}
		return infrastructure.NewKafkaEventSink(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unknown event broker: %s", cfg.EventBroker)
	}
}
