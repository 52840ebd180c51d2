package wire

import (
	"context"
	"time"

	"github.com/Digital-Creators-Team/lucky-draw-module/config"
	"github.com/Digital-Creators-Team/lucky-draw-module/db/redis"
	"github.com/Digital-Creators-Team/lucky-draw-module/events/kafka"
	"github.com/Digital-Creators-Team/lucky-draw-module/game"
	"github.com/Digital-Creators-Team/lucky-draw-module/httpclient"
	"github.com/Digital-Creators-Team/lucky-draw-module/logging"
	"github.com/Digital-Creators-Team/lucky-draw-module/pkg/providers"
	"github.com/Digital-Creators-Team/lucky-draw-module/provider"
	"github.com/Digital-Creators-Team/lucky-draw-module/reel"
	"github.com/Digital-Creators-Team/lucky-draw-module/server"
	"github.com/google/wire"
	"github.com/rs/zerolog"
)

const nameFeedBuffer = 16

// Service is everything the serve command runs.
type Service struct {
	App        *server.App
	Registry   *game.Registry
	Dispatcher *provider.Dispatcher
	Consumer   *kafka.Consumer
}

// ProvideLogger provides a zerolog.Logger
func ProvideLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideRedisClient connects to Redis. It returns nil when no address is
// configured.
func ProvideRedisClient(cfg *config.Config, logger zerolog.Logger) (*redis.Client, func(), error) {
	if !cfg.Redis.Enabled() {
		logger.Info().Msg("Redis disabled, name lists are not persisted")
		return nil, func() {}, nil
	}
	client, err := redis.New(cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Redis client")
		}
	}
	return client, cleanup, nil
}

// ProvideNameProvider provides the name list snapshot store, or nil.
func ProvideNameProvider(cfg *config.Config, client *redis.Client, logger zerolog.Logger) providers.NameProvider {
	if client == nil {
		return nil
	}
	return provider.NewRedisNameProvider(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL, logger)
}

// ProvideProducer provides the Kafka producer. It returns nil without brokers.
func ProvideProducer(cfg *config.Config, logger zerolog.Logger) (*kafka.Producer, func()) {
	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	if producer == nil {
		logger.Info().Msg("Kafka disabled, reel events are not published")
		return nil, func() {}
	}
	return producer, func() {
		if err := producer.Close(); err != nil {
			logger.Error().Err(err).Msg("Error closing Kafka producer")
		}
	}
}

// ProvideEventProviders collects the configured event sinks.
func ProvideEventProviders(cfg *config.Config, producer *kafka.Producer, logger zerolog.Logger) []providers.EventProvider {
	var out []providers.EventProvider
	if producer != nil {
		out = append(out, provider.NewKafkaEventProvider(producer, cfg.Kafka.Topic(config.TopicReelEvents), "", logger))
	}
	if cfg.Webhook.URL != "" {
		client := httpclient.New(httpclient.Config{
			BaseURL:    cfg.Webhook.URL,
			Timeout:    cfg.Webhook.Timeout,
			Logger:     logger,
			MaxRetries: 2,
		})
		out = append(out, provider.NewWebhookEventProvider(client, cfg.Webhook.Events, logger))
	}
	return out
}

// ProvideDispatcher provides the reel observer. Cleanup waits for pending
// deliveries.
func ProvideDispatcher(names providers.NameProvider, events []providers.EventProvider, logger zerolog.Logger) (*provider.Dispatcher, func()) {
	d := provider.NewDispatcher(names, events, logger)
	return d, d.Wait
}

// ProvideReelConfigs loads the reel definitions named by reels.config_path.
func ProvideReelConfigs(cfg *config.Config) ([]*game.ReelConfig, error) {
	return game.LoadReelConfigs(cfg.Reels.ConfigPath)
}

// ProvideRegistry builds every reel and restores saved name lists.
func ProvideRegistry(cfg *config.Config, logger zerolog.Logger, dispatcher *provider.Dispatcher, reels []*game.ReelConfig) (*game.Registry, error) {
	registry := game.NewRegistry(game.BuildOptions{
		Logger:    logger,
		Observer:  dispatcher,
		Reporter:  reel.LogReporter{Logger: logger},
		TimeScale: cfg.Reels.TimeScale,
		Buffer:    cfg.Reels.Buffer,
	})
	if err := registry.AddAll(reels); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, r := range registry.Reels() {
		restored, err := dispatcher.Restore(ctx, r)
		if err != nil {
			logger.Warn().Err(err).Str("reel_code", r.Code()).Msg("Failed to restore name list")
			continue
		}
		if restored {
			logger.Info().Str("reel_code", r.Code()).Int("count", len(r.Names())).Msg("Name list restored")
		}
	}
	return registry, nil
}

// ProvideServerOptions provides server options
func ProvideServerOptions(cfg *config.Config, logger zerolog.Logger, registry *game.Registry) server.Options {
	return server.Options{
		Config:   cfg,
		Logger:   logger,
		Registry: registry,
	}
}

// ProvideApp provides the main application with every route registered.
func ProvideApp(opts server.Options) *server.App {
	app := server.New(opts)
	app.UseCommonMiddlewares()
	app.RegisterHealthCheck()
	app.RegisterReelRoutes()
	return app
}

// ProvideNameConsumer starts the names.replace consumer and feeds it into
// app. It returns nil when Kafka is disabled.
func ProvideNameConsumer(cfg *config.Config, app *server.App, logger zerolog.Logger) (*kafka.Consumer, func(), error) {
	if !cfg.Kafka.Enabled() {
		return nil, func() {}, nil
	}

	feed := make(chan server.NameUpdate, nameFeedBuffer)
	app.AttachNameFeed(feed)

	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:       cfg.Kafka.Brokers,
		Topic:         cfg.Kafka.Topic(config.TopicNameCommands),
		ConsumerGroup: cfg.Kafka.ConsumerGroup,
		Logger:        logger,
	}, func(ctx context.Context, reelCode string, cmd kafka.ReplaceNames) error {
		select {
		case feed <- server.NameUpdate{ReelCode: reelCode, Names: cmd.Names, OperatorID: cmd.OperatorID}:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	consumer.SetReelFilter(app.Registry().Has)
	if err := consumer.Start(); err != nil {
		return nil, nil, err
	}
	return consumer, func() {
		if err := consumer.Stop(); err != nil {
			logger.Error().Err(err).Msg("Error stopping Kafka consumer")
		}
	}, nil
}

// LoggingSet is the wire provider set for logging
var LoggingSet = wire.NewSet(
	ProvideLogger,
)

// StorageSet is the wire provider set for the name list snapshot
var StorageSet = wire.NewSet(
	ProvideRedisClient,
	ProvideNameProvider,
)

// EventSet is the wire provider set for lifecycle event delivery
var EventSet = wire.NewSet(
	ProvideProducer,
	ProvideEventProviders,
	ProvideDispatcher,
)

// ReelSet is the wire provider set for hosted reels
var ReelSet = wire.NewSet(
	ProvideReelConfigs,
	ProvideRegistry,
)

// ServerSet is the wire provider set for server
var ServerSet = wire.NewSet(
	ProvideServerOptions,
	ProvideApp,
	ProvideNameConsumer,
)

// FullSet includes every provider of the serve command
var FullSet = wire.NewSet(
	LoggingSet,
	StorageSet,
	EventSet,
	ReelSet,
	ServerSet,
	wire.Struct(new(Service), "*"),
)
