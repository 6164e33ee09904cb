package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/queue"
	"storefront/internal/repos"
)

func openStore(ctx context.Context, cfg config.StoreConfig) (repos.DocumentStore, error) {
	switch cfg.Driver {
	case "sqlite", "":
		db, err := repos.OpenDB(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return repos.NewSQLiteStore(db), nil
	case "mongo":
		store, err := repos.NewMongoStore(repos.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		if err := store.CreateIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// openBroker connects to RabbitMQ when a URL is configured. Without one, or
// when the broker is down, events are dropped.
func openBroker(url string, log *zap.SugaredLogger) queue.Broker {
	if url == "" {
		return queue.NopBroker{}
	}
	broker, err := queue.NewRabbitMQBroker(queue.Config{URL: url})
	if err != nil {
		log.Warnw("rabbitmq unavailable, events disabled", "error", err)
		return queue.NopBroker{}
	}
	return broker
}
