package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/surehub/platform/internal/infra"
	"github.com/surehub/platform/internal/repository"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-consumer connected to postgres")

	pollInterval, err := time.ParseDuration(cfg.OutboxPollInterval)
	if err != nil {
		return fmt.Errorf("parse poll interval: %w", err)
	}

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	repo := repository.NewOutboxRepository()
	logger.Info("outbox-consumer starting",
		"poll_interval", pollInterval,
		"batch_size", cfg.OutboxBatchSize,
	)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox-consumer shutting down")
			return nil
		case <-ticker.C:
			if err := poll(ctx, pool, repo, producer, logger, cfg.OutboxBatchSize); err != nil {
				logger.Error("poll error", "error", err)
			}
		}
	}
}

// poll fetches a batch of unpublished events, publishes each to Kafka keyed
// by its partition key, and marks the published ones. A publish failure
// leaves the remainder of the batch for the next tick; at-least-once is the
// contract and consumers dedupe on event_id.
func poll(
	ctx context.Context,
	pool *pgxpool.Pool,
	repo repository.OutboxRepository,
	producer *infra.KafkaProducer,
	logger *slog.Logger,
	limit int,
) error {
	rows, err := repo.FetchUnpublishedRows(ctx, pool, limit)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	published := make([]int64, 0, len(rows))
	for _, row := range rows {
		value, err := json.Marshal(row.OutboxDraft)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", row.EventID, err)
		}

		topic := topicFor(string(row.EventType))
		if err := producer.Publish(ctx, topic, []byte(row.PartitionKey), value); err != nil {
			logger.Error("publish event",
				"seq_id", row.SeqID,
				"event_id", row.EventID,
				"topic", topic,
				"error", err,
			)
			break
		}

		logger.Info("published outbox event",
			"seq_id", row.SeqID,
			"event_id", row.EventID,
			"event_type", row.EventType,
			"aggregate_id", row.AggregateID,
			"topic", topic,
		)
		published = append(published, row.SeqID)
	}

	if len(published) == 0 {
		return nil
	}
	if err := repo.MarkPublished(ctx, pool, published); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}

	logger.Info("processed outbox batch", "count", len(published))
	return nil
}

// topicFor maps an event type like "surebet.bonus.created" to its topic
// "surebet.bonus".
func topicFor(eventType string) string {
	if i := strings.LastIndex(eventType, "."); i > 0 {
		return eventType[:i]
	}
	return eventType
}
