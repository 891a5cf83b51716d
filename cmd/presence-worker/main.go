package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"chat-presence/internal/config"
	"chat-presence/internal/presence"
)

// presence-worker consumes the presence status topic and logs every
// transition. It is the template for downstream consumers such as
// last-seen persistence or notification fan-out.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.Kafka.Enabled() {
		logger.Error("KAFKA_BROKERS is not set, nothing to consume")
		os.Exit(1)
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		GroupID:        cfg.Kafka.GroupID,
		Topic:          cfg.Kafka.StatusTopic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("presence worker starting",
		"brokers", cfg.Kafka.Brokers,
		"topic", cfg.Kafka.StatusTopic,
		"group", cfg.Kafka.GroupID,
	)

	for {
		message, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("failed to read message", "error", err)
			continue
		}

		var update presence.StatusUpdate
		if err := json.Unmarshal(message.Value, &update); err != nil {
			logger.Warn("skipping malformed status update",
				"partition", message.Partition,
				"offset", message.Offset,
				"error", err,
			)
			continue
		}

		logger.Info("status update",
			"userId", update.UserID,
			"userName", update.UserName,
			"isOnline", update.IsOnline,
			"timestamp", update.Timestamp,
			"partition", message.Partition,
			"offset", message.Offset,
		)
	}

	logger.Info("presence worker stopped")
}
