// Command feedtail prints catalog change events from Kafka, one JSON object per line.
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

	"storefront/internal/model"
	"storefront/internal/queue"

	"github.com/spf13/pflag"
)

func main() {
	brokers := pflag.String("brokers", envOr("KAFKA_BROKERS", "localhost:9092"), "comma-separated Kafka brokers")
	topic := pflag.String("topic", envOr("KAFKA_TOPIC", "storefront-catalog-events"), "catalog event topic")
	group := pflag.String("group", "storefront-feedtail", "consumer group id")
	pflag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := queue.NewConsumer(strings.Split(*brokers, ","), *topic, *group, logger)
	defer consumer.Close()

	enc := json.NewEncoder(os.Stdout)
	consumer.Run(ctx, func(e model.CatalogEvent) {
		if err := enc.Encode(e); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	})
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
