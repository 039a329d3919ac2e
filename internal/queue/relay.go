package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/model"

	rd "github.com/redis/go-redis/v9"
)

// Publisher is where the Relay sends events. *Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, event model.CatalogEvent) error
}

// Relay drains the catalog event stream into a Publisher.
// A message is acked only after it was published; failures leave it pending for the next pass.
type Relay struct {
	rdb       *rd.Client
	publisher Publisher
	logger    *slog.Logger

	stream   string
	group    string
	consumer string
}

func NewRelay(rdb *rd.Client, publisher Publisher, stream, group, consumer string, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		rdb:       rdb,
		publisher: publisher,
		logger:    logger,
		stream:    stream,
		group:     group,
		consumer:  consumer,
	}
}

// Run blocks until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	if err := r.ensureGroup(ctx); err != nil {
		r.logger.Error("relay ensure group", "err", err)
		return
	}

	for {
		if ctx.Err() != nil {
			return
		}
		if _, err := r.poll(ctx, 2*time.Second); err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			r.logger.Warn("relay poll", "err", err)
			time.Sleep(300 * time.Millisecond)
		}
	}
}

// poll handles this consumer's pending messages first, then new ones, and reports how many were
// settled (published or dropped as malformed). It stops at the first publish failure so stream
// order is kept.
func (r *Relay) poll(ctx context.Context, block time.Duration) (int, error) {
	msgs, err := r.readGroup(ctx, "0", 0)
	if err != nil {
		return 0, fmt.Errorf("read pending: %w", err)
	}
	if len(msgs) == 0 {
		msgs, err = r.readGroup(ctx, ">", block)
		if err != nil {
			return 0, fmt.Errorf("read new: %w", err)
		}
	}

	settled := 0
	for _, xm := range msgs {
		if err := r.processOne(ctx, xm); err != nil {
			return settled, fmt.Errorf("message id=%s: %w", xm.ID, err)
		}
		settled++
	}
	return settled, nil
}

func (r *Relay) ensureGroup(ctx context.Context) error {
	err := r.rdb.XGroupCreateMkStream(ctx, r.stream, r.group, "0").Err()
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "BUSYGROUP") {
		return nil
	}
	return err
}

func (r *Relay) readGroup(ctx context.Context, streamID string, block time.Duration) ([]rd.XMessage, error) {
	// Block 0 would wait forever in Redis; a negative value omits BLOCK entirely.
	if block <= 0 {
		block = -1
	}
	streams, err := r.rdb.XReadGroup(ctx, &rd.XReadGroupArgs{
		Group:    r.group,
		Consumer: r.consumer,
		Streams:  []string{r.stream, streamID},
		Count:    16,
		Block:    block,
		NoAck:    false,
	}).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]rd.XMessage, 0, 16)
	for _, s := range streams {
		out = append(out, s.Messages...)
	}
	return out, nil
}

func (r *Relay) processOne(ctx context.Context, xm rd.XMessage) error {
	event, err := parseCatalogEvent(xm.Values)
	if err != nil {
		// malformed entries are acked and dropped so they cannot block the stream
		r.logger.Warn("relay dropping malformed event", "id", xm.ID, "err", err)
		if ackErr := r.ackAndDelete(ctx, xm.ID); ackErr != nil {
			return fmt.Errorf("parse failed: %v, ack failed: %w", err, ackErr)
		}
		return nil
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := r.publisher.Publish(pubCtx, event); err != nil {
		return err
	}
	return r.ackAndDelete(ctx, xm.ID)
}

func (r *Relay) ackAndDelete(ctx context.Context, id string) error {
	pipe := r.rdb.TxPipeline()
	pipe.XAck(ctx, r.stream, r.group, id)
	pipe.XDel(ctx, r.stream, id)
	_, err := pipe.Exec(ctx)
	return err
}
