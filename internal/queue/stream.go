package queue

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"storefront/internal/model"

	rd "github.com/redis/go-redis/v9"
)

// StreamNotifier appends catalog events to a Redis Stream. The Relay forwards them to Kafka,
// so a slow or absent broker never holds up an HTTP request.
type StreamNotifier struct {
	rdb    *rd.Client
	stream string
}

func NewStreamNotifier(rdb *rd.Client, stream string) *StreamNotifier {
	return &StreamNotifier{rdb: rdb, stream: stream}
}

// Notify implements catalog.Notifier.
func (n *StreamNotifier) Notify(ctx context.Context, event model.CatalogEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	return n.rdb.XAdd(ctx, &rd.XAddArgs{
		Stream: n.stream,
		Values: encodeStreamValues(event),
	}).Err()
}

func partitionKey(name string) string { return strings.ToLower(name) }

func encodeStreamValues(e model.CatalogEvent) map[string]any {
	return map[string]any{
		"id":          e.ID,
		"type":        string(e.Type),
		"product_id":  strconv.FormatUint(uint64(e.ProductID), 10),
		"name":        e.Name,
		"version":     e.Version,
		"price":       strconv.FormatInt(e.Price, 10),
		"removed":     strconv.FormatInt(e.Removed, 10),
		"occurred_at": e.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
}

func parseCatalogEvent(values map[string]interface{}) (model.CatalogEvent, error) {
	var e model.CatalogEvent
	var err error
	var typ, productStr, priceStr, removedStr, occurredStr string

	for _, f := range []struct {
		key string
		dst *string
	}{
		{"id", &e.ID},
		{"type", &typ},
		{"product_id", &productStr},
		{"name", &e.Name},
		{"version", &e.Version},
		{"price", &priceStr},
		{"removed", &removedStr},
		{"occurred_at", &occurredStr},
	} {
		if *f.dst, err = getStreamString(values, f.key); err != nil {
			return model.CatalogEvent{}, err
		}
	}
	e.Type = model.CatalogEventType(typ)

	productID, err := strconv.ParseUint(productStr, 10, 64)
	if err != nil {
		return model.CatalogEvent{}, fmt.Errorf("invalid product_id %q", productStr)
	}
	e.ProductID = uint(productID)
	if e.Price, err = strconv.ParseInt(priceStr, 10, 64); err != nil {
		return model.CatalogEvent{}, fmt.Errorf("invalid price %q", priceStr)
	}
	if e.Removed, err = strconv.ParseInt(removedStr, 10, 64); err != nil {
		return model.CatalogEvent{}, fmt.Errorf("invalid removed %q", removedStr)
	}
	if e.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredStr); err != nil {
		return model.CatalogEvent{}, fmt.Errorf("invalid occurred_at %q", occurredStr)
	}

	if err := e.Validate(); err != nil {
		return model.CatalogEvent{}, err
	}
	return e, nil
}

func getStreamString(values map[string]interface{}, key string) (string, error) {
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("missing field %s", key)
	}
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	default:
		return "", fmt.Errorf("unsupported field type %s: %T", key, v)
	}
}
