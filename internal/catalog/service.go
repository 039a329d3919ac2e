// Package catalog implements the storefront's request-level operations on top of the
// product store and the admin guard.
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/session"

	"github.com/google/uuid"
)

// ProductStore is the persistence the catalog needs.
type ProductStore interface {
	List(ctx context.Context) ([]model.Product, error)
	Insert(ctx context.Context, name, owner, version string, price int64) (model.Product, error)
	DeleteByName(ctx context.Context, name string) (int64, error)
}

// AdminGuard answers whether a session is privileged.
type AdminGuard interface {
	RequireAdmin(sess *session.Data) bool
}

// Notifier receives catalog changes. Failures are logged and never fail the request.
type Notifier interface {
	Notify(ctx context.Context, event model.CatalogEvent) error
}

// AddInput is the raw add-product payload. Price may be a number or a formatted string.
type AddInput struct {
	Name    string `json:"name"`
	Owner   string `json:"owner"`
	Version string `json:"version"`
	Price   any    `json:"price"`
}

type Service struct {
	store    ProductStore
	guard    AdminGuard
	notifier Notifier
	logger   *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithNotifier publishes created/deleted events to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(store ProductStore, guard AdminGuard, opts ...Option) *Service {
	s := &Service{
		store:  store,
		guard:  guard,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the whole catalog. It is public and does not look at the session.
func (s *Service) List(ctx context.Context) ([]model.Product, error) {
	return s.store.List(ctx)
}

// Add validates and stores a new product on behalf of an admin session.
func (s *Service) Add(ctx context.Context, sess *session.Data, in AddInput) (model.Product, error) {
	if !s.guard.RequireAdmin(sess) {
		return model.Product{}, ErrUnauthorized
	}

	name := strings.TrimSpace(in.Name)
	owner := strings.TrimSpace(in.Owner)
	version := strings.TrimSpace(in.Version)
	for _, f := range []struct{ field, value string }{
		{"name", name},
		{"owner", owner},
		{"version", version},
	} {
		if f.value == "" {
			return model.Product{}, &FieldError{Field: f.field, Message: "must not be empty"}
		}
	}
	price, err := ParsePrice(in.Price)
	if err != nil {
		return model.Product{}, err
	}

	p, err := s.store.Insert(ctx, name, owner, version, price)
	if err != nil {
		return model.Product{}, err
	}

	s.notify(ctx, model.CatalogEvent{
		Type:      model.ProductCreated,
		ProductID: p.ID,
		Name:      p.Name,
		Version:   p.Version,
		Price:     p.Price,
	})
	return p, nil
}

// DeleteByName removes every product whose name matches case-insensitively, across all versions.
// name is the already URL-decoded path segment.
func (s *Service) DeleteByName(ctx context.Context, sess *session.Data, name string) (int64, error) {
	if !s.guard.RequireAdmin(sess) {
		return 0, ErrUnauthorized
	}

	name = strings.ToLower(name)
	n, err := s.store.DeleteByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrNotFound
	}

	s.notify(ctx, model.CatalogEvent{
		Type:    model.ProductDeleted,
		Name:    name,
		Removed: n,
	})
	return n, nil
}

func (s *Service) notify(ctx context.Context, event model.CatalogEvent) {
	if s.notifier == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()
	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("catalog event not published", "type", event.Type, "name", event.Name, "err", err)
	}
}
