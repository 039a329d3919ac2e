// Package session keeps server-side session state keyed by an opaque id that the
// client carries in a cookie.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidConfig    = errors.New("invalid session store configuration")
	ErrInvalidStoreType = errors.New("invalid session store type")
)

// Data is everything the server remembers about one browser session.
type Data struct {
	ID        string    `json:"id"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a fresh anonymous session. It is not persisted until a Store saves it.
func New() *Data {
	now := time.Now()
	return &Data{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Store is the key-value backend for session state.
type Store interface {
	// Get returns nil (and no error) when the session does not exist or has expired.
	// Reading never extends a session: it expires a fixed TTL after its last Set.
	Get(ctx context.Context, id string) (*Data, error)

	// Set creates or replaces the session and restarts its expiry.
	Set(ctx context.Context, data *Data) error

	// Destroy drops the session entirely. Destroying a missing session is not an error.
	Destroy(ctx context.Context, id string) error

	Close() error
}
