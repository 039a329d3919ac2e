// Package auth decides whether a session may perform admin operations.
package auth

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/session"
)

// ErrUnauthorized is deliberately uninformative: it never says which credential was wrong.
var ErrUnauthorized = errors.New("unauthorized")

// Credentials is the admin username/password/token triple.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

// Guard checks credentials against the fixed admin triple and flips the session flag.
type Guard struct {
	admin    Credentials
	sessions session.Store
}

func NewGuard(admin Credentials, sessions session.Store) *Guard {
	return &Guard{admin: admin, sessions: sessions}
}

// VerifyCredentials is a plain equality check on all three values.
func (g *Guard) VerifyCredentials(username, password, token string) bool {
	return username == g.admin.Username &&
		password == g.admin.Password &&
		token == g.admin.Token
}

// RequireAdmin reports whether the session has logged in as admin.
func (g *Guard) RequireAdmin(sess *session.Data) bool {
	return sess != nil && sess.IsAdmin
}

// Login marks sess as admin and persists it. On bad credentials the session is left untouched.
func (g *Guard) Login(ctx context.Context, sess *session.Data, creds Credentials) error {
	if sess == nil || !g.VerifyCredentials(creds.Username, creds.Password, creds.Token) {
		return ErrUnauthorized
	}
	sess.IsAdmin = true
	if err := g.sessions.Set(ctx, sess); err != nil {
		sess.IsAdmin = false
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Logout destroys the whole session, not only the admin flag.
func (g *Guard) Logout(ctx context.Context, sess *session.Data) error {
	if sess == nil {
		return nil
	}
	sess.IsAdmin = false
	if err := g.sessions.Destroy(ctx, sess.ID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
