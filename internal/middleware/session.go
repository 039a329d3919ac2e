package middleware

import (
	"log/slog"
	"net/http"

	"storefront/internal/session"

	"github.com/gin-gonic/gin"
)

const (
	DefaultCookieName = "storefront.sid"
	sessionContextKey = "storefront.session"
)

// CookieOptions controls the session cookie. It has no Max-Age, so browsers drop it on exit;
// the store's TTL bounds the server side.
type CookieOptions struct {
	Name   string
	Secure bool
}

// SessionManager loads the caller's session from its cookie and issues or clears that cookie.
type SessionManager struct {
	store  session.Store
	codec  session.CookieCodec
	cookie CookieOptions
	logger *slog.Logger
}

func NewSessionManager(store session.Store, codec session.CookieCodec, cookie CookieOptions, logger *slog.Logger) *SessionManager {
	if cookie.Name == "" {
		cookie.Name = DefaultCookieName
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{store: store, codec: codec, cookie: cookie, logger: logger}
}

// Middleware attaches a session to every request. Unknown, expired or tampered cookies get a
// fresh anonymous session, which is only persisted once something writes to it.
func (m *SessionManager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Data
		if raw, err := c.Cookie(m.cookie.Name); err == nil {
			if id, ok := m.codec.Decode(raw); ok {
				sess, err = m.store.Get(c.Request.Context(), id)
				if err != nil {
					// fail closed: the caller is treated as anonymous
					m.logger.Warn("session lookup failed", "err", err)
					sess = nil
				}
			}
		}
		if sess == nil {
			sess = session.New()
		}
		c.Set(sessionContextKey, sess)
		c.Next()
	}
}

// Issue sends the cookie for sess. Call it after the session has been saved.
func (m *SessionManager) Issue(c *gin.Context, sess *session.Data) error {
	value, err := m.codec.Encode(sess.ID)
	if err != nil {
		return err
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, value, 0, "/", "", m.cookie.Secure, true)
	return nil
}

// Clear expires the cookie on the client.
func (m *SessionManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, "", -1, "/", "", m.cookie.Secure, true)
}

// CurrentSession returns the session attached by Middleware, or nil if it did not run.
func CurrentSession(c *gin.Context) *session.Data {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, _ := v.(*session.Data)
	return sess
}
