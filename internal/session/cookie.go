package session

import (
	"time"

	"github.com/gorilla/securecookie"
)

// cookieName is bound into the cookie MAC so a value cannot be replayed under another cookie.
const cookieName = "session"

// CookieCodec signs session ids so a client cannot forge or guess another session's cookie.
// Values older than the session TTL no longer decode.
type CookieCodec struct {
	sc *securecookie.SecureCookie
}

func NewCookieCodec(secret string, ttl time.Duration) CookieCodec {
	sc := securecookie.New([]byte(secret), nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	if ttl > 0 {
		sc.MaxAge(int(ttl / time.Second))
	}
	return CookieCodec{sc: sc}
}

// Encode returns the signed, timestamped cookie value for id.
func (c CookieCodec) Encode(id string) (string, error) {
	return c.sc.Encode(cookieName, id)
}

// Decode verifies the signature and age and returns the session id.
func (c CookieCodec) Decode(value string) (string, bool) {
	var id string
	if err := c.sc.Decode(cookieName, value, &id); err != nil || id == "" {
		return "", false
	}
	return id, true
}
