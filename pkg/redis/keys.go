package redis

import "fmt"

// SessionKey is where a session lives in Redis.
func SessionKey(sessionID string) string {
	return fmt.Sprintf("storefront:session:%s", sessionID)
}

// ReadRateLimitKey holds the product-list rate window for one client IP.
func ReadRateLimitKey(ip string) string {
	return fmt.Sprintf("storefront:rate_limit:products:ip:%s", ip)
}
