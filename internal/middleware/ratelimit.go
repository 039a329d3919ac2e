package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	rediskey "storefront/pkg/redis"

	"github.com/gin-gonic/gin"
	rd "github.com/redis/go-redis/v9"
)

// luaRateLimit is a sliding-window counter over a sorted set.
// KEYS[1]=key, ARGV[1]=now, ARGV[2]=window start, ARGV[3]=window seconds, ARGV[4]=member, ARGV[5]=limit.
// Returns the count inside the window, or -1 once the limit is reached.
const luaRateLimit = `
local key = KEYS[1]
local now = tonumber(ARGV[1])
local windowStart = tonumber(ARGV[2])
local windowSec = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '0', windowStart)

local count = redis.call('ZCARD', key)

if count < tonumber(ARGV[5]) then
  redis.call('ZADD', key, now, member)
  redis.call('EXPIRE', key, windowSec)
  return count + 1
else
  return -1
end
`

// RedisRateLimit limits requests per client IP. Redis errors let the request through.
func RedisRateLimit(rdb *rd.Client, limit int, window time.Duration, logger *slog.Logger) gin.HandlerFunc {
	windowSec := int64(window.Seconds())
	if windowSec < 1 {
		windowSec = 1
	}
	return func(c *gin.Context) {
		key := rediskey.ReadRateLimitKey(c.ClientIP())

		nowTime := time.Now()
		now := nowTime.UnixMilli()
		windowStart := now - windowSec*1000
		member := fmt.Sprintf("%d-%d", now, nowTime.UnixNano())

		res, err := rdb.Eval(c.Request.Context(), luaRateLimit, []string{key},
			now, windowStart, windowSec, member, limit).Int()
		if err != nil {
			logger.Warn("rate limit check failed, allowing request", "err", err)
			c.Next()
			return
		}

		if res < 0 {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, try again later."})
			return
		}
		c.Next()
	}
}
