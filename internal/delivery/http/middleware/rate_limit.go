package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go-hr-backend/internal/delivery/http/response"
	"go-hr-backend/pkg/logger"
	"go-hr-backend/pkg/redis"
	"go-hr-backend/pkg/security"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimit is a fixed-window request budget per client IP
type RateLimit struct {
	Name   string // counter namespace, also reported in the audit log
	Limit  int
	Window time.Duration
}

// GlobalRateLimit applies to every route
func GlobalRateLimit(limit int, window time.Duration) RateLimit {
	return RateLimit{Name: "ip", Limit: limit, Window: window}
}

// UploadRateLimit guards resume uploads and registrations
func UploadRateLimit(limit int, window time.Duration) RateLimit {
	return RateLimit{Name: "upload", Limit: limit, Window: window}
}

// windowScript bumps the counter and starts its TTL on the first hit of a window.
// Returns {count, ttl_seconds}.
var windowScript = goredis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return {n, redis.call('TTL', KEYS[1])}
`)

// Handler counts in Redis when a client is configured and falls back to a
// process-local window when Redis is absent or erroring.
func (l RateLimit) Handler() gin.HandlerFunc {
	local := newLocalWindows()
	return func(c *gin.Context) {
		key := "rl:" + l.Name + ":" + c.ClientIP()

		count, resetAt, err := l.hitRedis(c.Request.Context(), key)
		if err != nil {
			if !errors.Is(err, errNoRedis) {
				logger.Log.Warn("Rate limit falling back to memory", "limit", l.Name, "error", err)
			}
			count, resetAt = local.hit(key, l.Window, time.Now())
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(l.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(max(l.Limit-count, 0)))
		c.Header("X-RateLimit-Reset", resetAt.UTC().Format(time.RFC3339))
		if count <= l.Limit {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(max(int(time.Until(resetAt).Seconds()), 1)))
		security.DefaultLogger().Log(security.AuditEvent{
			Event:     security.EventRateLimitTriggered,
			IP:        c.ClientIP(),
			Method:    c.Request.Method,
			Path:      c.FullPath(),
			RequestID: c.GetString(response.RequestIDKey),
			Details:   map[string]any{"limit": l.Limit, "name": l.Name},
		})
		response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
		c.Abort()
	}
}

var errNoRedis = errors.New("redis not configured")

func (l RateLimit) hitRedis(ctx context.Context, key string) (int, time.Time, error) {
	client := redis.Client()
	if client == nil {
		return 0, time.Time{}, errNoRedis
	}
	ttl := max(int(l.Window.Seconds()), 1)
	res, err := windowScript.Run(ctx, client, []string{key}, ttl).Int64Slice()
	if err != nil {
		return 0, time.Time{}, err
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	return int(res[0]), time.Now().Add(time.Duration(res[1]) * time.Second), nil
}

type window struct {
	count   int
	resetAt time.Time
}

// localWindows is the in-process counter; expired windows are swept on write
type localWindows struct {
	mu        sync.Mutex
	windows   map[string]*window
	nextSweep time.Time
}

func newLocalWindows() *localWindows {
	return &localWindows{windows: make(map[string]*window)}
}

func (s *localWindows) hit(key string, span time.Duration, now time.Time) (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.After(s.nextSweep) {
		for k, w := range s.windows {
			if now.After(w.resetAt) {
				delete(s.windows, k)
			}
		}
		s.nextSweep = now.Add(span)
	}

	w, ok := s.windows[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(span)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt
}
