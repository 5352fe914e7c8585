package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/crewdesk/backend/internal/logger"
	"github.com/redis/go-redis/v9"
)

var ErrLimited = errors.New("rate limited")

// LoginLimiter throttles login attempts with a fixed window per username and
// per client IP. A nil limiter (no redis configured) allows everything, and
// a broken redis fails open so logins keep working without it.
type LoginLimiter struct {
	redis       *redis.Client
	maxAttempts int
	window      time.Duration
}

func NewLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) *LoginLimiter {
	return &LoginLimiter{
		redis:       client,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Enforce counts this attempt and returns ErrLimited once the window is
// exhausted for either key.
func (l *LoginLimiter) Enforce(ctx context.Context, username, ip string) error {
	if l == nil || l.redis == nil {
		return nil
	}

	if username != "" {
		if err := l.enforceKey(ctx, usernameKey(username)); err != nil {
			return err
		}
	}

	if ip != "" {
		if err := l.enforceKey(ctx, ipKey(ip)); err != nil {
			return err
		}
	}

	return nil
}

func (l *LoginLimiter) enforceKey(ctx context.Context, key string) error {
	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		logger.Warn(ctx, "login limiter unavailable, failing open", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.window).Err(); err != nil {
			logger.Warn(ctx, "login limiter expire failed", map[string]interface{}{
				"error": err.Error(),
			})
			return nil
		}
	}

	if count > int64(l.maxAttempts) {
		return ErrLimited
	}

	return nil
}

func usernameKey(username string) string {
	return "login:u:" + strings.ToLower(username)
}

func ipKey(ip string) string {
	return "login:ip:" + ip
}
