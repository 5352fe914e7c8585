package health

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status represents the health status of a component
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// HealthResponse represents the full health check response
type HealthResponse struct {
	Status     Status                     `json:"status"`
	Timestamp  string                     `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Checker performs health checks on the database and, when the login
// limiter is enabled, redis. A down redis degrades the service rather than
// failing it: logins keep working because the limiter fails open.
type Checker struct {
	db           *sql.DB
	redis        *redis.Client
	version      string
	checkTimeout time.Duration
}

// CheckerConfig holds configuration for the health checker
type CheckerConfig struct {
	DB      *sql.DB
	Redis   *redis.Client
	Version string
	Timeout time.Duration
}

// NewChecker creates a new health checker
func NewChecker(cfg *CheckerConfig) *Checker {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	return &Checker{
		db:           cfg.DB,
		redis:        cfg.Redis,
		version:      cfg.Version,
		checkTimeout: timeout,
	}
}

// Check runs all component checks concurrently and aggregates the result.
func (c *Checker) Check(ctx context.Context) HealthResponse {
	ctx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	components := make(map[string]ComponentHealth)
	var mu sync.Mutex
	var wg sync.WaitGroup

	record := func(name string, health ComponentHealth) {
		mu.Lock()
		components[name] = health
		mu.Unlock()
	}

	if c.db != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record("database", c.checkDatabase(ctx))
		}()
	}

	if c.redis != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record("redis", c.checkRedis(ctx))
		}()
	}

	wg.Wait()

	status := StatusHealthy
	for name, comp := range components {
		if comp.Status != StatusUnhealthy {
			continue
		}
		if name == "redis" {
			// Limiter fails open; redis down only degrades.
			if status == StatusHealthy {
				status = StatusDegraded
			}
			continue
		}
		status = StatusUnhealthy
	}

	return HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Version:    c.version,
		Components: components,
	}
}

func (c *Checker) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := c.db.PingContext(ctx); err != nil {
		return ComponentHealth{
			Status:   StatusUnhealthy,
			Message:  err.Error(),
			Duration: time.Since(start).String(),
		}
	}
	return ComponentHealth{
		Status:   StatusHealthy,
		Duration: time.Since(start).String(),
	}
}

func (c *Checker) checkRedis(ctx context.Context) ComponentHealth {
	start := time.Now()
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return ComponentHealth{
			Status:   StatusUnhealthy,
			Message:  err.Error(),
			Duration: time.Since(start).String(),
		}
	}
	return ComponentHealth{
		Status:   StatusHealthy,
		Duration: time.Since(start).String(),
	}
}

// Handler returns an HTTP handler for the health endpoint
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := c.Check(r.Context())

		status := http.StatusOK
		if resp.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}
}
