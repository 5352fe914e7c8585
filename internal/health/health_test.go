package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestCheck_NoComponents(t *testing.T) {
	checker := NewChecker(&CheckerConfig{Version: "1.0.0"})

	resp := checker.Check(context.Background())

	if resp.Status != StatusHealthy {
		t.Errorf("status: got %q", resp.Status)
	}
	if resp.Version != "1.0.0" {
		t.Errorf("version: got %q", resp.Version)
	}
	if len(resp.Components) != 0 {
		t.Errorf("expected no components, got %v", resp.Components)
	}
}

func TestCheck_RedisHealthy(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	checker := NewChecker(&CheckerConfig{Redis: client, Timeout: time.Second})

	resp := checker.Check(context.Background())

	if resp.Status != StatusHealthy {
		t.Fatalf("status: got %q", resp.Status)
	}
	if resp.Components["redis"].Status != StatusHealthy {
		t.Errorf("redis component: got %+v", resp.Components["redis"])
	}
}

// Redis going away degrades the service instead of failing it: the login
// limiter fails open, so everything still works.
func TestCheck_RedisDownDegrades(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mr.Close()

	checker := NewChecker(&CheckerConfig{Redis: client, Timeout: time.Second})

	resp := checker.Check(context.Background())

	if resp.Status != StatusDegraded {
		t.Fatalf("status: got %q, want %q", resp.Status, StatusDegraded)
	}
	if resp.Components["redis"].Status != StatusUnhealthy {
		t.Errorf("redis component: got %+v", resp.Components["redis"])
	}
}

func TestHandler_StatusCodes(t *testing.T) {
	t.Run("healthy is 200", func(t *testing.T) {
		checker := NewChecker(&CheckerConfig{})

		w := httptest.NewRecorder()
		checker.Handler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		if w.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", w.Code)
		}

		var resp HealthResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != StatusHealthy {
			t.Errorf("status: got %q", resp.Status)
		}
		if resp.Timestamp == "" {
			t.Error("timestamp missing")
		}
	})

	t.Run("degraded is still 200", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { client.Close() })
		mr.Close()

		checker := NewChecker(&CheckerConfig{Redis: client, Timeout: time.Second})

		w := httptest.NewRecorder()
		checker.Handler()(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		if w.Code != http.StatusOK {
			t.Errorf("degraded should not fail the probe, got %d", w.Code)
		}
	})
}
