package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/clinic-service/internal/observability"
)

func TestRateLimiter(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), time.Second)

	limiter := NewRateLimiter(1, 2)
	app.Post("/login", limiter.Handle, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		statuses = append(statuses, resp.StatusCode)
	}

	// burst of 2 passes, the third immediate request is throttled
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("burst requests = %v, want first two 200", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", statuses[2])
	}
}

func TestRateLimiterPerIP(t *testing.T) {
	limiter := NewRateLimiter(1, 1)

	if !limiter.allow("10.0.0.1") {
		t.Fatal("first request from first ip should pass")
	}
	if limiter.allow("10.0.0.1") {
		t.Fatal("second immediate request from same ip should be throttled")
	}
	// a different client has its own bucket
	if !limiter.allow("10.0.0.2") {
		t.Fatal("first request from second ip should pass")
	}
}
