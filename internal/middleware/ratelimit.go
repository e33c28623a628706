package middleware

import (
	"fmt"
	"time"

	"github.com/developia-II/tree-rater-backend/pkg/logger"
	"github.com/developia-II/tree-rater-backend/pkg/metrics"
	"github.com/developia-II/tree-rater-backend/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitMessage is the 429 body text for a given window.
func RateLimitMessage(window time.Duration) string {
	return fmt.Sprintf("Too many uploads from this IP, please try again after %d minutes", int(window.Minutes()))
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
	Log    logger.Logger
	// Metrics may be nil.
	Metrics *metrics.Manager
}

// UploadLimiter returns a per-IP sliding window limiter. Its counters live in
// the returned handler's own in-memory storage, so each call yields an
// independent limiter. Rejected requests never reach the next handler.
func UploadLimiter(cfg RateLimitConfig) fiber.Handler {
	msg := RateLimitMessage(cfg.Window)
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	return limiter.New(limiter.Config{
		Max:               cfg.Max,
		Expiration:        cfg.Window,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			log.Warn(c.UserContext(), "upload rate limit reached", logger.String("ip", c.IP()))
			if cfg.Metrics != nil {
				cfg.Metrics.IncRateLimited()
			}
			return utils.ErrorResponse(c, fiber.StatusTooManyRequests, msg)
		},
	})
}
