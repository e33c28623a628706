package middleware_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/developia-II/tree-rater-backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	. "github.com/smartystreets/goconvey/convey"
)

func newApp(max int) (*fiber.App, *int) {
	app := fiber.New(fiber.Config{ProxyHeader: fiber.HeaderXForwardedFor})
	hits := 0
	app.Post("/upload", middleware.UploadLimiter(middleware.RateLimitConfig{
		Max:    max,
		Window: 15 * time.Minute,
	}), func(c *fiber.Ctx) error {
		hits++
		return c.SendStatus(fiber.StatusOK)
	})
	return app, &hits
}

func post(app *fiber.App, ip string) int {
	req := httptest.NewRequest("POST", "/upload", nil)
	req.Header.Set(fiber.HeaderXForwardedFor, ip)
	resp, err := app.Test(req, -1)
	So(err, ShouldBeNil)
	return resp.StatusCode
}

func TestUploadLimiter(t *testing.T) {
	Convey("Given a limiter allowing 10 uploads per window", t, func() {
		app, hits := newApp(10)

		Convey("The 11th request from one client is rejected without reaching the handler", func() {
			for i := 0; i < 10; i++ {
				So(post(app, "10.0.0.1"), ShouldEqual, fiber.StatusOK)
			}

			req := httptest.NewRequest("POST", "/upload", nil)
			req.Header.Set(fiber.HeaderXForwardedFor, "10.0.0.1")
			resp, err := app.Test(req, -1)
			So(err, ShouldBeNil)
			So(resp.StatusCode, ShouldEqual, fiber.StatusTooManyRequests)

			body, _ := io.ReadAll(resp.Body)
			var payload map[string]string
			So(json.Unmarshal(body, &payload), ShouldBeNil)
			So(payload["error"], ShouldEqual, "Too many uploads from this IP, please try again after 15 minutes")
			So(*hits, ShouldEqual, 10)
		})

		Convey("Other clients keep their own quota", func() {
			for i := 0; i < 10; i++ {
				post(app, "10.0.0.1")
			}
			So(post(app, "10.0.0.1"), ShouldEqual, fiber.StatusTooManyRequests)
			So(post(app, "10.0.0.2"), ShouldEqual, fiber.StatusOK)
		})
	})

	Convey("Given two limiter instances", t, func() {
		a, _ := newApp(1)
		b, _ := newApp(1)

		Convey("They do not share counters", func() {
			So(post(a, "10.0.0.9"), ShouldEqual, fiber.StatusOK)
			So(post(a, "10.0.0.9"), ShouldEqual, fiber.StatusTooManyRequests)
			So(post(b, "10.0.0.9"), ShouldEqual, fiber.StatusOK)
		})
	})
}
