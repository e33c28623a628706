package handlers

import (
	"errors"
	"fmt"

	"github.com/developia-II/tree-rater-backend/internal/services"
	"github.com/developia-II/tree-rater-backend/pkg/logger"
	"github.com/developia-II/tree-rater-backend/utils"
	"github.com/gofiber/fiber/v2"
)

var (
	// ErrUploadFailed wraps blob store failures.
	ErrUploadFailed = errors.New("image upload failed")
	// ErrStorage wraps record store failures after the blob was written.
	ErrStorage = errors.New("failed to save rating")
)

func tooLargeMessage(mb int64) string {
	return fmt.Sprintf("File too large. Maximum size is %dMB", mb)
}

// NewErrorHandler is the app-wide fallback. Oracle failures become 503,
// everything unclassified becomes 500 with the cause hidden in production.
func NewErrorHandler(production bool, log logger.Logger, maxUploadMB int64) fiber.ErrorHandler {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			if fe.Code == fiber.StatusRequestEntityTooLarge {
				return utils.ErrorResponse(c, fe.Code, tooLargeMessage(maxUploadMB))
			}
			if fe.Code >= fiber.StatusInternalServerError {
				log.Error(c.UserContext(), "request failed",
					logger.String("method", c.Method()), logger.String("path", c.Path()), logger.Error(err))
			}
			return utils.ErrorResponse(c, fe.Code, fe.Message)
		}

		log.Error(c.UserContext(), "request failed",
			logger.String("method", c.Method()), logger.String("path", c.Path()), logger.Error(err))

		if errors.Is(err, services.ErrAIUnavailable) {
			return utils.ErrorDetailsResponse(c, fiber.StatusServiceUnavailable,
				"AI service temporarily unavailable", "Please try again in a few minutes")
		}

		details := "Something went wrong"
		if !production {
			details = err.Error()
		}
		return utils.ErrorDetailsResponse(c, fiber.StatusInternalServerError, "Internal server error", details)
	}
}
