package handlers

import (
	"context"
	"errors"

	"github.com/developia-II/tree-rater-backend/internal/models"
	"github.com/developia-II/tree-rater-backend/internal/repository"
	"github.com/developia-II/tree-rater-backend/pkg/logger"
	"github.com/developia-II/tree-rater-backend/utils"
	"github.com/gofiber/fiber/v2"
)

// GetTree returns one full rating for the leaderboard detail view.
func (h *Handler) GetTree(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.dbTimeout)
	defer cancel()

	record, err := h.ratings.FindByID(ctx, c.Params("id"))
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid tree ID")
	case errors.Is(err, repository.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Tree not found")
	case err != nil:
		h.log.Error(ctx, "tree lookup failed", logger.String("id", c.Params("id")), logger.Error(err))
		return h.databaseError(c, err, "Failed to fetch tree")
	}

	return c.JSON(fiber.Map{
		"tree": models.TreeDetail{TreeRating: *record, Score: record.TotalScore()},
	})
}

// GetImage streams a stored photo. Blobs are immutable, so clients may cache.
func (h *Handler) GetImage(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.blobTimeout)
	defer cancel()

	blob, err := h.blobs.Open(ctx, c.Params("id"))
	switch {
	case errors.Is(err, repository.ErrInvalidID), errors.Is(err, repository.ErrNotFound):
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Image not found")
	case err != nil:
		return err
	}

	c.Set(fiber.HeaderContentType, blob.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(blob.Data)
}
