package handlers

import (
	"context"
	"sort"

	"github.com/developia-II/tree-rater-backend/internal/models"
	"github.com/developia-II/tree-rater-backend/pkg/logger"
	"github.com/developia-II/tree-rater-backend/pkg/metrics"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) TopTrees(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), h.dbTimeout)
	defer cancel()

	records, err := h.ratings.TopByAesthetics(ctx, LeaderboardSize)
	if err != nil {
		h.metrics.IncLeaderboard(metrics.ResultDBError)
		h.log.Error(ctx, "leaderboard query failed", logger.Error(err))
		return h.databaseError(c, err, "Failed to fetch leaderboard")
	}

	h.metrics.IncLeaderboard(metrics.ResultSuccess)
	return c.JSON(models.LeaderboardResponse{Trees: Leaderboard(records)})
}

// Leaderboard shapes stored records into at most LeaderboardSize entries
// ordered by aesthetics score, highest first. Equal scores keep store order.
func Leaderboard(records []models.TreeRating) []models.LeaderboardEntry {
	sorted := make([]models.TreeRating, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AestheticsScore > sorted[j].AestheticsScore
	})
	if len(sorted) > LeaderboardSize {
		sorted = sorted[:LeaderboardSize]
	}

	trees := make([]models.LeaderboardEntry, 0, len(sorted))
	for i := range sorted {
		r := &sorted[i]
		trees = append(trees, models.LeaderboardEntry{
			ID:               r.ID,
			User:             r.ID,
			ImageURL:         r.ImageURL,
			AestheticsScore:  r.AestheticsScore,
			OriginalityScore: r.OriginalityScore,
			Score:            r.TotalScore(),
			CreatedAt:        r.CreatedAt,
		})
	}
	return trees
}

func (h *Handler) databaseError(c *fiber.Ctx, err error, public string) error {
	msg := public
	if !h.production {
		msg = err.Error()
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "Database error",
		"message": msg,
	})
}
