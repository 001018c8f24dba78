package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/repository"
	"github.com/lk16/chessreview/internal/review"
	"github.com/lk16/chessreview/internal/services"
)

// AnalyzeGame reviews a game given as PGN or as a start position with moves.
// A review that the engine could not finish is still returned, marked incomplete.
func AnalyzeGame(c *fiber.Ctx) error {
	var req models.AnalysisRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	game, err := review.ResolveRequest(&req)
	if err != nil {
		return sendError(c, err)
	}

	response, err := newReviewer(c).Review(c.Context(), game)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// GetAnalysis returns a stored review.
func GetAnalysis(c *fiber.Ctx) error {
	svc := c.Locals("services").(*services.Services) //nolint: errcheck
	if svc.Redis == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Analysis storage is not configured",
		})
	}

	repo := repository.NewAnalysisRepository(c)
	response, err := repo.GetAnalysis(c.Context(), c.Params("id"))
	if errors.Is(err, repository.ErrAnalysisNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}
