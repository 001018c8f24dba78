package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/repository"
	"github.com/lk16/chessreview/internal/services"
)

func storageConfigured(c *fiber.Ctx) bool {
	svc := c.Locals("services").(*services.Services) //nolint: errcheck
	return svc.Postgres != nil && svc.Redis != nil
}

func storageUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "Evaluation book is not configured",
	})
}

// LookupPositions handles position lookup requests.
func LookupPositions(c *fiber.Ctx) error {
	var payload models.LookupPositionsPayload
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := payload.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	if !storageConfigured(c) {
		return storageUnavailable(c)
	}

	repo := repository.NewEvaluationRepository(c)
	evaluations, err := repo.LookupPositions(c.Context(), payload.Positions)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(evaluations)
}

// GetPositionStats returns statistics about the book and about analysed moves.
func GetPositionStats(c *fiber.Ctx) error {
	if !storageConfigured(c) {
		return storageUnavailable(c)
	}

	bookStats, err := repository.NewEvaluationRepository(c).GetBookStats(c.Context())
	if err != nil {
		return sendError(c, err)
	}

	qualities, motifs, err := repository.NewAnalysisRepository(c).GetMoveStats(c.Context())
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(models.PositionStats{
		Book:      bookStats,
		Qualities: qualities,
		Motifs:    motifs,
	})
}
