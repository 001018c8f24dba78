package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/chessreview/internal/analysis"
	"github.com/lk16/chessreview/internal/models"
	"github.com/lk16/chessreview/internal/review"
)

// DetectMotifs returns the motifs created by a single move.
func DetectMotifs(c *fiber.Ctx) error {
	var req models.MotifRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	response, err := review.Motifs(req.Position, req.Move)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(response)
}

// Summarize builds a style report over games that were reviewed before.
func Summarize(c *fiber.Ctx) error {
	var req models.SummaryRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	return c.Status(fiber.StatusOK).JSON(analysis.SummarizeGames(req.Games))
}

// RankMoves orders all legal moves of a position, best first.
func RankMoves(c *fiber.Ctx) error {
	var req models.EndgameRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	if err := req.Validate(); err != nil {
		return badRequest(c, err.Error())
	}

	moves, err := newReviewer(c).RankMoves(c.Context(), req.Position, req.Depth)
	if err != nil {
		return sendError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(models.EndgameResponse{Moves: moves})
}
