package api

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lk16/chessreview/internal/config"
	"github.com/lk16/chessreview/internal/review"
	"github.com/lk16/chessreview/internal/rules"
	"github.com/lk16/chessreview/internal/services"
)

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": message,
	})
}

// sendError picks the status code from the kind of err.
func sendError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError

	switch {
	case errors.Is(err, rules.ErrInvalidInput):
		status = fiber.StatusBadRequest
	case errors.Is(err, services.ErrPoolClosed), errors.Is(err, context.DeadlineExceeded):
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func newReviewer(c *fiber.Ctx) *review.Reviewer {
	services := c.Locals("services").(*services.Services) //nolint: errcheck
	cfg := c.Locals("config").(*config.ServerConfig)      //nolint: errcheck

	return review.NewReviewer(services, cfg.AnalysisDepth)
}
