package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/chessreview/internal/middleware"
)

// SetupRoutes sets up the API routes.
func SetupRoutes(app *fiber.App) {
	apiGroup := app.Group("/api", middleware.AuthOrToken())

	// Game review routes
	apiGroup.Post("/analysis", AnalyzeGame)
	apiGroup.Get("/analysis/:id", GetAnalysis)
	apiGroup.Post("/motifs", DetectMotifs)
	apiGroup.Post("/summary", Summarize)
	apiGroup.Post("/endgame", RankMoves)

	// Position routes
	apiGroup.Post("/positions/lookup", LookupPositions)
	apiGroup.Get("/positions/stats", GetPositionStats)
}
