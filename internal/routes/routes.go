package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lk16/chessreview/internal/routes/api"
	"github.com/lk16/chessreview/internal/routes/metrics"
	"github.com/lk16/chessreview/internal/routes/version"
	"github.com/lk16/chessreview/internal/routes/ws"
)

func SetupRoutes(app *fiber.App) {
	// Serve API routes
	api.SetupRoutes(app)

	// Stream analyses over websockets
	ws.SetupRoutes(app)

	// Serve prometheus metrics
	metrics.SetupRoutes(app)

	// Serve version info
	version.SetupRoutes(app)
}
