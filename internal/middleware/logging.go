package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// quietPaths are scraped often and not worth a log line.
var quietPaths = map[string]bool{
	"/metrics": true,
}

// formatLatency prints short requests in milliseconds and game reviews in seconds.
func formatLatency(latency time.Duration) string {
	if latency >= time.Second {
		return fmt.Sprintf("%6.1fs ", latency.Seconds())
	}
	return fmt.Sprintf("%6.1fms", float64(latency.Nanoseconds())/float64(time.Millisecond))
}

// Logging middleware that logs route, status code and response time.
func Logging() fiber.Handler {
	return logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return quietPaths[c.Path()]
		},
		Format:     "${time} | ${status} | ${latency} | ${method} | ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Local",
		CustomTags: map[string]logger.LogFunc{
			"latency": func(output logger.Buffer, _ *fiber.Ctx, data *logger.Data, _ string) (int, error) {
				return output.WriteString(formatLatency(data.Stop.Sub(data.Start)))
			},
		},
	})
}
