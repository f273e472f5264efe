package httpapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// ErrorHandler renders every handler error as the JSON error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterMetrics exposes a Prometheus handler at /metrics.
func RegisterMetrics(app *fiber.App, h http.Handler) {
	app.Get("/metrics", adaptor.HTTPHandler(h))
}
