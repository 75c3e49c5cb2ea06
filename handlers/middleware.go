package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/a2n2k3p4/omise-payments/metrics"
)

// Metrics records every request against its route pattern.
func Metrics(m *metrics.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}
		m.RecordHTTPRequest(c.Method(), c.Route().Path, status)
		return err
	}
}

// ErrorHandler writes errors returned by handlers as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
