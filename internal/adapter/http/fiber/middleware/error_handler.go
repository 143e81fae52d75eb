package middleware

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/seu-repo/songorder/internal/domain"
)

// ErrorHandler maps domain errors to status codes. Bodies are {"error": msg}.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := err.Error()

		var (
			fe   *fiber.Error
			verr *domain.ValidationError
			vals validator.ValidationErrors
		)
		switch {
		case errors.As(err, &fe):
			code = fe.Code
		case errors.Is(err, domain.ErrConversationNotFound):
			code = fiber.StatusNotFound
		case errors.Is(err, domain.ErrConversationClosed):
			code = fiber.StatusConflict
		case errors.As(err, &verr):
			code = fiber.StatusUnprocessableEntity
			message = verr.Message
		case errors.As(err, &vals):
			code = fiber.StatusBadRequest
		}

		if code == fiber.StatusInternalServerError {
			log.Error("Internal Server Error", zap.Error(err), zap.String("path", c.Path()))
			message = "internal server error"
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}
