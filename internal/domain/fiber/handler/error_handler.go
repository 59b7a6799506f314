package handler

import (
	"errors"

	"github.com/fadilmartias/interview-coach/internal/util"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders errors returned by handlers in the standard error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Code:    code,
		Message: message,
	}, err)
}
