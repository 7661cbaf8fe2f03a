package presenters

import (
	"Foodgram-Backend/domain"
	"errors"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Error   any    `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, data any, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes the failure envelope. Validation failures are
// rendered as a map of field to messages.
func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	return c.Status(statusCode).JSON(Response{
		Status:  false,
		Message: message,
		Error:   errorBody(err),
	})
}

func errorBody(err error) any {
	if err == nil {
		return nil
	}

	var domainErrs domain.ValidationErrors
	if errors.As(err, &domainErrs) {
		return domainErrs.Fields()
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		fields := make(map[string][]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields[fe.Field()] = append(fields[fe.Field()], fieldMessage(fe))
		}
		return fields
	}

	return err.Error()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "username":
		return "may contain only letters, digits and @/./+/-/_"
	default:
		return "failed on " + fe.Tag()
	}
}

// StatusFor maps a service error to its HTTP status.
func StatusFor(err error) int {
	var domainErrs domain.ValidationErrors
	var domainErr domain.ValidationError
	var fieldErrs validator.ValidationErrors

	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.As(err, &domainErrs), errors.As(err, &domainErr), errors.As(err, &fieldErrs):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrSelfSubscription),
		errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrWrongPassword),
		errors.Is(err, domain.ErrParseID):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, domain.ErrTokenInvalid),
		errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenRevoked),
		errors.Is(err, domain.ErrTokenNotFound):
		return fiber.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUserNotAllowed):
		return fiber.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
