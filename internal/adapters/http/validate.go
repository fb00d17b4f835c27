package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// bindJSON parses the body into dst and runs its validate tags.
// It returns a message suitable for a 400 response, or "".
func bindJSON(c *fiber.Ctx, dst interface{}) string {
	if err := c.BodyParser(dst); err != nil {
		return "invalid request body"
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err.Error()
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, describe(fe))
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gte", "lte", "max":
		return fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param())
	default:
		return field + " is invalid"
	}
}
