package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ReadAndValidateRequest binds the request into req, fills defaults and runs
// struct validation. The returned error is safe to show to clients.
func ReadAndValidateRequest(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return describe(err)
	}

	if err := defaults.Set(req); err != nil {
		return describe(err)
	}

	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return describe(err)
	}

	return nil
}

func describe(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("%s failed validation: %s", e.Field(), e.Tag()))
		}
		return errors.New(strings.Join(msgs, "; "))
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		return fmt.Errorf("%v", he.Message)
	}

	return err
}
