package api

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"desk-reservation-backend/internal/parse"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerValidators adds the form rules used by the handlers to gin's validator.
func registerValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding validator is not go-playground/validator")
			return
		}
		registerErr = v.RegisterValidation("datetime_minute", func(fl validator.FieldLevel) bool {
			_, err := parse.DateTime(fl.Field().String())
			return err == nil
		})
	})
	return registerErr
}

// formErrorMessage turns the first binding failure into a user-facing message.
func formErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request."
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required.", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address.", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters.", field, fe.Param())
	case "datetime_minute":
		return fmt.Sprintf("%s must use the YYYY-MM-DDTHH:MM format.", field)
	default:
		return fmt.Sprintf("%s is invalid.", field)
	}
}
