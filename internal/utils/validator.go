package utils

import (
	"github.com/go-playground/validator/v10"
	"reflect"
	"regexp"
	"strings"
)

var Validate *validator.Validate

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

func InitValidator() {
	Validate = validator.New()

	// report json field names so error payloads match the request body
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}
