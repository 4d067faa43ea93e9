package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/serroba/launch-site-go/internal/apierror"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// validationError turns validator failures into a 400 listing each field.
func validationError(msg string, err error) *apierror.Error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierror.BadRequest(msg).WithDetails(err.Error())
	}

	details := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, fmt.Sprintf("%s: %s", trimRoot(fe.Namespace()), fe.Tag()))
	}

	return apierror.BadRequest(msg).WithDetails(strings.Join(details, "; "))
}

// trimRoot drops the struct type name from a validator namespace.
func trimRoot(ns string) string {
	_, field, ok := strings.Cut(ns, ".")
	if !ok {
		return ns
	}

	return field
}
