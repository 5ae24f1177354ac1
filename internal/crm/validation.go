package crm

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"workforce_crm/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// validateStruct runs the struct's validate tags and returns a single
// ValidationError listing every failed field.
func validateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		param := fe.Param()

		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "min":
			if fe.Kind() == reflect.String {
				msgs = append(msgs, field+" must be at least "+param+" characters")
			} else {
				msgs = append(msgs, field+" must be at least "+param)
			}
		case "max":
			msgs = append(msgs, field+" must be at most "+param+" characters")
		case "email":
			msgs = append(msgs, field+" must be a valid email")
		case "oneof":
			msgs = append(msgs, field+" must be one of: "+param)
		case "datetime":
			msgs = append(msgs, field+" must be a date in YYYY-MM-DD format")
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return apperr.Validation("%s", strings.Join(msgs, ", "))
}
