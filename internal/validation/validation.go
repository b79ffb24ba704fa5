// Package validation holds the form rules shared by the HTTP binder and the
// ledgerctl forms, so a payload rejected locally is rejected by the server too.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var (
	phonePattern    = regexp.MustCompile(`^\+?[0-9][0-9 ()\-]{5,19}$`)
	documentPattern = regexp.MustCompile(`^[0-9A-Za-z][0-9A-Za-z.\-]*$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report json names ("payment_days") instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	// Money rules compare in decimal; a float conversion would turn 1e-400 into 0.
	_ = v.RegisterValidation("dgt", decimalRule(func(cmp int) bool { return cmp > 0 }))
	_ = v.RegisterValidation("dgte", decimalRule(func(cmp int) bool { return cmp >= 0 }))

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("document", func(fl validator.FieldLevel) bool {
		return documentPattern.MatchString(fl.Field().String())
	})
	return v
}

// decimalRule builds a validation comparing a decimal.Decimal field with the
// tag parameter; ok receives the result of field.Cmp(param).
func decimalRule(ok func(cmp int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		d, isDecimal := fl.Field().Interface().(decimal.Decimal)
		if !isDecimal {
			return false
		}
		limit, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return ok(d.Cmp(limit))
	}
}

// Struct validates s and returns field → message, or nil when s is valid.
// Non-validation failures (e.g. a nil pointer) are reported under "_".
func Struct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return fields
}

// fieldPath drops the root struct name: "InvoiceInput.items[0].total" becomes "items[0].total".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obligatorio"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("debe tener al menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("debe ser mayor o igual a %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("debe tener como maximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("debe ser menor o igual a %s", fe.Param())
	case "gt", "dgt":
		return fmt.Sprintf("debe ser mayor a %s", fe.Param())
	case "gte", "dgte":
		return fmt.Sprintf("debe ser mayor o igual a %s", fe.Param())
	case "email":
		return "email invalido"
	case "phone":
		return "telefono invalido"
	case "document":
		return "documento invalido"
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	default:
		return fe.Tag()
	}
}
