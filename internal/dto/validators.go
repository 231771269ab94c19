package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// dpositive validates that a decimal.Decimal field is strictly greater than
// zero. binding:"required" alone cannot express this because decimal's zero
// value marshals fine and a literal 0 passes required on non-pointer fields.
func dpositive(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(decimal.Decimal)
	if !ok {
		return false
	}
	return d.IsPositive()
}

// RegisterCustomValidations installs the custom binding validations on gin's
// validator engine. Call once at startup before serving requests.
func RegisterCustomValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("dpositive", dpositive)
}
