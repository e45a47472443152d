package validation

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/placement/internal/pkg/deptset"
)

// Validation rule values shared by request DTOs and services
const (
	PasswordMinLength = 8

	NameMinLength = 2
	NameMaxLength = 100

	MinCGPA = 0.0
	MaxCGPA = 10.0
)

// Register adds the custom rules to gin's validator engine. It is safe to
// call more than once.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterRules(v)
}

// RegisterRules adds the custom rules to v:
//
//	department  a known department name
//	departments every element is a known department or "all"
//	cgpa        a value in [0, 10]
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation("department", validateDepartment); err != nil {
		return err
	}
	if err := v.RegisterValidation("departments", validateDepartments); err != nil {
		return err
	}
	return v.RegisterValidation("cgpa", validateCGPA)
}

func validateDepartment(fl validator.FieldLevel) bool {
	return deptset.IsKnown(fl.Field().String())
}

func validateDepartments(fl validator.FieldLevel) bool {
	values, ok := fl.Field().Interface().([]string)
	if !ok {
		return false
	}
	_, err := deptset.Normalize(values)
	return err == nil
}

func validateCGPA(fl validator.FieldLevel) bool {
	return ValidCGPA(fl.Field().Float())
}

// ValidCGPA reports whether c is inside the grading scale
func ValidCGPA(c float64) bool {
	return c >= MinCGPA && c <= MaxCGPA
}

// FormatFieldError creates a human-readable validation error message
func FormatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gte":
		return e.Field() + " must be greater than or equal to " + e.Param()
	case "lte":
		return e.Field() + " must be less than or equal to " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + strings.Join(strings.Fields(e.Param()), ", ")
	case "department":
		return e.Field() + " must be one of: " + strings.Join(deptset.Known, ", ")
	case "departments":
		return e.Field() + " must list known departments or \"all\""
	case "cgpa":
		return e.Field() + " must be between 0 and 10"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
