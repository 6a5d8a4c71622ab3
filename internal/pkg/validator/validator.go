package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wastewise/wastewise-api/internal/pkg/walletaddr"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Wallet address validation
	validate.RegisterValidation("wallet", func(fl validator.FieldLevel) bool {
		return walletaddr.Valid(strings.TrimSpace(fl.Field().String()))
	})

	// Waste category validation
	validate.RegisterValidation("waste_category", func(fl validator.FieldLevel) bool {
		category := fl.Field().String()
		validCategories := []string{"recyclable", "hazardous", "kitchen", "other"}
		for _, c := range validCategories {
			if category == c {
				return true
			}
		}
		return false
	})

	// Achievement category validation
	validate.RegisterValidation("achievement_category", func(fl validator.FieldLevel) bool {
		category := fl.Field().String()
		validCategories := []string{"milestone", "streak", "accuracy", "social", "seasonal", "special"}
		for _, c := range validCategories {
			if category == c {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "url":
			errors[field] = "Invalid URL format"
		case "wallet":
			errors[field] = "Invalid wallet address. Must be a 0x-prefixed hex address"
		case "waste_category":
			errors[field] = "Invalid category. Must be: recyclable, hazardous, kitchen, or other"
		case "achievement_category":
			errors[field] = "Invalid category. Must be: milestone, streak, accuracy, social, seasonal, or special"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
