package service

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/donor-registry-api/internal/models"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9\s-]{10,15}$`)

// registerRegistryValidations adds the registry's custom tags to v.
func registerRegistryValidations(v *validator.Validate) *validator.Validate {
	if v == nil {
		v = validator.New()
	}
	_ = v.RegisterValidation("bloodgroup", func(fl validator.FieldLevel) bool {
		return models.BloodGroup(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("bloodgroup_or_all", func(fl validator.FieldLevel) bool {
		raw := fl.Field().String()
		return raw == models.BloodGroupAll || models.BloodGroup(raw).Valid()
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	return v
}
