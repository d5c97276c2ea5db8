package authdelivery

import (
	"github.com/go-playground/validator/v10"

	"github.com/business-nexus/nexus/internal/domain"
)

// ValidRole validates whether the role is supported.
var ValidRole validator.Func = func(fl validator.FieldLevel) bool {
	if r, ok := fl.Field().Interface().(string); ok {
		return domain.IsValidRole(domain.Role(r))
	}
	return false
}
