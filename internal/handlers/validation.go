package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/omarionnn/mom-app/internal/models"
)

// RegisterValidators installs custom binding rules on gin's validator
// engine. Safe to call more than once.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("direction", func(fl validator.FieldLevel) bool {
		switch models.Direction(fl.Field().String()) {
		case models.DirectionLeft, models.DirectionRight:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("visibility", func(fl validator.FieldLevel) bool {
		switch models.Visibility(fl.Field().String()) {
		case models.VisibilityPublic, models.VisibilityMatchesOnly, models.VisibilityPrivate:
			return true
		}
		return false
	})
}
