package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/emre/teamforge/internal/app/models"
	"github.com/emre/teamforge/internal/app/models/dto"
	"github.com/emre/teamforge/internal/pkg/validation"
)

// RegisterValidators installs the custom binding validators used by the
// request DTOs. Must run once before the router starts serving.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("classyear", func(fl validator.FieldLevel) bool {
		return models.ClassYear(fl.Field().String()).IsValid()
	}); err != nil {
		return err
	}

	if err := v.RegisterValidation("skilltag", func(fl validator.FieldLevel) bool {
		return validation.IsValidSkillTag(fl.Field().String())
	}); err != nil {
		return err
	}

	return nil
}

// HandleBindingError converts a request binding failure into the standard
// validation error envelope
func HandleBindingError(c *gin.Context, err error) {
	if verrs, ok := err.(validator.ValidationErrors); ok {
		validationErrors := dto.NewValidationErrors()
		for _, fe := range verrs {
			validationErrors.AddError(fe.Field(), formatValidationError(fe))
		}
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
			WithDetails(validationErrors.Errors)
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format").
		WithDetails(err.Error())
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "classyear":
		return e.Field() + " must be one of: FIRST, SECOND, THIRD, FINAL"
	case "skilltag":
		return e.Field() + " must be a valid skill tag"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
