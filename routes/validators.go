package routes

import (
	"log"

	"university-results-backend/app/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidations installs the domain's custom binding rules on
// gin's validator engine. Call once before the router starts.
func RegisterValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		log.Fatal("Unexpected gin validator engine; binding rules cannot be registered")
	}

	rules := map[string]validator.Func{
		"rolename": func(fl validator.FieldLevel) bool {
			return model.Role(fl.Field().String()).Valid()
		},
		"componentkind": func(fl validator.FieldLevel) bool {
			return model.ComponentKind(fl.Field().String()).Valid()
		},
		"submissiontype": func(fl validator.FieldLevel) bool {
			return model.SubmissionType(fl.Field().String()).Valid()
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("Failed to register %s binding rule: %v", tag, err)
		}
	}
}
