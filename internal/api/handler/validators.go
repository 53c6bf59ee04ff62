package handler

import (
	"fmt"
	"sync/atomic"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

const maxTierLength = 32

// strictTiers is read on every validation because the validator caches
// the registered func per struct type
var strictTiers atomic.Bool

// RegisterValidators adds the application_status and boost_tier tags to gin's validator.
// Without strict tiers any short tier name passes and the service falls back to the default tier.
func RegisterValidators(strict bool) error {
	strictTiers.Store(strict)

	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}

	if err := v.RegisterValidation("application_status", validateApplicationStatus); err != nil {
		return fmt.Errorf("failed to register application_status: %w", err)
	}
	if err := v.RegisterValidation("boost_tier", validateBoostTier); err != nil {
		return fmt.Errorf("failed to register boost_tier: %w", err)
	}
	return nil
}

func validateApplicationStatus(fl validator.FieldLevel) bool {
	return domain.ApplicationStatus(fl.Field().String()).Valid()
}

func validateBoostTier(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if strictTiers.Load() {
		_, ok := domain.LookupTier(value)
		return ok
	}
	return len(value) <= maxTierLength
}
