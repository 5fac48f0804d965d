package validator

import (
	"errors"
	"fmt"
	"strings"

	playground "github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	log "github.com/kyma-project/cloud-pricing-collector/pkg/logger"
	"github.com/kyma-project/cloud-pricing-collector/pkg/resource"
)

var (
	ErrInvalidProvider     = errors.New("provider is not in the allow-list")
	ErrInvalidType         = errors.New("type is not in the allow-list")
	ErrEmptyInstanceType   = errors.New("instanceType is empty")
	ErrMissingComputeSpecs = errors.New("compute offering needs vCPU and memory")
	ErrNegativePrice       = errors.New("price is negative")
	ErrNoUsablePrice       = errors.New("no usable price")
	ErrInvalidField        = errors.New("invalid field")
	ErrPanic               = errors.New("validation panicked")
)

type Validator struct {
	structs *playground.Validate
	logger  *zap.SugaredLogger
}

func New(logger *zap.SugaredLogger) *Validator {
	structs := playground.New(playground.WithRequiredStructEnabled())

	// registration only fails on empty tags or nil funcs
	_ = structs.RegisterValidation("provider", func(fl playground.FieldLevel) bool {
		return resource.Provider(fl.Field().String()).Valid()
	})
	_ = structs.RegisterValidation("offering", func(fl playground.FieldLevel) bool {
		return resource.Type(fl.Field().String()).Valid()
	})

	return &Validator{
		structs: structs,
		logger:  logger,
	}
}

// Validate reports whether the instance may be published. It never panics.
func (v *Validator) Validate(instance resource.Instance) bool {
	err := v.Check(instance)
	if err != nil {
		reason := reasonOf(err)
		recordRejected(instance.Provider, reason)
		v.namedLogger().With(log.KeyProvider, instance.Provider).
			With(log.KeyInstance, instance.InstanceType).
			With(log.KeyReason, reason).
			With(log.KeyError, err.Error()).
			Warn("dropping invalid instance")

		return false
	}

	recordAccepted(instance.Provider)

	return true
}

// Check returns the first rule the instance violates, or nil.
func (v *Validator) Check(instance resource.Instance) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	if !instance.Provider.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProvider, instance.Provider)
	}

	if !instance.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, instance.Type)
	}

	if strings.TrimSpace(instance.InstanceType) == "" {
		return ErrEmptyInstanceType
	}

	if instance.Type.IsCompute() && (instance.VCPU <= 0 || instance.MemoryGiB <= 0) {
		return fmt.Errorf("%w: %s has vCPU=%d memoryGiB=%v", ErrMissingComputeSpecs, instance.InstanceType, instance.VCPU, instance.MemoryGiB)
	}

	if instance.PriceUSDHourly < 0 || instance.PriceUSDMonthly < 0 {
		return fmt.Errorf("%w: %s hourly=%v monthly=%v", ErrNegativePrice, instance.InstanceType, instance.PriceUSDHourly, instance.PriceUSDMonthly)
	}

	if !hasUsablePrice(instance) {
		return fmt.Errorf("%w: %s", ErrNoUsablePrice, instance.InstanceType)
	}

	if err := v.structs.Struct(instance); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidField, err)
	}

	return nil
}

func hasUsablePrice(instance resource.Instance) bool {
	return instance.PriceUSDHourly > 0 ||
		instance.PriceUSDMonthly > 0 ||
		instance.OriginalPrice.Hourly > 0 ||
		instance.OriginalPrice.Monthly > 0
}

func reasonOf(err error) string {
	for _, sentinel := range []error{
		ErrInvalidProvider,
		ErrInvalidType,
		ErrEmptyInstanceType,
		ErrMissingComputeSpecs,
		ErrNegativePrice,
		ErrNoUsablePrice,
		ErrPanic,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}

	return ErrInvalidField.Error()
}

func (v *Validator) namedLogger() *zap.SugaredLogger {
	return v.logger.With("component", "validator")
}
