package service

import (
	"errors"
	"fmt"

	"shopmall-api/pkg/validator"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidID    = errors.New("invalid id")
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("already exists")

	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)

	ErrDuplicateEmail = fmt.Errorf("email %w", ErrDuplicateKey)
	ErrDuplicateSKU   = fmt.Errorf("sku %w", ErrDuplicateKey)

	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access denied")

	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrAccountConflict       = errors.New("email is already registered with another sign-in method")
	ErrUpstreamVerification  = errors.New("social token verification failed")
	ErrProviderNotConfigured = errors.New("google client id is not configured")
)

// InsufficientStockError names the product that could not cover the requested quantity.
type InsufficientStockError struct {
	ProductName string
	Remaining   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s (remaining: %d)", e.ProductName, e.Remaining)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// ParseID parses a path identifier, failing with ErrInvalidID
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		firstErr := errs[0]
		return fmt.Errorf("%w: Field '%s' failed on tag '%s'", ErrValidation, firstErr.FailedField, firstErr.Tag)
	}
	return nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// notFound swaps gorm's record-not-found for the domain sentinel
func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// duplicate swaps gorm's translated unique violation for the domain sentinel
func duplicate(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return sentinel
	}
	return err
}
