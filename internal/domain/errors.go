package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrMerchantNotFound = fmt.Errorf("merchant %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrOrderExists      = errors.New("order already exists")

	ErrSignatureInvalid = errors.New("signature invalid")
	ErrDecryptionFailed = errors.New("decryption failed")

	// Ошибка внешнего сервиса (провайдер, платформа, рассылка)
	ErrExternalDependency = errors.New("external dependency failed")
	// Событие не новее последнего применённого
	ErrStaleEvent = errors.New("stale event")
)

// Validationf wraps ErrValidation with a formatted reason.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// External wraps err as ErrExternalDependency for the named effect.
func External(effect string, err error) error {
	return fmt.Errorf("%s: %w: %w", effect, ErrExternalDependency, err)
}
