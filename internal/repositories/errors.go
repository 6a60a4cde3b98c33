package repositories

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is wrapped by entity-specific lookups when no row matches.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is wrapped when a unique constraint rejects a write,
	// e.g. a second registration for the same event and user.
	ErrDuplicate = errors.New("duplicate record")

	// ErrCapacityExhausted is returned by EventRepository.ClaimSlot when the
	// conditional increment matches no row.
	ErrCapacityExhausted = errors.New("event capacity exhausted")
)

func NotFoundError(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
