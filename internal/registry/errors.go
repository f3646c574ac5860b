package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrRecordNotFound is returned by a Store when no record matches the address.
	ErrRecordNotFound = errors.New("record not found")
	// ErrRecordExists is returned by Store.Add when the address is already registered.
	ErrRecordExists = errors.New("record already exists")
)

// ValidationError is returned for empty or malformed caller input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError is returned when no wallet is registered for a user address
type NotFoundError struct {
	UserAddress string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no wallet found for user address %s", e.UserAddress)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrRecordNotFound
}

// DuplicateCreateError is returned when a record for the address appeared
// between the existence check and the write. This can only happen when
// another process writes the same registry; OrphanedWalletID is the custodial
// wallet that was created but not recorded.
type DuplicateCreateError struct {
	UserAddress      string
	OrphanedWalletID string
}

func (e *DuplicateCreateError) Error() string {
	return fmt.Sprintf(
		"concurrent wallet creation for user address %s, orphaned wallet %q",
		e.UserAddress, e.OrphanedWalletID,
	)
}

func (e *DuplicateCreateError) Is(target error) bool {
	return target == ErrRecordExists
}

// CustodyError wraps a failure of the custody provider
type CustodyError struct {
	Op  string
	Err error
}

func (e *CustodyError) Error() string {
	return fmt.Sprintf("custody provider failed to %s: %v", e.Op, e.Err)
}

func (e *CustodyError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a failure to read, decode, encode or write the registry
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("registry %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("registry %s %s failed: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if err is or wraps a ValidationError
func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsNotFoundError checks if err is or wraps a NotFoundError
func IsNotFoundError(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsDuplicateCreateError checks if err is or wraps a DuplicateCreateError
func IsDuplicateCreateError(err error) bool {
	var e *DuplicateCreateError
	return errors.As(err, &e)
}

// IsCustodyError checks if err is or wraps a CustodyError
func IsCustodyError(err error) bool {
	var e *CustodyError
	return errors.As(err, &e)
}

// IsPersistenceError checks if err is or wraps a PersistenceError
func IsPersistenceError(err error) bool {
	var e *PersistenceError
	return errors.As(err, &e)
}
