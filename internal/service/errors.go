// Package service provides the lucky draw business logic: the draw engine,
// prize table administration, the fulfillment state machine and ledger queries.
package service

import (
	"errors"
	"fmt"
)

// Error classes. Use errors.Is to classify any error returned by this package.
var (
	ErrValidation    = errors.New("validation failed")
	ErrNotFound      = errors.New("not found")
	ErrStateConflict = errors.New("state conflict")
	ErrPersistence   = errors.New("persistence failure")
)

// Not-found errors.
var (
	ErrRecordNotFound   = &NotFoundError{Resource: "prize record"}
	ErrAddressNotFound  = &NotFoundError{Resource: "address"}
	ErrDistrictNotFound = &NotFoundError{Resource: "district"}
)

// State conflicts.
var (
	ErrNotFulfillable    = &StateConflictError{Reason: "prize type needs no fulfillment"}
	ErrAlreadySent       = &StateConflictError{Reason: "prize already sent"}
	ErrSendLocked        = &StateConflictError{Reason: "prize was sent more than the grace period ago and is locked"}
	ErrInfoNotSupplied   = &StateConflictError{Reason: "winner has not supplied recipient info"}
	ErrConcurrentUpdate  = &StateConflictError{Reason: "prize record was modified concurrently"}
	ErrPrizeTableMissing = &StateConflictError{Reason: "prize table is not configured"}
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) true.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a missing entity.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StateConflictError reports a transition not allowed in the current state.
type StateConflictError struct {
	Reason string
}

func (e *StateConflictError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrStateConflict) true.
func (e *StateConflictError) Is(target error) bool {
	return target == ErrStateConflict
}

// PersistenceError reports a failed storage operation. It is transient and
// safe to retry.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPersistence) true.
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}

// Reason returns the short human readable reason carried by err.
func Reason(err error) string {
	var (
		ve *ValidationError
		nf *NotFoundError
		sc *StateConflictError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &nf):
		return nf.Error()
	case errors.As(err, &sc):
		return sc.Reason
	case errors.Is(err, ErrPersistence):
		return "service busy, please retry"
	}
	return "internal error"
}
