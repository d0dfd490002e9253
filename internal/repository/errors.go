// Package repository provides data access layer implementations.
package repository

import "errors"

// Common errors for repository operations.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrRecordNotFound   = errors.New("prize record not found")
	ErrAddressNotFound  = errors.New("address not found")
	ErrDistrictNotFound = errors.New("district not found")
	// ErrStaleRecord is returned when a conditional update matched no row
	// because the record changed since it was read.
	ErrStaleRecord = errors.New("prize record changed concurrently")
)
