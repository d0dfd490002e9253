package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorClasses(t *testing.T) {
	tests := []struct {
		err   error
		class error
	}{
		{invalid("qq", "is required"), ErrValidation},
		{ErrRecordNotFound, ErrNotFound},
		{ErrAddressNotFound, ErrNotFound},
		{ErrSendLocked, ErrStateConflict},
		{ErrInfoNotSupplied, ErrStateConflict},
		{persistence("write draw outcome", errors.New("eof")), ErrPersistence},
		{fmt.Errorf("wrapped: %w", ErrAlreadySent), ErrStateConflict},
	}
	classes := []error{ErrValidation, ErrNotFound, ErrStateConflict, ErrPersistence}

	for _, tt := range tests {
		for _, c := range classes {
			assert.Equal(t, c == tt.class, errors.Is(tt.err, c), "%v is %v", tt.err, c)
		}
	}
}

func TestPersistenceErrorUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := persistence("load prize table", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load prize table: connection refused", err.Error())
}

func TestReason(t *testing.T) {
	assert.Equal(t, "invalid qq: is required", Reason(invalid("qq", "is required")))
	assert.Equal(t, "prize record not found", Reason(ErrRecordNotFound))
	assert.Equal(t, "prize already sent", Reason(fmt.Errorf("void: %w", ErrAlreadySent)))
	assert.Equal(t, "service busy, please retry", Reason(persistence("x", errors.New("y"))))
	assert.Equal(t, "internal error", Reason(errors.New("boom")))
}

func TestValidators(t *testing.T) {
	assert.True(t, IsMobilephone("13800138000"))
	assert.True(t, IsMobilephone("19912345678"))
	assert.False(t, IsMobilephone("12800138000"))
	assert.False(t, IsMobilephone("1380013800"))
	assert.False(t, IsMobilephone("138001380001"))

	assert.True(t, IsQQ("10001"))
	assert.True(t, IsQQ("12345678901"))
	assert.False(t, IsQQ("1000"))
	assert.False(t, IsQQ("123456789012"))
	assert.False(t, IsQQ("01234"))
}
