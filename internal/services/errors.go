package services

import (
	"errors"

	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidDate        = errors.New("invalid date")
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTOTPRequired       = errors.New("two-factor code required")
	ErrInvalidTOTPCode    = errors.New("invalid two-factor code")
	ErrNoTOTPSecret       = errors.New("two-factor setup not started")
	ErrTooManyRequests    = errors.New("too many requests")
	ErrOTPExpired         = errors.New("otp expired")
	ErrOTPInvalid         = errors.New("invalid otp")
	ErrTooManyAttempts    = errors.New("too many attempts")
	ErrStorageDisabled    = errors.New("object storage not configured")
)

// notFound converts pgx.ErrNoRows into ErrNotFound and leaves other errors alone
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
