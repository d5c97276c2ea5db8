package domain

import "errors"

var (
	// ErrWrongPassword indicates the wrong password for the given account.
	ErrWrongPassword = errors.New("wrong password")
	// ErrInvalidOTP indicates a wrong, expired or already consumed one time code.
	ErrInvalidOTP = errors.New("invalid or expired one-time code")
	// ErrInvalidResetToken indicates a wrong, expired or already consumed reset token.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
)
