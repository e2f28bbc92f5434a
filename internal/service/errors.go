package service

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrInvalidVerifyCode  = errors.New("verification code invalid or expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrPatientNotFound    = errors.New("patient not found")
	ErrNotFound           = errors.New("record not found")
	ErrInvalidTimeRange   = errors.New("invalid date or time")
	ErrUnknownPlan        = errors.New("unknown plan")
	ErrAccessInactive     = errors.New("account has no active access")
	ErrStorageUnavailable = errors.New("object storage not configured")
	ErrBillingUnavailable = errors.New("billing not configured")
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
