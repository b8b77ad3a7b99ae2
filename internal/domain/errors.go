package domain

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidInput            = errors.New("invalid input")
	ErrPricingNotConfigured    = errors.New("pricing not configured for shop and template")
	ErrInvalidOrder            = errors.New("invalid order")
	ErrOrderLocked             = errors.New("order can no longer be modified")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrConflict                = errors.New("concurrent update conflict")
)
