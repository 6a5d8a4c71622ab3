package achievement

import "errors"

var (
	ErrNotFound              = errors.New("achievement not found")
	ErrCodeExists            = errors.New("achievement code already exists")
	ErrNotCompleted          = errors.New("achievement not completed")
	ErrAlreadyClaimed        = errors.New("achievement already claimed")
	ErrClaimCapReached       = errors.New("achievement claim cap reached")
	ErrOutsideValidityWindow = errors.New("achievement outside validity window")
	ErrInactive              = errors.New("achievement is not active")
	ErrInvalidRequirements   = errors.New("invalid achievement requirements")
)
