package classification

import "errors"

var (
	ErrNotFound        = errors.New("classification not found")
	ErrOracleRejected  = errors.New("submission rejected by scoring oracle")
	ErrInvalidCategory = errors.New("unknown waste category")
)
