package ledger

import "errors"

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidKind        = errors.New("unknown transaction kind")
	ErrInsufficientScore  = errors.New("insufficient score balance")
	ErrDuplicateReference = errors.New("duplicate reference")
	ErrReferenceConflict  = errors.New("reference conflicts with different amount")
	ErrNotFound           = errors.New("transaction not found")
)
