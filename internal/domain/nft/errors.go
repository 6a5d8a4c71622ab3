package nft

import "errors"

var (
	ErrNotFound           = errors.New("pool item not found")
	ErrNotEligible        = errors.New("wallet is not eligible for this item")
	ErrNotAvailable       = errors.New("item is not available")
	ErrAlreadyOwned       = errors.New("wallet already claimed this item")
	ErrNotReserved        = errors.New("item is not reserved by this wallet")
	ErrReservationExpired = errors.New("reservation expired")
	ErrTransferFailed     = errors.New("on-chain transfer failed")
	ErrMintFailed         = errors.New("on-chain mint failed")
)
