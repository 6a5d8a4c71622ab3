package nft

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus is a pool item's allocation state. An item cycles
// AVAILABLE -> RESERVED -> CLAIMED, and a reservation that expires or
// whose transfer fails goes back to AVAILABLE.
type ItemStatus string

const (
	StatusAvailable ItemStatus = "AVAILABLE"
	StatusReserved  ItemStatus = "RESERVED"
	StatusClaimed   ItemStatus = "CLAIMED"
)

// AttemptStatus is the outcome of one transfer attempt.
type AttemptStatus string

const (
	AttemptPending   AttemptStatus = "PENDING"
	AttemptConfirmed AttemptStatus = "CONFIRMED"
	AttemptFailed    AttemptStatus = "FAILED"
)

// PoolItem is a minted token held in the treasury, waiting to be
// earned. Tokens are minted when the item enters the pool, so TokenID
// is always set.
type PoolItem struct {
	ID                      uuid.UUID  `db:"id" json:"id"`
	TokenID                 int64      `db:"token_id" json:"token_id"`
	Name                    string     `db:"name" json:"name"`
	Description             string     `db:"description" json:"description"`
	ImageURL                string     `db:"image_url" json:"image_url"`
	MetadataURI             string     `db:"metadata_uri" json:"metadata_uri"`
	MintTxHash              string     `db:"mint_tx_hash" json:"mint_tx_hash"`
	Category                string     `db:"category" json:"category"`
	Rarity                  int        `db:"rarity" json:"rarity"`
	RequiredScore           int64      `db:"required_score" json:"required_score"`
	RequiredClassifications int64      `db:"required_classifications" json:"required_classifications"`
	Status                  ItemStatus `db:"status" json:"status"`
	ReservedBy              *string    `db:"reserved_by" json:"reserved_by,omitempty"`
	ReservedUntil           *time.Time `db:"reserved_until" json:"reserved_until,omitempty"`
	OwnerWallet             *string    `db:"owner_wallet" json:"owner_wallet,omitempty"`
	ClaimedAt               *time.Time `db:"claimed_at" json:"claimed_at,omitempty"`
	IsActive                bool       `db:"is_active" json:"is_active"`
	CreatedBy               string     `db:"created_by" json:"created_by"`
	CreatedAt               time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time  `db:"updated_at" json:"updated_at"`
}

// ClaimAttempt is the audit row for one transfer attempt. Failed
// attempts are kept; the item itself goes back to the pool.
type ClaimAttempt struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	ItemID      uuid.UUID     `db:"item_id" json:"item_id"`
	Wallet      string        `db:"wallet_address" json:"wallet_address"`
	Status      AttemptStatus `db:"status" json:"status"`
	TxHash      *string       `db:"tx_hash" json:"tx_hash,omitempty"`
	BlockNumber *int64        `db:"block_number" json:"block_number,omitempty"`
	FailReason  *string       `db:"fail_reason" json:"fail_reason,omitempty"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
	CompletedAt *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
}

// EligibleItem is a pool item annotated with the calling wallet's
// standing against its thresholds.
type EligibleItem struct {
	PoolItem
	CanClaim bool     `json:"can_claim"`
	Missing  []string `json:"missing,omitempty"`
}

// PoolStats is the admin rollup of the pool.
type PoolStats struct {
	Total     int64 `db:"total" json:"total"`
	Available int64 `db:"available" json:"available"`
	Reserved  int64 `db:"reserved" json:"reserved"`
	Claimed   int64 `db:"claimed" json:"claimed"`
	Pending   int64 `db:"pending" json:"pending_attempts"`
}
