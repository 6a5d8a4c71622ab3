package ledger

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind tells which subsystem produced a score movement.
type TransactionKind string

const (
	KindClassification TransactionKind = "classification"
	KindAchievement    TransactionKind = "achievement"
	KindNFT            TransactionKind = "nft"
	KindBonus          TransactionKind = "bonus"
	KindAdjustment     TransactionKind = "adjustment"
)

// ValidKind reports whether k is one of the known transaction kinds.
func ValidKind(k TransactionKind) bool {
	switch k {
	case KindClassification, KindAchievement, KindNFT, KindBonus, KindAdjustment:
		return true
	}
	return false
}

// Transaction is one append-only score movement. Positive amounts are
// earnings, negative amounts are spends. Rows are never deleted; a
// mistaken row is voided by clearing is_valid.
type Transaction struct {
	ID          uuid.UUID       `db:"id" json:"id"`
	Wallet      string          `db:"wallet_address" json:"wallet_address"`
	Amount      int64           `db:"amount" json:"amount"`
	Kind        TransactionKind `db:"kind" json:"kind"`
	ReferenceID *string         `db:"reference_id" json:"reference_id,omitempty"`
	Description string          `db:"description" json:"description"`
	IsValid     bool            `db:"is_valid" json:"is_valid"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// Balance is the snapshot of a wallet's score position.
type Balance struct {
	Wallet   string `json:"wallet_address"`
	Earned   int64  `json:"score_earned"`
	Spent    int64  `json:"score_spent"`
	NetScore int64  `json:"net_score"`
}
