package achievement

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Category groups achievements for the catalog UI.
type Category string

const (
	CategoryMilestone Category = "milestone"
	CategoryStreak    Category = "streak"
	CategoryAccuracy  Category = "accuracy"
	CategorySocial    Category = "social"
	CategorySeasonal  Category = "seasonal"
	CategorySpecial   Category = "special"
)

// Tiers order achievements from entry level to prestige.
const (
	TierBronze   = 1
	TierSilver   = 2
	TierGold     = 3
	TierPlatinum = 4
	TierDiamond  = 5
)

// Achievement is a catalog entry. Requirements live in a JSONB column
// so new catalog entries never need a migration.
type Achievement struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	Code         string       `db:"code" json:"code"`
	Title        string       `db:"title" json:"title"`
	Description  string       `db:"description" json:"description"`
	Category     Category     `db:"category" json:"category"`
	Tier         int          `db:"tier" json:"tier"`
	Icon         string       `db:"icon" json:"icon"`
	RewardScore  int64        `db:"reward_score" json:"reward_score"`
	SortOrder    int          `db:"sort_order" json:"sort_order"`
	MaxClaims    *int         `db:"max_claims" json:"max_claims,omitempty"`
	ValidFrom    *time.Time   `db:"valid_from" json:"valid_from,omitempty"`
	ValidUntil   *time.Time   `db:"valid_until" json:"valid_until,omitempty"`
	Requirements Requirements `db:"requirements" json:"requirements"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

// ClaimableAt reports whether the achievement's validity window is
// open at t. Nil bounds are open ended.
func (a *Achievement) ClaimableAt(t time.Time) bool {
	if a.ValidFrom != nil && t.Before(*a.ValidFrom) {
		return false
	}
	if a.ValidUntil != nil && t.After(*a.ValidUntil) {
		return false
	}
	return true
}

// WalletAchievement is a wallet's progress row for one achievement.
type WalletAchievement struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	Wallet        string     `db:"wallet_address" json:"wallet_address"`
	AchievementID uuid.UUID  `db:"achievement_id" json:"achievement_id"`
	Percent       int        `db:"percent" json:"percent"`
	Completed     bool       `db:"completed" json:"completed"`
	CompletedAt   *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	IsClaimed     bool       `db:"is_claimed" json:"is_claimed"`
	ClaimedAt     *time.Time `db:"claimed_at" json:"claimed_at,omitempty"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// Value implements driver.Valuer for the JSONB requirements column.
func (r Requirements) Value() (driver.Value, error) {
	return json.Marshal(r)
}

// Scan implements sql.Scanner for the JSONB requirements column.
func (r *Requirements) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*r = Requirements{}
		return nil
	case []byte:
		return json.Unmarshal(v, r)
	case string:
		return json.Unmarshal([]byte(v), r)
	default:
		return errors.New("unsupported requirements column type")
	}
}
