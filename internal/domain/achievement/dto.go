package achievement

import "time"

type CreateRequest struct {
	Code         string       `json:"code" validate:"required,min=2,max=64"`
	Title        string       `json:"title" validate:"required,min=2,max=128"`
	Description  string       `json:"description" validate:"max=1000"`
	Category     string       `json:"category" validate:"required,achievement_category"`
	Tier         int          `json:"tier" validate:"required,min=1,max=5"`
	Icon         string       `json:"icon" validate:"max=255"`
	RewardScore  int64        `json:"reward_score" validate:"gte=0"`
	SortOrder    int          `json:"sort_order" validate:"gte=0"`
	MaxClaims    *int         `json:"max_claims,omitempty" validate:"omitempty,gt=0"`
	ValidFrom    *time.Time   `json:"valid_from,omitempty"`
	ValidUntil   *time.Time   `json:"valid_until,omitempty"`
	Requirements Requirements `json:"requirements"`
	IsActive     *bool        `json:"is_active,omitempty"`
}

type UpdateRequest struct {
	Title        string       `json:"title" validate:"required,min=2,max=128"`
	Description  string       `json:"description" validate:"max=1000"`
	Category     string       `json:"category" validate:"required,achievement_category"`
	Tier         int          `json:"tier" validate:"required,min=1,max=5"`
	Icon         string       `json:"icon" validate:"max=255"`
	RewardScore  int64        `json:"reward_score" validate:"gte=0"`
	SortOrder    int          `json:"sort_order" validate:"gte=0"`
	MaxClaims    *int         `json:"max_claims,omitempty" validate:"omitempty,gt=0"`
	ValidFrom    *time.Time   `json:"valid_from,omitempty"`
	ValidUntil   *time.Time   `json:"valid_until,omitempty"`
	Requirements Requirements `json:"requirements"`
	IsActive     bool         `json:"is_active"`
}

type ClaimRequest struct {
	Wallet string `json:"wallet_address" validate:"required,wallet"`
}

type ForceProgressRequest struct {
	Wallet        string `json:"wallet_address" validate:"required,wallet"`
	Percent       int    `json:"percent" validate:"gte=0,lte=100"`
	ForceComplete bool   `json:"force_complete"`
}

type BatchCreateRequest struct {
	Achievements []CreateRequest `json:"achievements" validate:"required,min=1,max=100,dive"`
}
