package account

import (
	"time"

	"github.com/wastewise/wastewise-api/internal/domain/classification"
)

// Stats is a point-in-time snapshot of a wallet's standing. It is
// computed from the ledger and classification history, never stored.
type Stats struct {
	Wallet                 string                         `json:"wallet_address"`
	NetScore               int64                          `json:"net_score"`
	ScoreEarned            int64                          `json:"score_earned"`
	ScoreSpent             int64                          `json:"score_spent"`
	TotalClassifications   int64                          `json:"total_classifications"`
	CorrectClassifications int64                          `json:"correct_classifications"`
	Accuracy               int                            `json:"accuracy"`
	ActiveDays             int                            `json:"active_days"`
	ConsecutiveDays        int                            `json:"consecutive_days"`
	Categories             []classification.CategoryCount `json:"categories"`
	CorrectCategories      []classification.Category      `json:"correct_categories"`
	FirstActivity          *time.Time                     `json:"first_activity,omitempty"`
	LastActivity           *time.Time                     `json:"last_activity,omitempty"`
	AsOf                   time.Time                      `json:"as_of"`
}

// HasCategory reports whether the wallet has correctly classified the
// given category at least once. Incorrect submissions do not count,
// whatever the oracle detected.
func (s *Stats) HasCategory(c classification.Category) bool {
	for _, cc := range s.CorrectCategories {
		if cc == c {
			return true
		}
	}
	return false
}
