package classification

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Category is a waste category known to the sorting oracle.
type Category string

const (
	CategoryRecyclable Category = "recyclable"
	CategoryHazardous  Category = "hazardous"
	CategoryKitchen    Category = "kitchen"
	CategoryOther      Category = "other"
)

// Classification is one graded waste-sorting submission. The oracle's
// verdict is stored verbatim so history survives oracle redeployments.
type Classification struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	Wallet           string         `db:"wallet_address" json:"wallet_address"`
	ImageURL         string         `db:"image_url" json:"image_url"`
	ExpectedCategory Category       `db:"expected_category" json:"expected_category"`
	DetectedCategory Category       `db:"detected_category" json:"detected_category"`
	Confidence       float64        `db:"confidence" json:"confidence"`
	IsCorrect        bool           `db:"is_correct" json:"is_correct"`
	Score            int64          `db:"score" json:"score"`
	Analysis         string         `db:"analysis" json:"analysis"`
	Suggestions      pq.StringArray `db:"suggestions" json:"suggestions"`
	Location         *string        `db:"location" json:"location,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// CategoryCount is a per-category submission tally.
type CategoryCount struct {
	Category Category `db:"category" json:"category"`
	Count    int64    `db:"count" json:"count"`
}
