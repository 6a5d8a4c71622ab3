package achievement

import (
	"fmt"

	"github.com/wastewise/wastewise-api/internal/domain/classification"
)

// TimeWindowRequirement asks for submissions during an hour-of-day
// window, for example early-morning sorters. EndHour is exclusive and
// the window may wrap midnight.
type TimeWindowRequirement struct {
	StartHour int   `json:"start_hour"`
	EndHour   int   `json:"end_hour"`
	MinCount  int64 `json:"min_count"`
}

// Requirements is the set of predicates a wallet must satisfy. Every
// non-nil field is one predicate; progress is the share of predicates
// met.
type Requirements struct {
	MinScore           *int64                    `json:"min_score,omitempty"`
	MinAccuracy        *int                      `json:"min_accuracy,omitempty"`
	MinClassifications *int64                    `json:"min_classifications,omitempty"`
	ConsecutiveDays    *int                      `json:"consecutive_days,omitempty"`
	SpecificCategories []classification.Category `json:"specific_categories,omitempty"`
	TimeWindow         *TimeWindowRequirement    `json:"time_window,omitempty"`
}

// Count returns the number of predicates present.
func (r Requirements) Count() int {
	n := 0
	if r.MinScore != nil {
		n++
	}
	if r.MinAccuracy != nil {
		n++
	}
	if r.MinClassifications != nil {
		n++
	}
	if r.ConsecutiveDays != nil {
		n++
	}
	if len(r.SpecificCategories) > 0 {
		n++
	}
	if r.TimeWindow != nil {
		n++
	}
	return n
}

// Validate rejects requirement sets that could never be satisfied or
// that reference unknown categories.
func (r Requirements) Validate() error {
	if r.MinScore != nil && *r.MinScore <= 0 {
		return fmt.Errorf("%w: min_score must be positive", ErrInvalidRequirements)
	}
	if r.MinAccuracy != nil && (*r.MinAccuracy <= 0 || *r.MinAccuracy > 100) {
		return fmt.Errorf("%w: min_accuracy must be 1..100", ErrInvalidRequirements)
	}
	if r.MinClassifications != nil && *r.MinClassifications <= 0 {
		return fmt.Errorf("%w: min_classifications must be positive", ErrInvalidRequirements)
	}
	if r.ConsecutiveDays != nil && *r.ConsecutiveDays <= 0 {
		return fmt.Errorf("%w: consecutive_days must be positive", ErrInvalidRequirements)
	}
	for _, c := range r.SpecificCategories {
		switch c {
		case classification.CategoryRecyclable, classification.CategoryHazardous,
			classification.CategoryKitchen, classification.CategoryOther:
		default:
			return fmt.Errorf("%w: unknown category %q", ErrInvalidRequirements, c)
		}
	}
	if tw := r.TimeWindow; tw != nil {
		if tw.StartHour < 0 || tw.StartHour > 23 || tw.EndHour < 0 || tw.EndHour > 24 {
			return fmt.Errorf("%w: time_window hours out of range", ErrInvalidRequirements)
		}
		if tw.MinCount <= 0 {
			return fmt.Errorf("%w: time_window min_count must be positive", ErrInvalidRequirements)
		}
	}
	return nil
}
