package achievement

import (
	"fmt"
	"math"

	"github.com/wastewise/wastewise-api/internal/domain/account"
)

// EvalInput carries everything the evaluator may need. InWindowCount
// is only meaningful when the requirements include a time window; the
// caller computes it for that window.
type EvalInput struct {
	Stats         *account.Stats
	InWindowCount int64
}

// Progress is the evaluator's verdict for one achievement.
type Progress struct {
	Percent   int      `json:"percent"`
	Completed bool     `json:"completed"`
	Missing   []string `json:"missing,omitempty"`
}

// Evaluate scores a requirement set against a wallet snapshot. It is
// pure: same inputs, same verdict. Percent is the share of predicates
// met, rounded to a whole percent; an achievement with no predicates
// can never complete.
func Evaluate(req Requirements, in EvalInput) Progress {
	total := req.Count()
	if total == 0 {
		return Progress{Percent: 0, Missing: []string{"no requirements defined"}}
	}

	stats := in.Stats
	met := 0
	var missing []string

	if req.MinScore != nil {
		if stats.NetScore >= *req.MinScore {
			met++
		} else {
			missing = append(missing, fmt.Sprintf("need %d score, have %d", *req.MinScore, stats.NetScore))
		}
	}

	if req.MinAccuracy != nil {
		if stats.Accuracy >= *req.MinAccuracy {
			met++
		} else {
			missing = append(missing, fmt.Sprintf("need %d%% accuracy, at %d%%", *req.MinAccuracy, stats.Accuracy))
		}
	}

	if req.MinClassifications != nil {
		if stats.TotalClassifications >= *req.MinClassifications {
			met++
		} else {
			missing = append(missing, fmt.Sprintf("need %d classifications, have %d", *req.MinClassifications, stats.TotalClassifications))
		}
	}

	if req.ConsecutiveDays != nil {
		if stats.ConsecutiveDays >= *req.ConsecutiveDays {
			met++
		} else {
			missing = append(missing, fmt.Sprintf("need a %d-day streak, at %d days", *req.ConsecutiveDays, stats.ConsecutiveDays))
		}
	}

	if len(req.SpecificCategories) > 0 {
		missed := 0
		for _, c := range req.SpecificCategories {
			if !stats.HasCategory(c) {
				missed++
				missing = append(missing, fmt.Sprintf("classify %s waste correctly at least once", c))
			}
		}
		if missed == 0 {
			met++
		}
	}

	if tw := req.TimeWindow; tw != nil {
		if in.InWindowCount >= tw.MinCount {
			met++
		} else {
			missing = append(missing, fmt.Sprintf("need %d classifications between %02d:00 and %02d:00, have %d",
				tw.MinCount, tw.StartHour, tw.EndHour, in.InWindowCount))
		}
	}

	percent := int(math.Round(float64(met) / float64(total) * 100))
	return Progress{
		Percent:   percent,
		Completed: met == total,
		Missing:   missing,
	}
}
