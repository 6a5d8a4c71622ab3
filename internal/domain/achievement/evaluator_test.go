package achievement_test

import (
	"reflect"
	"testing"

	"github.com/wastewise/wastewise-api/internal/domain/account"
	"github.com/wastewise/wastewise-api/internal/domain/achievement"
	"github.com/wastewise/wastewise-api/internal/domain/classification"
)

func i64(v int64) *int64 { return &v }
func iv(v int) *int      { return &v }

func snapshot() *account.Stats {
	return &account.Stats{
		Wallet:                 "0x1111111111111111111111111111111111111111",
		NetScore:               120,
		TotalClassifications:   30,
		CorrectClassifications: 27,
		Accuracy:               90,
		ActiveDays:             12,
		ConsecutiveDays:        5,
		Categories: []classification.CategoryCount{
			{Category: classification.CategoryRecyclable, Count: 20},
			{Category: classification.CategoryKitchen, Count: 7},
		},
		CorrectCategories: []classification.Category{
			classification.CategoryRecyclable,
			classification.CategoryKitchen,
		},
	}
}

func TestEvaluateAllMet(t *testing.T) {
	req := achievement.Requirements{
		MinScore:           i64(100),
		MinAccuracy:        iv(80),
		MinClassifications: i64(25),
	}
	got := achievement.Evaluate(req, achievement.EvalInput{Stats: snapshot()})
	if !got.Completed || got.Percent != 100 || len(got.Missing) != 0 {
		t.Fatalf("expected completed 100%%, got %+v", got)
	}
}

func TestEvaluatePartial(t *testing.T) {
	req := achievement.Requirements{
		MinScore:           i64(500), // not met
		MinAccuracy:        iv(80),   // met
		MinClassifications: i64(25),  // met
	}
	got := achievement.Evaluate(req, achievement.EvalInput{Stats: snapshot()})
	if got.Completed {
		t.Fatal("should not be completed")
	}
	if got.Percent != 67 {
		t.Errorf("percent = %d, want 67 (2 of 3 rounded)", got.Percent)
	}
	if len(got.Missing) != 1 {
		t.Fatalf("missing = %v, want one message", got.Missing)
	}
	if got.Missing[0] != "need 500 score, have 120" {
		t.Errorf("unexpected message: %q", got.Missing[0])
	}
}

func TestEvaluateOneOfThree(t *testing.T) {
	req := achievement.Requirements{
		MinScore:        i64(500),
		ConsecutiveDays: iv(30),
		MinAccuracy:     iv(80),
	}
	got := achievement.Evaluate(req, achievement.EvalInput{Stats: snapshot()})
	if got.Percent != 33 {
		t.Errorf("percent = %d, want 33 (1 of 3 rounded)", got.Percent)
	}
}

func TestEvaluateCategories(t *testing.T) {
	req := achievement.Requirements{
		SpecificCategories: []classification.Category{
			classification.CategoryRecyclable,
			classification.CategoryHazardous,
		},
	}
	got := achievement.Evaluate(req, achievement.EvalInput{Stats: snapshot()})
	if got.Completed || got.Percent != 0 {
		t.Fatalf("expected 0%%, got %+v", got)
	}
	want := []string{"classify hazardous waste correctly at least once"}
	if !reflect.DeepEqual(got.Missing, want) {
		t.Errorf("missing = %v, want %v", got.Missing, want)
	}
}

func TestEvaluateCategoriesIgnoresIncorrectDetections(t *testing.T) {
	stats := snapshot()
	// hazardous was detected once but never classified correctly
	stats.Categories = append(stats.Categories, classification.CategoryCount{
		Category: classification.CategoryHazardous, Count: 1,
	})

	req := achievement.Requirements{
		SpecificCategories: []classification.Category{classification.CategoryHazardous},
	}
	got := achievement.Evaluate(req, achievement.EvalInput{Stats: stats})
	if got.Completed {
		t.Fatalf("incorrect detection must not satisfy the predicate, got %+v", got)
	}
	want := []string{"classify hazardous waste correctly at least once"}
	if !reflect.DeepEqual(got.Missing, want) {
		t.Errorf("missing = %v, want %v", got.Missing, want)
	}
}

func TestEvaluateTimeWindow(t *testing.T) {
	req := achievement.Requirements{
		TimeWindow: &achievement.TimeWindowRequirement{StartHour: 6, EndHour: 9, MinCount: 5},
	}

	got := achievement.Evaluate(req, achievement.EvalInput{Stats: snapshot(), InWindowCount: 5})
	if !got.Completed {
		t.Fatalf("expected completed, got %+v", got)
	}

	got = achievement.Evaluate(req, achievement.EvalInput{Stats: snapshot(), InWindowCount: 2})
	if got.Completed || len(got.Missing) != 1 {
		t.Fatalf("expected missing window count, got %+v", got)
	}
}

func TestEvaluateNoRequirements(t *testing.T) {
	got := achievement.Evaluate(achievement.Requirements{}, achievement.EvalInput{Stats: snapshot()})
	if got.Completed || got.Percent != 0 {
		t.Fatalf("empty requirements must never complete, got %+v", got)
	}
	if len(got.Missing) != 1 {
		t.Fatalf("expected a missing message, got %v", got.Missing)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	req := achievement.Requirements{MinScore: i64(500), MinAccuracy: iv(95)}
	in := achievement.EvalInput{Stats: snapshot()}

	first := achievement.Evaluate(req, in)
	for i := 0; i < 10; i++ {
		if got := achievement.Evaluate(req, in); !reflect.DeepEqual(got, first) {
			t.Fatalf("evaluation not deterministic: %+v vs %+v", got, first)
		}
	}
}
