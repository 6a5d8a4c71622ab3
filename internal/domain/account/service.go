package account

import (
	"context"
	"math"
	"time"

	"github.com/wastewise/wastewise-api/internal/domain/classification"
	"github.com/wastewise/wastewise-api/internal/domain/ledger"
)

type Service struct {
	scores          *ledger.Repository
	classifications *classification.Repository
}

func NewService(scores *ledger.Repository, classifications *classification.Repository) *Service {
	return &Service{scores: scores, classifications: classifications}
}

// Stats assembles the wallet snapshot. Accuracy is a whole percent,
// rounded half up; a wallet with no submissions has accuracy 0, not
// NaN.
func (s *Service) Stats(ctx context.Context, wallet string) (*Stats, error) {
	balance, err := s.scores.GetBalance(ctx, wallet)
	if err != nil {
		return nil, err
	}

	total, correct, err := s.classifications.Counts(ctx, wallet)
	if err != nil {
		return nil, err
	}

	activeDays, err := s.classifications.ActiveDays(ctx, wallet)
	if err != nil {
		return nil, err
	}

	streak, err := s.classifications.ConsecutiveDays(ctx, wallet)
	if err != nil {
		return nil, err
	}

	categories, err := s.classifications.CountByCategory(ctx, wallet)
	if err != nil {
		return nil, err
	}

	correctCategories, err := s.classifications.CategoriesClassified(ctx, wallet)
	if err != nil {
		return nil, err
	}

	first, last, err := s.classifications.ActivitySpan(ctx, wallet)
	if err != nil {
		return nil, err
	}

	accuracy := 0
	if total > 0 {
		accuracy = int(math.Round(float64(correct) / float64(total) * 100))
	}

	return &Stats{
		Wallet:                 wallet,
		NetScore:               balance.NetScore,
		ScoreEarned:            balance.Earned,
		ScoreSpent:             balance.Spent,
		TotalClassifications:   total,
		CorrectClassifications: correct,
		Accuracy:               accuracy,
		ActiveDays:             activeDays,
		ConsecutiveDays:        streak,
		Categories:             categories,
		CorrectCategories:      correctCategories,
		FirstActivity:          first,
		LastActivity:           last,
		AsOf:                   time.Now().UTC(),
	}, nil
}
