package classification

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wastewise/wastewise-api/internal/domain/ledger"
	"github.com/wastewise/wastewise-api/internal/pkg/oracle"
)

// EventPublisher receives domain events for fan-out to live feeds.
// Implementations must not block the request path.
type EventPublisher interface {
	ClassificationRecorded(ctx context.Context, c *Classification)
}

type Service struct {
	repo   *Repository
	scorer oracle.Scorer
	scores *ledger.Service
	events EventPublisher
}

func NewService(repo *Repository, scorer oracle.Scorer, scores *ledger.Service, events EventPublisher) *Service {
	return &Service{repo: repo, scorer: scorer, scores: scores, events: events}
}

// Classify sends the submission to the scoring oracle, records the
// verdict and credits the earned score. The oracle verdict is the
// source of truth; a zero score is recorded but not credited.
func (s *Service) Classify(ctx context.Context, wallet, imageURL string, expected Category, location *string) (*Classification, error) {
	if !validCategory(expected) {
		return nil, ErrInvalidCategory
	}

	loc := ""
	if location != nil {
		loc = *location
	}
	result, err := s.scorer.Score(ctx, oracle.Request{
		ImageURL:         imageURL,
		ExpectedCategory: string(expected),
		UserLocation:     loc,
	})
	if err != nil {
		if errors.Is(err, oracle.ErrUnavailable) || errors.Is(err, oracle.ErrBadResponse) {
			log.Error().Err(err).Str("wallet", wallet).Msg("scoring oracle call failed")
			return nil, fmt.Errorf("%w: %v", ErrOracleRejected, err)
		}
		return nil, err
	}

	c := &Classification{
		Wallet:           wallet,
		ImageURL:         imageURL,
		ExpectedCategory: expected,
		DetectedCategory: Category(result.DetectedCategory),
		Confidence:       result.Confidence,
		IsCorrect:        result.IsMatch,
		Score:            result.Score,
		Analysis:         result.Analysis,
		Suggestions:      result.Suggestions,
		Location:         location,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}

	if c.Score > 0 {
		ref := "classification:" + c.ID.String()
		if err := s.scores.Credit(ctx, wallet, c.Score, ledger.KindClassification, ref, "waste classification reward"); err != nil {
			// The submission is already recorded; surface the credit
			// failure rather than pretending the reward landed.
			return nil, err
		}
	}

	log.Info().
		Str("wallet", wallet).
		Str("classification_id", c.ID.String()).
		Str("detected", string(c.DetectedCategory)).
		Bool("correct", c.IsCorrect).
		Int64("score", c.Score).
		Msg("classification recorded")

	if s.events != nil {
		s.events.ClassificationRecorded(ctx, c)
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Classification, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) History(ctx context.Context, wallet string, limit, offset int) ([]Classification, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, wallet, limit, offset)
}

func (s *Service) CategoryBreakdown(ctx context.Context, wallet string) ([]CategoryCount, error) {
	return s.repo.CountByCategory(ctx, wallet)
}

func validCategory(c Category) bool {
	switch c {
	case CategoryRecyclable, CategoryHazardous, CategoryKitchen, CategoryOther:
		return true
	}
	return false
}
