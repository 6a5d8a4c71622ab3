package achievement

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wastewise/wastewise-api/internal/domain/account"
)

// EventPublisher receives claim events for fan-out to live feeds.
type EventPublisher interface {
	AchievementClaimed(ctx context.Context, wallet string, a *Achievement)
}

type Service struct {
	repo     *Repository
	accounts *account.Service
	events   EventPublisher
}

func NewService(repo *Repository, accounts *account.Service, events EventPublisher) *Service {
	return &Service{repo: repo, accounts: accounts, events: events}
}

// View is an achievement joined with the calling wallet's progress.
type View struct {
	Achievement
	Percent     int        `json:"percent"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	IsClaimed   bool       `json:"is_claimed"`
	ClaimedAt   *time.Time `json:"claimed_at,omitempty"`
	Missing     []string   `json:"missing,omitempty"`
}

// evaluate runs the requirement predicates for one achievement against
// a shared stats snapshot, fetching the time-window count only when
// the achievement asks for one.
func (s *Service) evaluate(ctx context.Context, wallet string, a *Achievement, stats *account.Stats) (Progress, error) {
	in := EvalInput{Stats: stats}
	if tw := a.Requirements.TimeWindow; tw != nil {
		n, err := s.repo.CountClassificationsInWindow(ctx, wallet, tw.StartHour, tw.EndHour)
		if err != nil {
			return Progress{}, err
		}
		in.InWindowCount = n
	}
	return Evaluate(a.Requirements, in), nil
}

// ListForWallet returns the active catalog with live progress. Fresh
// evaluations are written back so claims read current rows.
func (s *Service) ListForWallet(ctx context.Context, wallet string) ([]View, error) {
	achievements, err := s.repo.List(ctx, true)
	if err != nil {
		return nil, err
	}

	stats, err := s.accounts.Stats(ctx, wallet)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListProgress(ctx, wallet)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(achievements))
	for i := range achievements {
		a := achievements[i]

		p, err := s.evaluate(ctx, wallet, &a, stats)
		if err != nil {
			return nil, err
		}

		prev, tracked := existing[a.ID]
		if !tracked || !prev.IsClaimed {
			if err := s.repo.UpsertProgress(ctx, wallet, a.ID, p); err != nil {
				return nil, err
			}
		}

		v := View{Achievement: a, Percent: p.Percent, Completed: p.Completed, Missing: p.Missing}
		if tracked {
			v.CompletedAt = prev.CompletedAt
			v.IsClaimed = prev.IsClaimed
			v.ClaimedAt = prev.ClaimedAt
			// completion never regresses
			if prev.Completed && !v.Completed {
				v.Completed = true
				v.Missing = nil
				if prev.Percent > v.Percent {
					v.Percent = prev.Percent
				}
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// ClaimResult is what a successful claim hands back.
type ClaimResult struct {
	Achievement *Achievement `json:"achievement"`
	Reward      int64        `json:"reward"`
	ClaimedAt   time.Time    `json:"claimed_at"`
}

// Claim re-evaluates the wallet's progress, then runs the claim
// transaction. At most one concurrent claim per (wallet, achievement)
// succeeds.
func (s *Service) Claim(ctx context.Context, wallet string, achievementID uuid.UUID) (*ClaimResult, error) {
	a, err := s.repo.GetByID(ctx, achievementID)
	if err != nil {
		return nil, err
	}

	stats, err := s.accounts.Stats(ctx, wallet)
	if err != nil {
		return nil, err
	}
	p, err := s.evaluate(ctx, wallet, a, stats)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertProgress(ctx, wallet, a.ID, p); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	claimed, err := s.repo.Claim(ctx, wallet, achievementID, now)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("wallet", wallet).
		Str("achievement", claimed.Code).
		Int64("reward", claimed.RewardScore).
		Msg("achievement claimed")

	if s.events != nil {
		s.events.AchievementClaimed(ctx, wallet, claimed)
	}
	return &ClaimResult{Achievement: claimed, Reward: claimed.RewardScore, ClaimedAt: now}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Achievement, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Catalog(ctx context.Context, activeOnly bool) ([]Achievement, error) {
	return s.repo.List(ctx, activeOnly)
}

// Search lists the catalog with category/tier/text filters and paging.
func (s *Service) Search(ctx context.Context, f CatalogFilter) ([]Achievement, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	if f.Limit > 200 {
		f.Limit = 200
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.ListFiltered(ctx, f)
}

func (s *Service) Create(ctx context.Context, a *Achievement) error {
	if err := a.Requirements.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	log.Info().Str("achievement", a.Code).Msg("achievement created")
	return nil
}

// BatchResult reports a batch catalog load: failed entries are skipped,
// not rolled back.
type BatchResult struct {
	Created []Achievement `json:"created"`
	Failed  []BatchError  `json:"failed,omitempty"`
}

type BatchError struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// BatchCreate inserts a set of catalog entries, skipping and logging
// the ones that fail.
func (s *Service) BatchCreate(ctx context.Context, achievements []Achievement) (*BatchResult, error) {
	result := &BatchResult{Created: []Achievement{}}
	for i := range achievements {
		a := achievements[i]
		if err := s.Create(ctx, &a); err != nil {
			log.Warn().Err(err).Str("achievement", a.Code).Msg("batch create: entry skipped")
			result.Failed = append(result.Failed, BatchError{Code: a.Code, Reason: err.Error()})
			continue
		}
		result.Created = append(result.Created, a)
	}
	return result, nil
}

func (s *Service) Update(ctx context.Context, a *Achievement) error {
	if err := a.Requirements.Validate(); err != nil {
		return err
	}
	return s.repo.Update(ctx, a)
}

func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, id, active)
}

// ForceProgress lets an operator set a wallet's progress directly,
// for support cases and prize events. Percent 100 marks completion.
func (s *Service) ForceProgress(ctx context.Context, wallet string, achievementID uuid.UUID, percent int, forceComplete bool) error {
	if _, err := s.repo.GetByID(ctx, achievementID); err != nil {
		return err
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	p := Progress{Percent: percent, Completed: percent >= 100 || forceComplete}
	if err := s.repo.UpsertProgress(ctx, wallet, achievementID, p); err != nil {
		return err
	}
	log.Warn().
		Str("wallet", wallet).
		Str("achievement_id", achievementID.String()).
		Int("percent", percent).
		Bool("force_complete", forceComplete).
		Msg("achievement progress set manually")
	return nil
}

// WalletStats is a wallet's achievement summary.
type WalletStats struct {
	Wallet          string           `json:"wallet_address"`
	Total           int              `json:"total"`
	Completed       int              `json:"completed"`
	Claimed         int              `json:"claimed"`
	CompletionRate  int              `json:"completion_rate"`
	UnclaimedReward int64            `json:"unclaimed_reward"`
	ByCategory      map[Category]int `json:"by_category"`
	ByTier          map[int]int      `json:"by_tier"`
}

// StatsForWallet summarizes a wallet's standing across the active
// catalog: completion rate, reward left on the table, and completed
// counts grouped by category and tier.
func (s *Service) StatsForWallet(ctx context.Context, wallet string) (*WalletStats, error) {
	views, err := s.ListForWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	stats := &WalletStats{
		Wallet:     wallet,
		Total:      len(views),
		ByCategory: map[Category]int{},
		ByTier:     map[int]int{},
	}
	for _, v := range views {
		if !v.Completed {
			continue
		}
		stats.Completed++
		stats.ByCategory[v.Category]++
		stats.ByTier[v.Tier]++
		if v.IsClaimed {
			stats.Claimed++
		} else {
			stats.UnclaimedReward += v.RewardScore
		}
	}
	if stats.Total > 0 {
		stats.CompletionRate = int(math.Round(float64(stats.Completed) / float64(stats.Total) * 100))
	}
	return stats, nil
}

// AchievementStats is the per-achievement rollup for the admin panel.
type AchievementStats struct {
	Achievement
	Completed int64 `json:"completed_count"`
	Claimed   int64 `json:"claimed_count"`
}

func (s *Service) Stats(ctx context.Context) ([]AchievementStats, error) {
	achievements, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.CountsByAchievement(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]ClaimCounts, len(counts))
	for _, c := range counts {
		byID[c.AchievementID] = c
	}

	stats := make([]AchievementStats, 0, len(achievements))
	for _, a := range achievements {
		c := byID[a.ID]
		stats = append(stats, AchievementStats{Achievement: a, Completed: c.Completed, Claimed: c.Claimed})
	}
	return stats, nil
}
