package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Service struct {
	repo *Repository
}

func NewService(repo *Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Balance(ctx context.Context, wallet string) (*Balance, error) {
	return s.repo.GetBalance(ctx, wallet)
}

func (s *Service) History(ctx context.Context, wallet string, kind TransactionKind, limit, offset int) ([]Transaction, int64, error) {
	if kind != "" && !ValidKind(kind) {
		return nil, 0, ErrInvalidKind
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, wallet, kind, limit, offset)
}

// Credit adds earned score. referenceID makes the credit idempotent
// per (wallet, kind, reference).
func (s *Service) Credit(ctx context.Context, wallet string, amount int64, kind TransactionKind, referenceID, description string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !ValidKind(kind) {
		return ErrInvalidKind
	}
	if err := s.repo.Apply(ctx, wallet, amount, kind, referenceID, description); err != nil {
		return err
	}
	log.Info().Str("wallet", wallet).Int64("amount", amount).Str("kind", string(kind)).Str("reference_id", referenceID).Msg("score credited")
	return nil
}

// Spend deducts score, failing when the wallet would go negative.
func (s *Service) Spend(ctx context.Context, wallet string, amount int64, kind TransactionKind, referenceID, description string) error {
	if amount <= 0 || referenceID == "" {
		return ErrInvalidAmount
	}
	if !ValidKind(kind) {
		return ErrInvalidKind
	}
	if err := s.repo.Apply(ctx, wallet, -amount, kind, referenceID, description); err != nil {
		return err
	}
	log.Info().Str("wallet", wallet).Int64("amount", amount).Str("kind", string(kind)).Str("reference_id", referenceID).Msg("score spent")
	return nil
}

// Adjust applies a signed manual correction. Admin only; description
// is the audit reason and is required.
func (s *Service) Adjust(ctx context.Context, wallet string, amount int64, description string) error {
	if amount == 0 || description == "" {
		return ErrInvalidAmount
	}
	if err := s.repo.Apply(ctx, wallet, amount, KindAdjustment, "", description); err != nil {
		return err
	}
	log.Warn().Str("wallet", wallet).Int64("amount", amount).Str("reason", description).Msg("manual score adjustment applied")
	return nil
}

// Invalidate voids a transaction. The row stays for audit.
func (s *Service) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Invalidate(ctx, id); err != nil {
		return err
	}
	log.Warn().Str("transaction_id", id.String()).Msg("score transaction invalidated")
	return nil
}
