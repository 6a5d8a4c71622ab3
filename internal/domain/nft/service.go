package nft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wastewise/wastewise-api/internal/domain/account"
	"github.com/wastewise/wastewise-api/internal/pkg/blockchain"
	"github.com/wastewise/wastewise-api/internal/pkg/contentstore"
)

// Chain bundles the two relayer operations the pool needs.
type Chain interface {
	blockchain.Minter
	blockchain.Transferrer
}

// EventPublisher receives confirmed claims for fan-out to live feeds.
type EventPublisher interface {
	NFTClaimed(wallet, itemName string, tokenID int64)
}

// Config carries the pool's operational knobs.
type Config struct {
	ReservationTTL time.Duration
	TreasuryWallet string
	// MintPause spaces out sequential batch mints so the relayer
	// submits them in nonce order.
	MintPause time.Duration
}

type Service struct {
	repo     *Repository
	accounts *account.Service
	chain    Chain
	store    contentstore.Store
	events   EventPublisher
	cfg      Config
}

func NewService(repo *Repository, accounts *account.Service, chain Chain, store contentstore.Store, cfg Config) *Service {
	if cfg.ReservationTTL <= 0 {
		cfg.ReservationTTL = 30 * time.Minute
	}
	return &Service{repo: repo, accounts: accounts, chain: chain, store: store, cfg: cfg}
}

// SetEvents attaches a feed publisher. Optional; nil means no fan-out.
func (s *Service) SetEvents(events EventPublisher) {
	s.events = events
}

// Eligible lists claimable items annotated with what, if anything, the
// wallet is still missing.
func (s *Service) Eligible(ctx context.Context, wallet string) ([]EligibleItem, error) {
	items, err := s.repo.ListClaimable(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	stats, err := s.accounts.Stats(ctx, wallet)
	if err != nil {
		return nil, err
	}

	eligible := make([]EligibleItem, 0, len(items))
	for _, item := range items {
		var missing []string
		if stats.NetScore < item.RequiredScore {
			missing = append(missing, fmt.Sprintf("need %d score, have %d", item.RequiredScore, stats.NetScore))
		}
		if stats.TotalClassifications < item.RequiredClassifications {
			missing = append(missing, fmt.Sprintf("need %d classifications, have %d", item.RequiredClassifications, stats.TotalClassifications))
		}

		owned, err := s.repo.HasLiveClaim(ctx, wallet, item.ID)
		if err != nil {
			return nil, err
		}
		if owned {
			missing = append(missing, "already claimed this item")
		}

		eligible = append(eligible, EligibleItem{
			PoolItem: item,
			CanClaim: len(missing) == 0,
			Missing:  missing,
		})
	}
	return eligible, nil
}

// checkEligible verifies the wallet clears one item's thresholds.
func (s *Service) checkEligible(ctx context.Context, wallet string, item *PoolItem) error {
	stats, err := s.accounts.Stats(ctx, wallet)
	if err != nil {
		return err
	}
	var missing []string
	if stats.NetScore < item.RequiredScore {
		missing = append(missing, fmt.Sprintf("need %d score, have %d", item.RequiredScore, stats.NetScore))
	}
	if stats.TotalClassifications < item.RequiredClassifications {
		missing = append(missing, fmt.Sprintf("need %d classifications, have %d", item.RequiredClassifications, stats.TotalClassifications))
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrNotEligible, missing)
	}

	owned, err := s.repo.HasLiveClaim(ctx, wallet, item.ID)
	if err != nil {
		return err
	}
	if owned {
		return ErrAlreadyOwned
	}
	return nil
}

// Reservation is what a successful hold returns.
type Reservation struct {
	ItemID        uuid.UUID `json:"item_id"`
	Wallet        string    `json:"wallet_address"`
	ReservedUntil time.Time `json:"reserved_until"`
}

// Reserve places a hold on an item. Among concurrent callers exactly
// one wins; the rest see ErrNotAvailable.
func (s *Service) Reserve(ctx context.Context, wallet string, itemID uuid.UUID) (*Reservation, error) {
	item, err := s.repo.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.checkEligible(ctx, wallet, item); err != nil {
		return nil, err
	}

	until := time.Now().UTC().Add(s.cfg.ReservationTTL)
	if _, err := s.repo.Reserve(ctx, itemID, wallet, until); err != nil {
		return nil, err
	}

	log.Info().
		Str("wallet", wallet).
		Str("item_id", itemID.String()).
		Time("reserved_until", until).
		Msg("pool item reserved")
	return &Reservation{ItemID: itemID, Wallet: wallet, ReservedUntil: until}, nil
}

// ClaimResult is returned when a transfer lands on chain.
type ClaimResult struct {
	AttemptID   uuid.UUID `json:"attempt_id"`
	ItemID      uuid.UUID `json:"item_id"`
	TokenID     int64     `json:"token_id"`
	TxHash      string    `json:"tx_hash"`
	BlockNumber int64     `json:"block_number"`
}

// Claim executes a reserved item's transfer. The attempt is committed
// as PENDING before the relayer call so a crash leaves an auditable
// row, and a failed transfer puts the item straight back in the pool.
func (s *Service) Claim(ctx context.Context, wallet string, itemID uuid.UUID) (*ClaimResult, error) {
	attempt, item, err := s.repo.BeginAttempt(ctx, itemID, wallet, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	transfer, err := s.chain.Transfer(ctx, wallet, item.TokenID)
	if err != nil {
		reason := err.Error()
		if failErr := s.repo.FailAttempt(ctx, attempt.ID, itemID, reason); failErr != nil {
			log.Error().Err(failErr).
				Str("attempt_id", attempt.ID.String()).
				Msg("failed to record transfer failure, sweep will pick it up")
		}
		log.Error().Err(err).
			Str("wallet", wallet).
			Str("item_id", itemID.String()).
			Int64("token_id", item.TokenID).
			Msg("nft transfer failed, item returned to pool")
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}

	if err := s.repo.ConfirmAttempt(ctx, attempt.ID, itemID, wallet, transfer.TxHash, transfer.BlockNumber); err != nil {
		// The token moved on chain but the confirmation write failed.
		// Keep the attempt PENDING for the reconciliation sweep rather
		// than inventing a rollback for a transfer that happened.
		log.Error().Err(err).
			Str("attempt_id", attempt.ID.String()).
			Str("tx_hash", transfer.TxHash).
			Msg("transfer confirmed on chain but not persisted")
		return nil, err
	}

	log.Info().
		Str("wallet", wallet).
		Str("item_id", itemID.String()).
		Int64("token_id", item.TokenID).
		Str("tx_hash", transfer.TxHash).
		Msg("nft claimed")

	if s.events != nil {
		s.events.NFTClaimed(wallet, item.Name, item.TokenID)
	}

	return &ClaimResult{
		AttemptID:   attempt.ID,
		ItemID:      itemID,
		TokenID:     item.TokenID,
		TxHash:      transfer.TxHash,
		BlockNumber: transfer.BlockNumber,
	}, nil
}

// AddInput describes an item to mint into the pool.
type AddInput struct {
	Name                    string
	Description             string
	ImageURL                string
	Category                string
	Rarity                  int
	RequiredScore           int64
	RequiredClassifications int64
	Attributes              []Attribute
	CreatedBy               string
}

// AddItem mints a new token into the treasury and registers it as
// AVAILABLE: pin metadata, mint, persist. A failure before persistence
// leaves nothing in the pool.
func (s *Service) AddItem(ctx context.Context, in AddInput) (*PoolItem, error) {
	meta := buildMetadata(in.Name, in.Description, in.ImageURL, in.Category, in.Rarity, in.Attributes)
	uri, err := s.store.PutJSON(ctx, meta)
	if err != nil {
		return nil, fmt.Errorf("pin metadata: %w", err)
	}

	mint, err := s.chain.Mint(ctx, s.cfg.TreasuryWallet, uri, in.Name, in.Category, in.Rarity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMintFailed, err)
	}

	item := &PoolItem{
		TokenID:                 mint.TokenID,
		Name:                    in.Name,
		Description:             in.Description,
		ImageURL:                in.ImageURL,
		MetadataURI:             uri,
		MintTxHash:              mint.TxHash,
		Category:                in.Category,
		Rarity:                  in.Rarity,
		RequiredScore:           in.RequiredScore,
		RequiredClassifications: in.RequiredClassifications,
		IsActive:                true,
		CreatedBy:               in.CreatedBy,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		// Token exists on chain with no pool row. Log enough to
		// re-register it by hand.
		log.Error().Err(err).
			Int64("token_id", mint.TokenID).
			Str("tx_hash", mint.TxHash).
			Str("metadata_uri", uri).
			Msg("minted token could not be registered in pool")
		return nil, err
	}

	log.Info().
		Str("item_id", item.ID.String()).
		Int64("token_id", item.TokenID).
		Str("name", item.Name).
		Msg("pool item minted")
	return item, nil
}

// BatchResult reports a batch mint's partial outcome.
type BatchResult struct {
	Items  []PoolItem `json:"items"`
	Failed []string   `json:"failed,omitempty"`
}

// BatchAdd mints items strictly one at a time. A failed item is
// skipped and reported; the rest of the batch continues.
func (s *Service) BatchAdd(ctx context.Context, inputs []AddInput) (*BatchResult, error) {
	result := &BatchResult{}
	for i, in := range inputs {
		if i > 0 && s.cfg.MintPause > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.cfg.MintPause):
			}
		}

		item, err := s.AddItem(ctx, in)
		if err != nil {
			log.Error().Err(err).Str("name", in.Name).Msg("batch mint item failed, continuing")
			result.Failed = append(result.Failed, in.Name)
			continue
		}
		result.Items = append(result.Items, *item)
	}

	log.Info().
		Int("succeeded", len(result.Items)).
		Int("failed", len(result.Failed)).
		Msg("batch mint finished")
	return result, nil
}

// Attempt looks up one claim attempt for status polling.
func (s *Service) Attempt(ctx context.Context, id uuid.UUID) (*ClaimAttempt, error) {
	return s.repo.GetAttempt(ctx, id)
}

func (s *Service) Attempts(ctx context.Context, wallet string) ([]ClaimAttempt, error) {
	return s.repo.ListAttempts(ctx, wallet)
}

func (s *Service) Owned(ctx context.Context, wallet string) ([]PoolItem, error) {
	return s.repo.ListOwned(ctx, wallet)
}

func (s *Service) PoolStats(ctx context.Context) (*PoolStats, error) {
	return s.repo.Stats(ctx)
}

// ReleaseExpired frees lapsed holds. Called by the scheduler.
func (s *Service) ReleaseExpired(ctx context.Context) error {
	n, err := s.repo.ReleaseExpired(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Info().Int64("released", n).Msg("expired reservations returned to pool")
	}
	return nil
}

// FailStaleAttempts fails PENDING attempts older than the cutoff.
// Called by the scheduler.
func (s *Service) FailStaleAttempts(ctx context.Context, olderThan time.Duration) error {
	n, err := s.repo.FailStalePending(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return err
	}
	if n > 0 {
		log.Warn().Int64("failed", n).Msg("stale pending claim attempts failed, check on-chain state")
	}
	return nil
}

// IsConflict reports whether err is a state conflict the API maps to
// 409 rather than a server fault.
func IsConflict(err error) bool {
	return errors.Is(err, ErrNotAvailable) ||
		errors.Is(err, ErrNotReserved) ||
		errors.Is(err, ErrReservationExpired) ||
		errors.Is(err, ErrAlreadyOwned) ||
		errors.Is(err, ErrNotEligible)
}
