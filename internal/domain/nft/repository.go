package nft

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const itemColumns = `
	id, token_id, name, description, image_url, metadata_uri, mint_tx_hash,
	category, rarity, required_score, required_classifications, status,
	reserved_by, reserved_until, owner_wallet, claimed_at, is_active,
	created_by, created_at, updated_at`

const attemptColumns = `
	id, item_id, wallet_address, status, tx_hash, block_number, fail_reason,
	created_at, completed_at`

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, item *PoolItem) error {
	return r.db.GetContext(ctx, item, `
		INSERT INTO nft_pool_items (
			token_id, name, description, image_url, metadata_uri, mint_tx_hash,
			category, rarity, required_score, required_classifications,
			status, is_active, created_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+itemColumns+`
	`, item.TokenID, item.Name, item.Description, item.ImageURL, item.MetadataURI,
		item.MintTxHash, item.Category, item.Rarity, item.RequiredScore,
		item.RequiredClassifications, string(StatusAvailable), item.IsActive, item.CreatedBy)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*PoolItem, error) {
	var item PoolItem
	err := r.db.GetContext(ctx, &item, `SELECT `+itemColumns+` FROM nft_pool_items WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListClaimable lists active items a wallet could take: AVAILABLE
// items plus RESERVED ones whose hold has lapsed. Expired holds are
// not rewritten here; the reserve update and the sweep handle that.
func (r *Repository) ListClaimable(ctx context.Context, now time.Time) ([]PoolItem, error) {
	items := []PoolItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+itemColumns+`
		FROM nft_pool_items
		WHERE is_active = true
		  AND (status = 'AVAILABLE' OR (status = 'RESERVED' AND reserved_until <= $1))
		ORDER BY rarity DESC, required_score ASC
	`, now)
	return items, err
}

// HasLiveClaim reports whether the wallet already holds or is in the
// middle of claiming this item.
func (r *Repository) HasLiveClaim(ctx context.Context, wallet string, itemID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM nft_claim_attempts
			WHERE wallet_address = $1 AND item_id = $2 AND status IN ('PENDING', 'CONFIRMED')
		)
	`, wallet, itemID)
	return exists, err
}

// Reserve places a hold in a single conditional update, so exactly one
// of any number of concurrent callers wins. An expired hold counts as
// available, which is also how stale reservations lapse without a
// sweep.
func (r *Repository) Reserve(ctx context.Context, itemID uuid.UUID, wallet string, until time.Time) (*PoolItem, error) {
	var item PoolItem
	err := r.db.GetContext(ctx, &item, `
		UPDATE nft_pool_items
		SET status = 'RESERVED', reserved_by = $2, reserved_until = $3, updated_at = now()
		WHERE id = $1
		  AND is_active = true
		  AND (status = 'AVAILABLE' OR (status = 'RESERVED' AND reserved_until <= now()))
		RETURNING `+itemColumns+`
	`, itemID, wallet, until)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, itemID); getErr != nil {
			return nil, getErr
		}
		return nil, ErrNotAvailable
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// BeginAttempt validates the caller's live reservation and records a
// PENDING attempt, all under a row lock. The on-chain transfer happens
// after this commits, never inside a database transaction.
func (r *Repository) BeginAttempt(ctx context.Context, itemID uuid.UUID, wallet string, now time.Time) (*ClaimAttempt, *PoolItem, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, nil, err
	}
	defer tx.Rollback()

	var item PoolItem
	err = tx.GetContext(ctx, &item, `
		SELECT `+itemColumns+`
		FROM nft_pool_items
		WHERE id = $1
		FOR UPDATE
	`, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	if item.Status != StatusReserved || item.ReservedBy == nil || *item.ReservedBy != wallet {
		return nil, nil, ErrNotReserved
	}
	if item.ReservedUntil == nil || !item.ReservedUntil.After(now) {
		return nil, nil, ErrReservationExpired
	}

	var attempt ClaimAttempt
	err = tx.GetContext(ctx, &attempt, `
		INSERT INTO nft_claim_attempts (item_id, wallet_address, status)
		VALUES ($1, $2, 'PENDING')
		RETURNING `+attemptColumns+`
	`, itemID, wallet)
	if err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, err
	}
	return &attempt, &item, nil
}

// ConfirmAttempt finishes a successful transfer: the attempt becomes
// CONFIRMED and the item is claimed by the wallet.
func (r *Repository) ConfirmAttempt(ctx context.Context, attemptID, itemID uuid.UUID, wallet, txHash string, blockNumber int64) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE nft_claim_attempts
		SET status = 'CONFIRMED', tx_hash = $2, block_number = $3, completed_at = now()
		WHERE id = $1 AND status = 'PENDING'
	`, attemptID, txHash, blockNumber); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE nft_pool_items
		SET status = 'CLAIMED', owner_wallet = $2, claimed_at = now(),
			reserved_by = NULL, reserved_until = NULL, updated_at = now()
		WHERE id = $1
	`, itemID, wallet); err != nil {
		return err
	}

	return tx.Commit()
}

// FailAttempt compensates a failed transfer: the attempt keeps the
// failure reason for audit and the item goes straight back to the
// pool, not to the end of the reservation window.
func (r *Repository) FailAttempt(ctx context.Context, attemptID, itemID uuid.UUID, reason string) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE nft_claim_attempts
		SET status = 'FAILED', fail_reason = $2, completed_at = now()
		WHERE id = $1 AND status = 'PENDING'
	`, attemptID, reason); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE nft_pool_items
		SET status = 'AVAILABLE', reserved_by = NULL, reserved_until = NULL, updated_at = now()
		WHERE id = $1 AND status = 'RESERVED'
	`, itemID); err != nil {
		return err
	}

	return tx.Commit()
}

// ReleaseExpired returns lapsed reservations to the pool. The reserve
// update already treats them as available; this keeps listings and
// stats honest between claims.
func (r *Repository) ReleaseExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE nft_pool_items
		SET status = 'AVAILABLE', reserved_by = NULL, reserved_until = NULL, updated_at = now()
		WHERE status = 'RESERVED' AND reserved_until <= $1
	`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// FailStalePending marks attempts stuck in PENDING longer than the
// cutoff as failed and frees their items. A transfer whose outcome was
// lost to a crash needs manual reconciliation against the chain; the
// attempt row carries the reason.
func (r *Repository) FailStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stale := []ClaimAttempt{}
	if err := tx.SelectContext(ctx, &stale, `
		SELECT `+attemptColumns+`
		FROM nft_claim_attempts
		WHERE status = 'PENDING' AND created_at <= $1
		FOR UPDATE
	`, cutoff); err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, tx.Commit()
	}

	for _, a := range stale {
		if _, err := tx.ExecContext(ctx, `
			UPDATE nft_claim_attempts
			SET status = 'FAILED', fail_reason = 'attempt timed out, verify on-chain state', completed_at = now()
			WHERE id = $1
		`, a.ID); err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE nft_pool_items
			SET status = 'AVAILABLE', reserved_by = NULL, reserved_until = NULL, updated_at = now()
			WHERE id = $1 AND status = 'RESERVED' AND reserved_by = $2
		`, a.ItemID, a.Wallet); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int64(len(stale)), nil
}

func (r *Repository) GetAttempt(ctx context.Context, id uuid.UUID) (*ClaimAttempt, error) {
	var attempt ClaimAttempt
	err := r.db.GetContext(ctx, &attempt, `
		SELECT `+attemptColumns+`
		FROM nft_claim_attempts
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *Repository) ListAttempts(ctx context.Context, wallet string) ([]ClaimAttempt, error) {
	attempts := []ClaimAttempt{}
	err := r.db.SelectContext(ctx, &attempts, `
		SELECT `+attemptColumns+`
		FROM nft_claim_attempts
		WHERE wallet_address = $1
		ORDER BY created_at DESC
	`, wallet)
	return attempts, err
}

func (r *Repository) ListOwned(ctx context.Context, wallet string) ([]PoolItem, error) {
	items := []PoolItem{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT `+itemColumns+`
		FROM nft_pool_items
		WHERE status = 'CLAIMED' AND owner_wallet = $1
		ORDER BY claimed_at DESC
	`, wallet)
	return items, err
}

func (r *Repository) Stats(ctx context.Context) (*PoolStats, error) {
	var stats PoolStats
	err := r.db.GetContext(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM nft_pool_items) AS total,
			(SELECT COUNT(*) FROM nft_pool_items WHERE status = 'AVAILABLE' AND is_active) AS available,
			(SELECT COUNT(*) FROM nft_pool_items WHERE status = 'RESERVED') AS reserved,
			(SELECT COUNT(*) FROM nft_pool_items WHERE status = 'CLAIMED') AS claimed,
			(SELECT COUNT(*) FROM nft_claim_attempts WHERE status = 'PENDING') AS pending
	`)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
