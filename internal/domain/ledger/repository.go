package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ensureBalance(ctx context.Context, q sqlx.ExtContext, wallet string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO score_balances (wallet_address, balance)
		VALUES ($1, 0)
		ON CONFLICT (wallet_address) DO NOTHING
	`, wallet)
	return err
}

func (r *Repository) GetBalance(ctx context.Context, wallet string) (*Balance, error) {
	if err := r.ensureBalance(ctx, r.db, wallet); err != nil {
		return nil, err
	}

	var row struct {
		Earned int64 `db:"earned"`
		Spent  int64 `db:"spent"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE amount > 0), 0) AS earned,
			COALESCE(-SUM(amount) FILTER (WHERE amount < 0), 0) AS spent
		FROM score_transactions
		WHERE wallet_address = $1 AND is_valid = true
	`, wallet)
	if err != nil {
		return nil, err
	}

	return &Balance{
		Wallet:   wallet,
		Earned:   row.Earned,
		Spent:    row.Spent,
		NetScore: row.Earned - row.Spent,
	}, nil
}

func (r *Repository) beginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
}

func (r *Repository) lockBalance(ctx context.Context, tx *sqlx.Tx, wallet string) (int64, error) {
	if err := r.ensureBalance(ctx, tx, wallet); err != nil {
		return 0, err
	}

	var balance int64
	err := tx.GetContext(ctx, &balance, `SELECT balance FROM score_balances WHERE wallet_address = $1 FOR UPDATE`, wallet)
	return balance, err
}

func (r *Repository) amountByReference(ctx context.Context, tx *sqlx.Tx, wallet string, kind TransactionKind, referenceID string) (int64, bool, error) {
	if referenceID == "" {
		return 0, false, nil
	}

	var amount int64
	err := tx.GetContext(ctx, &amount, `
		SELECT amount
		FROM score_transactions
		WHERE wallet_address = $1 AND kind = $2 AND reference_id = $3 AND is_valid = true
		LIMIT 1
	`, wallet, string(kind), referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return amount, true, nil
}

func (r *Repository) insertTransaction(ctx context.Context, tx *sqlx.Tx, wallet string, amount int64, kind TransactionKind, referenceID, description string) error {
	var ref interface{}
	if referenceID == "" {
		ref = nil
	} else {
		ref = referenceID
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO score_transactions (wallet_address, amount, kind, reference_id, description)
		VALUES ($1, $2, $3, $4, $5)
	`, wallet, amount, string(kind), ref, description)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// ApplyInTx appends a score movement inside a transaction the caller
// owns. The caller is responsible for commit/rollback. A repeated
// (wallet, kind, reference_id) with the same amount is a no-op so that
// callers can retry safely; a different amount is a conflict.
func (r *Repository) ApplyInTx(ctx context.Context, tx *sqlx.Tx, wallet string, amount int64, kind TransactionKind, referenceID, description string) error {
	balance, err := r.lockBalance(ctx, tx, wallet)
	if err != nil {
		return err
	}

	existingAmount, exists, err := r.amountByReference(ctx, tx, wallet, kind, referenceID)
	if err != nil {
		return err
	}
	if exists {
		if existingAmount != amount {
			return ErrReferenceConflict
		}
		return nil
	}

	nextBalance := balance + amount
	if nextBalance < 0 {
		return ErrInsufficientScore
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE score_balances SET balance = $1, updated_at = now() WHERE wallet_address = $2
	`, nextBalance, wallet); err != nil {
		return err
	}

	if err := r.insertTransaction(ctx, tx, wallet, amount, kind, referenceID, description); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			existingAmount, exists, checkErr := r.amountByReference(ctx, tx, wallet, kind, referenceID)
			if checkErr != nil {
				return checkErr
			}
			if !exists || existingAmount != amount {
				return ErrReferenceConflict
			}
			return nil
		}
		return err
	}

	return nil
}

// Apply appends a score movement in its own transaction.
func (r *Repository) Apply(ctx context.Context, wallet string, amount int64, kind TransactionKind, referenceID, description string) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := r.ApplyInTx(ctx, tx, wallet, amount, kind, referenceID, description); err != nil {
		return err
	}

	return tx.Commit()
}

// List returns a wallet's transactions newest first, optionally
// filtered by kind, with the total count for paging.
func (r *Repository) List(ctx context.Context, wallet string, kind TransactionKind, limit, offset int) ([]Transaction, int64, error) {
	where := `WHERE wallet_address = $1`
	args := []interface{}{wallet}
	if kind != "" {
		where += ` AND kind = $2`
		args = append(args, string(kind))
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM score_transactions `+where, args...); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, wallet_address, amount, kind, reference_id, description, is_valid, created_at
		FROM score_transactions ` + where + `
		ORDER BY created_at DESC, id DESC
	`
	args = append(args, limit, offset)
	if kind != "" {
		query += ` LIMIT $3 OFFSET $4`
	} else {
		query += ` LIMIT $2 OFFSET $3`
	}

	txs := []Transaction{}
	if err := r.db.SelectContext(ctx, &txs, query, args...); err != nil {
		return nil, 0, err
	}
	return txs, total, nil
}

// SumValidEarned sums the positive valid amounts of a kind. Used by
// achievement predicates that care about score earned from a single
// source.
func (r *Repository) SumValidEarned(ctx context.Context, wallet string, kind TransactionKind) (int64, error) {
	var sum int64
	err := r.db.GetContext(ctx, &sum, `
		SELECT COALESCE(SUM(amount), 0)
		FROM score_transactions
		WHERE wallet_address = $1 AND kind = $2 AND is_valid = true AND amount > 0
	`, wallet, string(kind))
	return sum, err
}

// Invalidate voids a transaction and backs its amount out of the
// materialized balance. Already-void rows are left untouched.
func (r *Repository) Invalidate(ctx context.Context, id uuid.UUID) error {
	tx, err := r.beginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var row Transaction
	err = tx.GetContext(ctx, &row, `
		SELECT id, wallet_address, amount, kind, reference_id, description, is_valid, created_at
		FROM score_transactions
		WHERE id = $1
		FOR UPDATE
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !row.IsValid {
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `UPDATE score_transactions SET is_valid = false WHERE id = $1`, id); err != nil {
		return err
	}

	balance, err := r.lockBalance(ctx, tx, row.Wallet)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE score_balances SET balance = $1, updated_at = now() WHERE wallet_address = $2
	`, balance-row.Amount, row.Wallet); err != nil {
		return err
	}

	return tx.Commit()
}
