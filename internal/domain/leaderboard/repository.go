package leaderboard

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

const rankingQuery = `
	SELECT t.wallet_address,
		t.net_score,
		COALESCE(c.total, 0) AS total_classifications,
		COALESCE(c.accuracy, 0) AS accuracy
	FROM (
		SELECT wallet_address, SUM(amount) AS net_score
		FROM score_transactions
		WHERE is_valid = true
		GROUP BY wallet_address
	) t
	LEFT JOIN (
		SELECT wallet_address,
			COUNT(*) AS total,
			ROUND(COUNT(*) FILTER (WHERE is_correct)::numeric / COUNT(*) * 100) AS accuracy
		FROM classifications
		GROUP BY wallet_address
	) c USING (wallet_address)
	ORDER BY t.net_score DESC, t.wallet_address`

const windowedRankingQuery = `
	SELECT t.wallet_address,
		t.net_score,
		COALESCE(c.total, 0) AS total_classifications,
		COALESCE(c.accuracy, 0) AS accuracy
	FROM (
		SELECT wallet_address, SUM(amount) AS net_score
		FROM score_transactions
		WHERE is_valid = true AND created_at >= $1
		GROUP BY wallet_address
	) t
	LEFT JOIN (
		SELECT wallet_address,
			COUNT(*) AS total,
			ROUND(COUNT(*) FILTER (WHERE is_correct)::numeric / COUNT(*) * 100) AS accuracy
		FROM classifications
		WHERE created_at >= $1
		GROUP BY wallet_address
	) c USING (wallet_address)
	ORDER BY t.net_score DESC, t.wallet_address`

// Top computes the ranking straight from the ledger. Ties break on
// wallet address so the order is stable between refreshes.
func (r *Repository) Top(ctx context.Context, limit int) ([]Entry, error) {
	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, rankingQuery+` LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// TopSince ranks only score earned on or after since. Period boards
// are always computed from SQL; only the all-time board is cached.
func (r *Repository) TopSince(ctx context.Context, since time.Time, limit int) ([]Entry, error) {
	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, windowedRankingQuery+` LIMIT $2`, since, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// Rank finds one wallet's position, or 0 when it has no valid score.
func (r *Repository) Rank(ctx context.Context, wallet string) (*Entry, error) {
	var row struct {
		Entry
		Position int `db:"position"`
	}
	err := r.db.GetContext(ctx, &row, `
		SELECT * FROM (
			SELECT q.*, ROW_NUMBER() OVER (ORDER BY q.net_score DESC, q.wallet_address) AS position
			FROM (`+rankingQuery+`) q
		) ranked
		WHERE ranked.wallet_address = $1
	`, wallet)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	entry := row.Entry
	entry.Rank = row.Position
	return &entry, nil
}
