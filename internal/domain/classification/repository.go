package classification

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Insert(ctx context.Context, c *Classification) error {
	return r.db.GetContext(ctx, c, `
		INSERT INTO classifications (
			wallet_address, image_url, expected_category, detected_category,
			confidence, is_correct, score, analysis, suggestions, location
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, wallet_address, image_url, expected_category, detected_category,
			confidence, is_correct, score, analysis, suggestions, location, created_at
	`, c.Wallet, c.ImageURL, string(c.ExpectedCategory), string(c.DetectedCategory),
		c.Confidence, c.IsCorrect, c.Score, c.Analysis, c.Suggestions, c.Location)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Classification, error) {
	var c Classification
	err := r.db.GetContext(ctx, &c, `
		SELECT id, wallet_address, image_url, expected_category, detected_category,
			confidence, is_correct, score, analysis, suggestions, location, created_at
		FROM classifications
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repository) List(ctx context.Context, wallet string, limit, offset int) ([]Classification, int64, error) {
	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM classifications WHERE wallet_address = $1`, wallet); err != nil {
		return nil, 0, err
	}

	items := []Classification{}
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, wallet_address, image_url, expected_category, detected_category,
			confidence, is_correct, score, analysis, suggestions, location, created_at
		FROM classifications
		WHERE wallet_address = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, wallet, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Counts returns total and correct submission counts in one round trip.
func (r *Repository) Counts(ctx context.Context, wallet string) (total, correct int64, err error) {
	var row struct {
		Total   int64 `db:"total"`
		Correct int64 `db:"correct"`
	}
	err = r.db.GetContext(ctx, &row, `
		SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE is_correct) AS correct
		FROM classifications
		WHERE wallet_address = $1
	`, wallet)
	return row.Total, row.Correct, err
}

func (r *Repository) CountByCategory(ctx context.Context, wallet string) ([]CategoryCount, error) {
	counts := []CategoryCount{}
	err := r.db.SelectContext(ctx, &counts, `
		SELECT detected_category AS category, COUNT(*) AS count
		FROM classifications
		WHERE wallet_address = $1
		GROUP BY detected_category
		ORDER BY count DESC
	`, wallet)
	return counts, err
}

// ActiveDays counts distinct calendar days with at least one submission.
func (r *Repository) ActiveDays(ctx context.Context, wallet string) (int, error) {
	var days int
	err := r.db.GetContext(ctx, &days, `
		SELECT COUNT(DISTINCT created_at::date)
		FROM classifications
		WHERE wallet_address = $1
	`, wallet)
	return days, err
}

// ConsecutiveDays counts the streak of calendar days ending today (or
// yesterday, so a streak is not broken before the user's first action
// of the day) with at least one submission.
func (r *Repository) ConsecutiveDays(ctx context.Context, wallet string) (int, error) {
	var days []time.Time
	err := r.db.SelectContext(ctx, &days, `
		SELECT DISTINCT created_at::date AS day
		FROM classifications
		WHERE wallet_address = $1
		ORDER BY day DESC
		LIMIT 366
	`, wallet)
	if err != nil {
		return 0, err
	}
	return streakFrom(days, time.Now().UTC()), nil
}

func streakFrom(days []time.Time, now time.Time) int {
	if len(days) == 0 {
		return 0
	}

	today := now.Truncate(24 * time.Hour)
	head := days[0].Truncate(24 * time.Hour)
	if diff := today.Sub(head); diff > 24*time.Hour {
		return 0
	}

	streak := 1
	prev := head
	for _, d := range days[1:] {
		d = d.Truncate(24 * time.Hour)
		if prev.Sub(d) != 24*time.Hour {
			break
		}
		streak++
		prev = d
	}
	return streak
}

// ActivitySpan returns the wallet's first and last submission times,
// or nils when it has none.
func (r *Repository) ActivitySpan(ctx context.Context, wallet string) (first, last *time.Time, err error) {
	var span struct {
		First *time.Time `db:"first"`
		Last  *time.Time `db:"last"`
	}
	err = r.db.GetContext(ctx, &span, `
		SELECT MIN(created_at) AS first, MAX(created_at) AS last
		FROM classifications
		WHERE wallet_address = $1
	`, wallet)
	if err != nil {
		return nil, nil, err
	}
	return span.First, span.Last, nil
}

// CategoriesClassified lists the distinct detected categories a wallet
// has submitted correctly.
func (r *Repository) CategoriesClassified(ctx context.Context, wallet string) ([]Category, error) {
	cats := []Category{}
	err := r.db.SelectContext(ctx, &cats, `
		SELECT DISTINCT detected_category
		FROM classifications
		WHERE wallet_address = $1 AND is_correct = true
	`, wallet)
	return cats, err
}
