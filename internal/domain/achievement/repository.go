package achievement

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/wastewise/wastewise-api/internal/domain/ledger"
)

const achievementColumns = `
	id, code, title, description, category, tier, icon, reward_score,
	sort_order, max_claims, valid_from, valid_until, requirements,
	is_active, created_at, updated_at`

type Repository struct {
	db     *sqlx.DB
	scores *ledger.Repository
}

func NewRepository(db *sqlx.DB, scores *ledger.Repository) *Repository {
	return &Repository{db: db, scores: scores}
}

func (r *Repository) Create(ctx context.Context, a *Achievement) error {
	err := r.db.GetContext(ctx, a, `
		INSERT INTO achievements (
			code, title, description, category, tier, icon, reward_score,
			sort_order, max_claims, valid_from, valid_until, requirements, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING `+achievementColumns+`
	`, a.Code, a.Title, a.Description, string(a.Category), a.Tier, a.Icon, a.RewardScore,
		a.SortOrder, a.MaxClaims, a.ValidFrom, a.ValidUntil, a.Requirements, a.IsActive)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrCodeExists
		}
		return err
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, a *Achievement) error {
	err := r.db.GetContext(ctx, a, `
		UPDATE achievements SET
			title = $2, description = $3, category = $4, tier = $5,
			icon = $6, reward_score = $7, sort_order = $8, max_claims = $9,
			valid_from = $10, valid_until = $11, requirements = $12,
			is_active = $13, updated_at = now()
		WHERE id = $1
		RETURNING `+achievementColumns+`
	`, a.ID, a.Title, a.Description, string(a.Category), a.Tier, a.Icon, a.RewardScore,
		a.SortOrder, a.MaxClaims, a.ValidFrom, a.ValidUntil, a.Requirements, a.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE achievements SET is_active = $2, updated_at = now() WHERE id = $1
	`, id, active)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Achievement, error) {
	var a Achievement
	err := r.db.GetContext(ctx, &a, `SELECT `+achievementColumns+` FROM achievements WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) GetByCode(ctx context.Context, code string) (*Achievement, error) {
	var a Achievement
	err := r.db.GetContext(ctx, &a, `SELECT `+achievementColumns+` FROM achievements WHERE code = $1`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) List(ctx context.Context, activeOnly bool) ([]Achievement, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements`
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	query += ` ORDER BY sort_order, code`

	items := []Achievement{}
	err := r.db.SelectContext(ctx, &items, query)
	return items, err
}

// CatalogFilter narrows the admin catalog listing.
type CatalogFilter struct {
	Category   Category
	Tier       int
	Search     string
	ActiveOnly bool
	Limit      int
	Offset     int
}

func (r *Repository) ListFiltered(ctx context.Context, f CatalogFilter) ([]Achievement, error) {
	query := `SELECT ` + achievementColumns + ` FROM achievements WHERE 1=1`
	args := []interface{}{}

	if f.ActiveOnly {
		query += ` AND is_active = true`
	}
	if f.Category != "" {
		args = append(args, string(f.Category))
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if f.Tier > 0 {
		args = append(args, f.Tier)
		query += fmt.Sprintf(` AND tier = $%d`, len(args))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		query += fmt.Sprintf(` AND (title ILIKE $%d OR description ILIKE $%d OR code ILIKE $%d)`, len(args), len(args), len(args))
	}

	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(` ORDER BY sort_order, code LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	items := []Achievement{}
	err := r.db.SelectContext(ctx, &items, query, args...)
	return items, err
}

// UpsertProgress records an evaluated progress row. A claimed row is
// never touched, and completion never regresses: once a wallet has
// earned an achievement a later stats dip does not take it away.
func (r *Repository) UpsertProgress(ctx context.Context, wallet string, achievementID uuid.UUID, p Progress) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallet_achievements (wallet_address, achievement_id, percent, completed, completed_at)
		VALUES ($1, $2, $3, $4, CASE WHEN $4 THEN now() ELSE NULL END)
		ON CONFLICT (wallet_address, achievement_id) DO UPDATE SET
			percent = CASE
				WHEN wallet_achievements.completed THEN GREATEST(wallet_achievements.percent, EXCLUDED.percent)
				ELSE EXCLUDED.percent
			END,
			completed = wallet_achievements.completed OR EXCLUDED.completed,
			completed_at = COALESCE(wallet_achievements.completed_at, EXCLUDED.completed_at),
			updated_at = now()
		WHERE wallet_achievements.is_claimed = false
	`, wallet, achievementID, p.Percent, p.Completed)
	return err
}

func (r *Repository) GetProgress(ctx context.Context, wallet string, achievementID uuid.UUID) (*WalletAchievement, error) {
	var wa WalletAchievement
	err := r.db.GetContext(ctx, &wa, `
		SELECT id, wallet_address, achievement_id, percent, completed, completed_at,
			is_claimed, claimed_at, updated_at
		FROM wallet_achievements
		WHERE wallet_address = $1 AND achievement_id = $2
	`, wallet, achievementID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wa, nil
}

func (r *Repository) ListProgress(ctx context.Context, wallet string) (map[uuid.UUID]WalletAchievement, error) {
	rows := []WalletAchievement{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, wallet_address, achievement_id, percent, completed, completed_at,
			is_claimed, claimed_at, updated_at
		FROM wallet_achievements
		WHERE wallet_address = $1
	`, wallet)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]WalletAchievement, len(rows))
	for _, wa := range rows {
		byID[wa.AchievementID] = wa
	}
	return byID, nil
}

// ClaimCounts returns claimed and completed totals per achievement.
type ClaimCounts struct {
	AchievementID uuid.UUID `db:"achievement_id" json:"achievement_id"`
	Completed     int64     `db:"completed" json:"completed"`
	Claimed       int64     `db:"claimed" json:"claimed"`
}

func (r *Repository) CountsByAchievement(ctx context.Context) ([]ClaimCounts, error) {
	counts := []ClaimCounts{}
	err := r.db.SelectContext(ctx, &counts, `
		SELECT achievement_id,
			COUNT(*) FILTER (WHERE completed) AS completed,
			COUNT(*) FILTER (WHERE is_claimed) AS claimed
		FROM wallet_achievements
		GROUP BY achievement_id
	`)
	return counts, err
}

// CountClassificationsInWindow counts a wallet's submissions whose
// local hour falls in [start, end). A window that wraps midnight
// (start > end) counts both sides.
func (r *Repository) CountClassificationsInWindow(ctx context.Context, wallet string, startHour, endHour int) (int64, error) {
	var n int64
	var err error
	if startHour <= endHour {
		err = r.db.GetContext(ctx, &n, `
			SELECT COUNT(*) FROM classifications
			WHERE wallet_address = $1
			  AND EXTRACT(HOUR FROM created_at) >= $2
			  AND EXTRACT(HOUR FROM created_at) < $3
		`, wallet, startHour, endHour)
	} else {
		err = r.db.GetContext(ctx, &n, `
			SELECT COUNT(*) FROM classifications
			WHERE wallet_address = $1
			  AND (EXTRACT(HOUR FROM created_at) >= $2 OR EXTRACT(HOUR FROM created_at) < $3)
		`, wallet, startHour, endHour)
	}
	return n, err
}

// Claim flips a completed progress row to claimed and credits the
// reward in one transaction. The achievement row lock serializes the
// claim-cap check; the guarded UPDATE makes exactly one concurrent
// claimer win.
func (r *Repository) Claim(ctx context.Context, wallet string, achievementID uuid.UUID, now time.Time) (*Achievement, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var a Achievement
	err = tx.GetContext(ctx, &a, `
		SELECT `+achievementColumns+`
		FROM achievements
		WHERE id = $1
		FOR UPDATE
	`, achievementID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !a.IsActive {
		return nil, ErrInactive
	}

	var wa WalletAchievement
	err = tx.GetContext(ctx, &wa, `
		SELECT id, wallet_address, achievement_id, percent, completed, completed_at,
			is_claimed, claimed_at, updated_at
		FROM wallet_achievements
		WHERE wallet_address = $1 AND achievement_id = $2
		FOR UPDATE
	`, wallet, achievementID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotCompleted
	}
	if err != nil {
		return nil, err
	}
	if !wa.Completed {
		return nil, ErrNotCompleted
	}
	if wa.IsClaimed {
		return nil, ErrAlreadyClaimed
	}

	if a.MaxClaims != nil {
		var claimed int64
		if err := tx.GetContext(ctx, &claimed, `
			SELECT COUNT(*) FROM wallet_achievements
			WHERE achievement_id = $1 AND is_claimed = true
		`, achievementID); err != nil {
			return nil, err
		}
		if claimed >= int64(*a.MaxClaims) {
			return nil, ErrClaimCapReached
		}
	}

	if !a.ClaimableAt(now) {
		return nil, ErrOutsideValidityWindow
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE wallet_achievements
		SET is_claimed = true, claimed_at = $3, updated_at = now()
		WHERE wallet_address = $1 AND achievement_id = $2 AND is_claimed = false
	`, wallet, achievementID, now)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrAlreadyClaimed
	}

	// Every claim writes a ledger entry, even a zero reward, so a
	// claimed row always pairs with exactly one achievement movement.
	ref := "achievement:" + a.Code
	if err := r.scores.ApplyInTx(ctx, tx, wallet, a.RewardScore, ledger.KindAchievement, ref, "achievement reward: "+a.Title); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &a, nil
}
