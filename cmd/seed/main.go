// Command seed loads the built-in achievement catalog into the
// database. Existing codes are left untouched, so it is safe to run
// on every deploy.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wastewise/wastewise-api/internal/config"
	"github.com/wastewise/wastewise-api/internal/domain/achievement"
	"github.com/wastewise/wastewise-api/internal/domain/classification"
	"github.com/wastewise/wastewise-api/internal/domain/ledger"
	"github.com/wastewise/wastewise-api/internal/pkg/database"
	"github.com/wastewise/wastewise-api/internal/pkg/logger"
)

func i64(v int64) *int64 { return &v }
func iv(v int) *int      { return &v }
func ts(v string) *time.Time {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		log.Fatal().Err(err).Str("value", v).Msg("bad seed timestamp")
	}
	return &t
}

func catalog() []achievement.Achievement {
	allCategories := []classification.Category{
		classification.CategoryRecyclable,
		classification.CategoryHazardous,
		classification.CategoryKitchen,
		classification.CategoryOther,
	}

	return []achievement.Achievement{
		// Starter tier.
		{
			Code:        "first_classification",
			Tier:        achievement.TierBronze,
			SortOrder:   1,
			Title:       "First Steps",
			Description: "Complete your first waste classification.",
			Category:    achievement.CategoryMilestone,
			Icon:        "first_classification",
			RewardScore: 20,
			Requirements: achievement.Requirements{
				MinClassifications: i64(1),
			},
		},
		{
			Code:        "daily_newcomer",
			Tier:        achievement.TierBronze,
			SortOrder:   2,
			Title:       "Getting Into the Habit",
			Description: "Use the app three days in a row.",
			Category:    achievement.CategoryStreak,
			Icon:        "daily_newcomer",
			RewardScore: 30,
			Requirements: achievement.Requirements{
				ConsecutiveDays: iv(3),
			},
		},
		{
			Code:        "score_beginner",
			Tier:        achievement.TierBronze,
			SortOrder:   3,
			Title:       "Score Beginner",
			Description: "Earn 100 points in total.",
			Category:    achievement.CategoryMilestone,
			Icon:        "score_beginner",
			RewardScore: 50,
			Requirements: achievement.Requirements{
				MinScore: i64(100),
			},
		},
		{
			Code:        "accuracy_starter",
			Tier:        achievement.TierBronze,
			SortOrder:   4,
			Title:       "Off to an Accurate Start",
			Description: "Reach 70% accuracy across your first 10 classifications.",
			Category:    achievement.CategoryAccuracy,
			Icon:        "accuracy_starter",
			RewardScore: 40,
			Requirements: achievement.Requirements{
				MinAccuracy:        iv(70),
				MinClassifications: i64(10),
			},
		},

		// Intermediate tier.
		{
			Code:        "classification_enthusiast",
			Tier:        achievement.TierSilver,
			SortOrder:   5,
			Title:       "Classification Enthusiast",
			Description: "Complete 50 waste classifications.",
			Category:    achievement.CategoryMilestone,
			Icon:        "classification_enthusiast",
			RewardScore: 100,
			Requirements: achievement.Requirements{
				MinClassifications: i64(50),
			},
		},
		{
			Code:        "accuracy_rookie",
			Tier:        achievement.TierSilver,
			SortOrder:   6,
			Title:       "Rising Star",
			Description: "Reach 80% accuracy over at least 20 classifications.",
			Category:    achievement.CategoryAccuracy,
			Icon:        "accuracy_rookie",
			RewardScore: 150,
			Requirements: achievement.Requirements{
				MinAccuracy:        iv(80),
				MinClassifications: i64(20),
			},
		},
		{
			Code:        "weekly_warrior",
			Tier:        achievement.TierSilver,
			SortOrder:   7,
			Title:       "Weekly Warrior",
			Description: "Use the app seven days in a row.",
			Category:    achievement.CategoryStreak,
			Icon:        "weekly_warrior",
			RewardScore: 80,
			Requirements: achievement.Requirements{
				ConsecutiveDays: iv(7),
			},
		},
		{
			Code:        "category_explorer",
			Tier:        achievement.TierSilver,
			SortOrder:   8,
			Title:       "Category Explorer",
			Description: "Correctly classify waste in all four categories.",
			Category:    achievement.CategorySpecial,
			Icon:        "category_explorer",
			RewardScore: 120,
			Requirements: achievement.Requirements{
				SpecificCategories: allCategories,
				MinClassifications: i64(20),
			},
		},

		// Advanced tier.
		{
			Code:        "classification_master",
			Tier:        achievement.TierGold,
			SortOrder:   9,
			Title:       "Classification Master",
			Description: "Complete 500 waste classifications.",
			Category:    achievement.CategoryMilestone,
			Icon:        "classification_master",
			RewardScore: 500,
			Requirements: achievement.Requirements{
				MinClassifications: i64(500),
			},
		},
		{
			Code:        "accuracy_expert",
			Tier:        achievement.TierGold,
			SortOrder:   10,
			Title:       "Precision Expert",
			Description: "Reach 95% accuracy over at least 100 classifications.",
			Category:    achievement.CategoryAccuracy,
			Icon:        "accuracy_expert",
			RewardScore: 800,
			Requirements: achievement.Requirements{
				MinAccuracy:        iv(95),
				MinClassifications: i64(100),
			},
		},
		{
			Code:        "score_collector",
			Tier:        achievement.TierGold,
			SortOrder:   11,
			Title:       "Score Collector",
			Description: "Earn 5000 points in total.",
			Category:    achievement.CategoryMilestone,
			Icon:        "score_collector",
			RewardScore: 300,
			Requirements: achievement.Requirements{
				MinScore: i64(5000),
			},
		},
		{
			Code:        "monthly_champion",
			Tier:        achievement.TierGold,
			SortOrder:   12,
			Title:       "Monthly Champion",
			Description: "Use the app thirty days in a row.",
			Category:    achievement.CategoryStreak,
			Icon:        "monthly_champion",
			RewardScore: 400,
			Requirements: achievement.Requirements{
				ConsecutiveDays: iv(30),
			},
		},
		{
			Code:        "night_owl",
			Tier:        achievement.TierPlatinum,
			SortOrder:   13,
			Title:       "Night Owl",
			Description: "Record 15 classifications between 10pm and 6am.",
			Category:    achievement.CategorySpecial,
			Icon:        "night_owl",
			RewardScore: 250,
			Requirements: achievement.Requirements{
				TimeWindow: &achievement.TimeWindowRequirement{
					StartHour: 22,
					EndHour:   6,
					MinCount:  15,
				},
			},
		},

		// Expert tier.
		{
			Code:        "classification_guru",
			Tier:        achievement.TierPlatinum,
			SortOrder:   14,
			Title:       "Classification Guru",
			Description: "Complete 1000 waste classifications.",
			Category:    achievement.CategoryMilestone,
			Icon:        "classification_guru",
			RewardScore: 1000,
			Requirements: achievement.Requirements{
				MinClassifications: i64(1000),
			},
		},
		{
			Code:        "perfect_accuracy",
			Tier:        achievement.TierPlatinum,
			SortOrder:   15,
			Title:       "Perfectionist",
			Description: "Reach 99% accuracy over at least 500 classifications.",
			Category:    achievement.CategoryAccuracy,
			Icon:        "perfect_accuracy",
			RewardScore: 1500,
			Requirements: achievement.Requirements{
				MinAccuracy:        iv(99),
				MinClassifications: i64(500),
			},
		},
		{
			Code:        "score_millionaire",
			Tier:        achievement.TierPlatinum,
			SortOrder:   16,
			Title:       "Score Tycoon",
			Description: "Earn 10000 points in total.",
			Category:    achievement.CategoryMilestone,
			Icon:        "score_millionaire",
			RewardScore: 800,
			Requirements: achievement.Requirements{
				MinScore: i64(10000),
			},
		},

		// Legend tier.
		{
			Code:        "eco_legend",
			Tier:        achievement.TierDiamond,
			SortOrder:   17,
			Title:       "Eco Legend",
			Description: "Complete 2000 classifications at 99% accuracy.",
			Category:    achievement.CategorySpecial,
			Icon:        "eco_legend",
			RewardScore: 2000,
			Requirements: achievement.Requirements{
				MinClassifications: i64(2000),
				MinAccuracy:        iv(99),
			},
		},
		{
			Code:        "ultimate_master",
			Tier:        achievement.TierDiamond,
			SortOrder:   18,
			Title:       "Ultimate Master",
			Description: "Complete 5000 waste classifications.",
			Category:    achievement.CategoryMilestone,
			Icon:        "ultimate_master",
			RewardScore: 3000,
			Requirements: achievement.Requirements{
				MinClassifications: i64(5000),
			},
		},
		{
			Code:        "loyalty_titan",
			Tier:        achievement.TierDiamond,
			SortOrder:   19,
			Title:       "Loyalty Titan",
			Description: "Use the app 365 days in a row.",
			Category:    achievement.CategoryStreak,
			Icon:        "loyalty_titan",
			RewardScore: 2500,
			Requirements: achievement.Requirements{
				ConsecutiveDays: iv(365),
			},
		},

		// Seasonal, limited claims.
		{
			Code:        "earth_day_hero",
			Tier:        achievement.TierGold,
			SortOrder:   20,
			Title:       "Earth Day Hero",
			Description: "Complete 50 classifications during Earth Day.",
			Category:    achievement.CategorySeasonal,
			Icon:        "earth_day_hero",
			RewardScore: 300,
			MaxClaims:   iv(1000),
			ValidFrom:   ts("2026-04-22T00:00:00Z"),
			ValidUntil:  ts("2026-04-22T23:59:59Z"),
			Requirements: achievement.Requirements{
				MinClassifications: i64(50),
			},
		},
		{
			Code:        "new_year_resolver",
			Tier:        achievement.TierSilver,
			SortOrder:   21,
			Title:       "New Year Resolver",
			Description: "Keep a seven day streak through the first week of the year.",
			Category:    achievement.CategorySeasonal,
			Icon:        "new_year_resolver",
			RewardScore: 200,
			MaxClaims:   iv(500),
			ValidFrom:   ts("2027-01-01T00:00:00Z"),
			ValidUntil:  ts("2027-01-07T23:59:59Z"),
			Requirements: achievement.Requirements{
				ConsecutiveDays: iv(7),
			},
		},
	}
}

func main() {
	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer database.ClosePostgres(db)

	scoreRepo := ledger.NewRepository(db)
	repo := achievement.NewRepository(db, scoreRepo)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	var created, skipped int
	for _, a := range catalog() {
		a := a
		a.IsActive = true
		if err := a.Requirements.Validate(); err != nil {
			log.Fatal().Err(err).Str("code", a.Code).Msg("invalid seed requirements")
		}
		err := repo.Create(ctx, &a)
		switch {
		case errors.Is(err, achievement.ErrCodeExists):
			skipped++
		case err != nil:
			log.Fatal().Err(err).Str("code", a.Code).Msg("failed to seed achievement")
		default:
			created++
			log.Info().Str("code", a.Code).Msg("achievement seeded")
		}
	}

	log.Info().Int("created", created).Int("skipped", skipped).Msg("achievement catalog seeded")
}
