// Package scheduler runs the background sweeps: returning lapsed NFT
// reservations to the pool, failing stuck claim attempts and keeping
// the leaderboard cache warm.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/wastewise/wastewise-api/internal/domain/leaderboard"
	"github.com/wastewise/wastewise-api/internal/domain/nft"
)

type Config struct {
	SweepInterval     time.Duration
	PendingAttemptTTL time.Duration
}

type Scheduler struct {
	sched gocron.Scheduler
}

// New wires the sweep jobs. Start must be called for anything to run.
func New(cfg Config, pool *nft.Service, boards *leaderboard.Service) (*Scheduler, error) {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.PendingAttemptTTL <= 0 {
		cfg.PendingAttemptTTL = 5 * time.Minute
	}

	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.SweepInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := pool.ReleaseExpired(ctx); err != nil {
				log.Error().Err(err).Msg("reservation sweep failed")
			}
			if err := pool.FailStaleAttempts(ctx, cfg.PendingAttemptTTL); err != nil {
				log.Error().Err(err).Msg("stale attempt sweep failed")
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.SweepInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := boards.Rebuild(ctx); err != nil {
				log.Error().Err(err).Msg("leaderboard rebuild failed")
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	return &Scheduler{sched: sched}, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	log.Info().Msg("background sweeps started")
}

func (s *Scheduler) Stop() error {
	return s.sched.Shutdown()
}
