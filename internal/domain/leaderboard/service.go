package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	scoreKey   = "leaderboard:netscore"
	detailKey  = "leaderboard:detail"
	rebuildCap = 1000
)

// Service serves rankings from a Redis sorted-set cache, falling back
// to SQL when Redis is disabled or the cache is cold. Rebuild keeps
// the cache warm; reads never write it.
type Service struct {
	repo  *Repository
	redis *redis.Client // nil if Redis disabled
}

func NewService(repo *Repository, rdb *redis.Client) *Service {
	return &Service{repo: repo, redis: rdb}
}

// ErrBadPeriod marks an unknown leaderboard period.
var ErrBadPeriod = errors.New("unknown leaderboard period")

// periodSince maps a period name to its cutoff. The zero time means
// all-time.
func periodSince(period string) (time.Time, error) {
	switch period {
	case "", "all":
		return time.Time{}, nil
	case "week":
		return time.Now().UTC().AddDate(0, 0, -7), nil
	case "month":
		return time.Now().UTC().AddDate(0, -1, 0), nil
	default:
		return time.Time{}, ErrBadPeriod
	}
}

func (s *Service) Top(ctx context.Context, period string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 100 {
		limit = 25
	}

	since, err := periodSince(period)
	if err != nil {
		return nil, err
	}
	if !since.IsZero() {
		return s.repo.TopSince(ctx, since, limit)
	}

	if entries, ok := s.topFromCache(ctx, limit); ok {
		return entries, nil
	}
	return s.repo.Top(ctx, limit)
}

func (s *Service) Rank(ctx context.Context, wallet string) (*Entry, error) {
	if s.redis != nil {
		rank, err := s.redis.ZRevRank(ctx, scoreKey, wallet).Result()
		if err == nil {
			if entry, ok := s.detailFromCache(ctx, wallet); ok {
				entry.Rank = int(rank) + 1
				return entry, nil
			}
		}
	}
	return s.repo.Rank(ctx, wallet)
}

// Rebuild refreshes the cache from SQL. Called on a schedule; safe to
// call with Redis disabled.
func (s *Service) Rebuild(ctx context.Context) error {
	if s.redis == nil {
		return nil
	}

	entries, err := s.repo.Top(ctx, rebuildCap)
	if err != nil {
		return err
	}

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, scoreKey, detailKey)
	for _, e := range entries {
		pipe.ZAdd(ctx, scoreKey, redis.Z{Score: float64(e.NetScore), Member: e.Wallet})
		detail, err := json.Marshal(e)
		if err != nil {
			return err
		}
		pipe.HSet(ctx, detailKey, e.Wallet, detail)
	}
	pipe.Expire(ctx, scoreKey, 5*time.Minute)
	pipe.Expire(ctx, detailKey, 5*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	log.Debug().Int("entries", len(entries)).Msg("leaderboard cache rebuilt")
	return nil
}

func (s *Service) topFromCache(ctx context.Context, limit int) ([]Entry, bool) {
	if s.redis == nil {
		return nil, false
	}

	members, err := s.redis.ZRevRangeWithScores(ctx, scoreKey, 0, int64(limit-1)).Result()
	if err != nil || len(members) == 0 {
		return nil, false
	}

	entries := make([]Entry, 0, len(members))
	for i, m := range members {
		wallet, _ := m.Member.(string)
		entry, ok := s.detailFromCache(ctx, wallet)
		if !ok {
			entry = &Entry{Wallet: wallet, NetScore: int64(m.Score)}
		}
		entry.Rank = i + 1
		entries = append(entries, *entry)
	}
	return entries, true
}

func (s *Service) detailFromCache(ctx context.Context, wallet string) (*Entry, bool) {
	raw, err := s.redis.HGet(ctx, detailKey, wallet).Result()
	if err != nil {
		return nil, false
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, false
	}
	return &entry, true
}

// limitFromQuery parses a limit query parameter with the service
// default.
func limitFromQuery(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
