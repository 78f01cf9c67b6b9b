package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/domo-app/domo-server/internal/model"
)

const tagRateCacheTTL = 10 * time.Minute

// UserTagService maintains the per-(user, tag) actual/expected time
// ratios. Reads go through an optional redis cache; the recompute is a
// full-history pass and runs once per project completion.
type UserTagService struct {
	rates    TagRateStore
	subtasks SubTaskStore
	cache    *redis.Client // nil disables caching
	logger   *zap.Logger
}

func NewUserTagService(rates TagRateStore, subtasks SubTaskStore, cache *redis.Client, logger *zap.Logger) *UserTagService {
	return &UserTagService{
		rates:    rates,
		subtasks: subtasks,
		cache:    cache,
		logger:   logger,
	}
}

// Recompute rebuilds the user's tag rates from every measured subtask
// across all projects. Tags with no history are left untouched so they
// keep reading as the 1.0 default. Idempotent; safe under MQ redelivery.
func (s *UserTagService) Recompute(ctx context.Context, userID int) error {
	subtasks, err := s.subtasks.ListMeasuredByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(subtasks) == 0 {
		s.logger.Debug("No measured subtasks, skipping tag rate recompute", zap.Int("user_id", userID))
		return nil
	}

	ratios := model.TagRatios(subtasks)
	for _, tag := range model.AllSubTaskTags() {
		rate, ok := ratios[tag]
		if !ok {
			continue
		}
		if err := s.rates.Upsert(ctx, userID, tag, rate); err != nil {
			return err
		}
	}

	s.invalidate(ctx, userID)
	s.logger.Info("Tag rates recomputed",
		zap.Int("user_id", userID),
		zap.Int("tags_updated", len(ratios)),
		zap.Int("subtasks_considered", len(subtasks)),
	)
	return nil
}

// RatesFor returns the ratio for every tag, defaulting absent tags to
// 1.0.
func (s *UserTagService) RatesFor(ctx context.Context, userID int) (map[model.SubTaskTag]float64, error) {
	if cached, ok := s.fromCache(ctx, userID); ok {
		return cached, nil
	}

	stored, err := s.rates.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(map[model.SubTaskTag]float64, len(model.AllSubTaskTags()))
	for _, tag := range model.AllSubTaskTags() {
		out[tag] = model.DefaultTagRate
	}
	for _, r := range stored {
		out[r.Tag] = r.Rate
	}

	s.toCache(ctx, userID, out)
	return out, nil
}

// RatePercents renders RatesFor as the floored whole percentages the
// generation prompt consumes.
func (s *UserTagService) RatePercents(ctx context.Context, userID int) (map[model.SubTaskTag]int, error) {
	rates, err := s.RatesFor(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[model.SubTaskTag]int, len(rates))
	for tag, rate := range rates {
		out[tag] = model.RatePercent(rate)
	}
	return out, nil
}

func cacheKey(userID int) string {
	return fmt.Sprintf("usertag:rates:%d", userID)
}

func (s *UserTagService) fromCache(ctx context.Context, userID int) (map[model.SubTaskTag]float64, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, cacheKey(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var out map[model.SubTaskTag]float64
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false
	}
	return out, true
}

func (s *UserTagService) toCache(ctx context.Context, userID int, rates map[model.SubTaskTag]float64) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(rates)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cacheKey(userID), raw, tagRateCacheTTL).Err(); err != nil {
		s.logger.Warn("Failed to cache tag rates", zap.Error(err), zap.Int("user_id", userID))
	}
}

func (s *UserTagService) invalidate(ctx context.Context, userID int) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(userID)).Err(); err != nil {
		s.logger.Warn("Failed to invalidate tag rate cache", zap.Error(err), zap.Int("user_id", userID))
	}
}
