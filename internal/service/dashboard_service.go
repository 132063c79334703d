package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/sandiara-digital/ged-api/internal/dto"
	"github.com/sandiara-digital/ged-api/internal/models"
	"github.com/sandiara-digital/ged-api/internal/repository"
)

const dashboardCacheKey = "ged:dashboard:v1"

// DashboardService aggregates register statistics for the overview page.
type DashboardService interface {
	Overview(ctx context.Context) (dto.DashboardResponse, error)
	Invalidate(ctx context.Context)
}

type dashboardService struct {
	docs     repository.DocumentRepository
	ledger   repository.ActivityLogRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService constructs the dashboard service. The cache client
// may be nil, in which case every call recomputes.
func NewDashboardService(docs repository.DocumentRepository, ledger repository.ActivityLogRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		docs:     docs,
		ledger:   ledger,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) Overview(ctx context.Context) (dto.DashboardResponse, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, dashboardCacheKey).Result(); err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
		}
	}

	docs, err := s.docs.List(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	startOfToday := s.now()
	startOfToday = time.Date(startOfToday.Year(), startOfToday.Month(), startOfToday.Day(), 0, 0, 0, 0, startOfToday.Location())
	activityToday, err := s.ledger.CountSince(ctx, startOfToday)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	counts := make(map[models.Category]int64, len(models.Categories))
	var awaiting int64
	for _, doc := range docs {
		counts[doc.Category]++
		if doc.Status == models.StatusRecu {
			awaiting++
		}
	}

	categories := make([]dto.CategoryCount, 0, len(models.Categories))
	for _, category := range models.Categories {
		categories = append(categories, dto.CategoryCount{
			Category: string(category),
			Count:    counts[category],
		})
	}

	response := dto.DashboardResponse{
		TotalDocuments:    int64(len(docs)),
		AwaitingSignature: awaiting,
		ActivityToday:     activityToday,
		Categories:        categories,
	}

	if s.cache != nil {
		if payload, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
			}
		}
	}

	return response, nil
}

// Invalidate drops the cached overview after a register write.
func (s *dashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}
