package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/godilite/mgnrega-dashboard/internal/datagov"
	"github.com/godilite/mgnrega-dashboard/internal/repository/models"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	dbTimeout = 1 * time.Second

	defaultRecentFetches = 50
	maxRecentFetches     = 200

	recordsCacheKeyPrefix = "datagov:records:"
)

var (
	ErrMissingDistrict = errors.New("district is required")
	ErrNoData          = errors.New("no data found for district")
	ErrUpstreamFailure = errors.New("upstream failure")
)

type Option func(*DashboardService)

// WithCache enables the upstream record cache. A nil cache or non-positive
// ttl leaves it disabled.
func WithCache(c Cacher, ttl time.Duration) Option {
	return func(s *DashboardService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithFetchLog(repo FetchLogRepository) Option {
	return func(s *DashboardService) { s.fetchLog = repo }
}

func WithClock(now func() time.Time) Option {
	return func(s *DashboardService) { s.transformer = NewTransformer(now) }
}

// DashboardService fetches district records and turns them into summaries.
type DashboardService struct {
	source      RecordFetcher
	fetchLog    FetchLogRepository
	cache       Cacher
	cacheTTL    time.Duration
	transformer *Transformer
	sfGroup     singleflight.Group
	logger      *zap.Logger
}

// NewDashboardService creates a new DashboardService instance.
func NewDashboardService(source RecordFetcher, logger *zap.Logger, opts ...Option) *DashboardService {
	if source == nil {
		panic("source must not be nil")
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	s := &DashboardService{
		source:      source,
		transformer: NewTransformer(nil),
		logger:      logger.Named("dashboard"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DashboardService) cacheEnabled() bool {
	return s.cache != nil && s.cacheTTL > 0
}

// GetDistrictSummary fetches the district's records and transforms them.
func (s *DashboardService) GetDistrictSummary(ctx context.Context, district string) (*DistrictSummary, error) {
	district = strings.TrimSpace(district)
	if district == "" {
		return nil, ErrMissingDistrict
	}

	records, err := s.records(ctx, district)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstreamFailure, err)
	}

	summary := s.transformer.Transform(records)
	if summary == nil {
		s.logger.Info("no records for district", zap.String("district", district))
		return nil, ErrNoData
	}

	s.logger.Info("district summary built",
		zap.String("district", summary.District),
		zap.Int("records", len(records)),
		zap.Int("history", len(summary.HistoricalData)))

	return summary, nil
}

func (s *DashboardService) records(ctx context.Context, district string) ([]datagov.Record, error) {
	key := strings.ToUpper(district)
	fetch := func(fetchCtx context.Context) ([]datagov.Record, error) {
		return s.fetchAndLog(fetchCtx, district)
	}

	if s.cacheEnabled() {
		return FindAndCache(ctx, s.cache, &s.sfGroup, recordsCacheKeyPrefix+key, s.cacheTTL, s.logger, fetch)
	}
	return shareFetch(ctx, &s.sfGroup, key, fetch)
}

func (s *DashboardService) fetchAndLog(ctx context.Context, district string) ([]datagov.Record, error) {
	start := time.Now()
	records, err := s.source.FetchRecords(ctx, district)

	entry := models.FetchLogEntry{
		District:    strings.ToUpper(district),
		RecordCount: len(records),
		DurationMs:  time.Since(start).Milliseconds(),
		CreatedAt:   time.Now().UTC(),
	}
	entry.Outcome, entry.StatusCode = classifyFetch(records, err)
	s.recordFetch(entry, err)

	return records, err
}

func classifyFetch(records []datagov.Record, err error) (string, int) {
	var remote *datagov.RemoteFetchError
	switch {
	case err == nil && len(records) == 0:
		return models.OutcomeNoData, 0
	case err == nil:
		return models.OutcomeOK, 0
	case errors.As(err, &remote):
		return models.OutcomeRemoteError, remote.StatusCode
	case errors.Is(err, datagov.ErrNetwork):
		return models.OutcomeNetworkError, 0
	default:
		return models.OutcomeFailure, 0
	}
}

func (s *DashboardService) recordFetch(entry models.FetchLogEntry, fetchErr error) {
	fields := []zap.Field{
		zap.String("district", entry.District),
		zap.String("outcome", entry.Outcome),
		zap.Int("records", entry.RecordCount),
		zap.Int64("duration_ms", entry.DurationMs),
	}
	if entry.StatusCode != 0 {
		fields = append(fields, zap.Int("status", entry.StatusCode))
	}
	if fetchErr != nil {
		s.logger.Warn("upstream fetch failed", append(fields, zap.Error(fetchErr))...)
	} else {
		s.logger.Debug("upstream fetch completed", fields...)
	}

	if s.fetchLog == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	if _, err := s.fetchLog.Record(ctx, entry); err != nil {
		s.logger.Error("failed to record fetch", zap.String("district", entry.District), zap.Error(err))
	}
}

// RecentFetches returns the most recent fetch log entries, newest first.
// limit is clamped to [1, 200]; non-positive values select the default.
func (s *DashboardService) RecentFetches(ctx context.Context, limit int) ([]models.FetchLogEntry, error) {
	if s.fetchLog == nil {
		return []models.FetchLogEntry{}, nil
	}
	switch {
	case limit <= 0:
		limit = defaultRecentFetches
	case limit > maxRecentFetches:
		limit = maxRecentFetches
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	entries, err := s.fetchLog.Recent(dbCtx, limit)
	if err != nil {
		return nil, fmt.Errorf("recent fetches: %w", err)
	}
	return entries, nil
}
