package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/godilite/mgnrega-dashboard/internal/datagov"
	"github.com/godilite/mgnrega-dashboard/internal/repository/models"
	"github.com/godilite/mgnrega-dashboard/internal/service/mocks"
	"github.com/godilite/mgnrega-dashboard/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func puneRecords() []datagov.Record {
	return []datagov.Record{
		record("Dec", "Pune", 420, 250, 8000),
		record("Jan", "Pune", 500, 300, 10000),
	}
}

// fetchLogRecorder collects entries written through the mock repository.
type fetchLogRecorder struct {
	mu      sync.Mutex
	entries []models.FetchLogEntry
}

func (r *fetchLogRecorder) repo() *mocks.MockFetchLogRepository {
	return &mocks.MockFetchLogRepository{
		RecordFunc: func(_ context.Context, e models.FetchLogEntry) (int64, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.entries = append(r.entries, e)
			return int64(len(r.entries)), nil
		},
	}
}

func (r *fetchLogRecorder) all() []models.FetchLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.FetchLogEntry(nil), r.entries...)
}

func TestNewDashboardService(t *testing.T) {
	t.Run("valid parameters", func(t *testing.T) {
		source := &mocks.MockRecordFetcher{}
		svc := NewDashboardService(source, zap.NewNop())

		assert.NotNil(t, svc)
		assert.Equal(t, source, svc.source)
		assert.False(t, svc.cacheEnabled())
	})

	t.Run("nil source panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewDashboardService(nil, zap.NewNop())
		})
	})

	t.Run("nil logger gets default", func(t *testing.T) {
		svc := NewDashboardService(&mocks.MockRecordFetcher{}, nil)
		assert.NotNil(t, svc.logger)
	})

	t.Run("cache needs positive ttl", func(t *testing.T) {
		svc := NewDashboardService(&mocks.MockRecordFetcher{}, nil, WithCache(&mocks.MockCacher{}, 0))
		assert.False(t, svc.cacheEnabled())

		svc = NewDashboardService(&mocks.MockRecordFetcher{}, nil, WithCache(&mocks.MockCacher{}, time.Minute))
		assert.True(t, svc.cacheEnabled())
	})
}

func TestGetDistrictSummary(t *testing.T) {
	ctx := context.Background()
	now := func() time.Time { return time.Date(2025, 10, 20, 6, 0, 0, 0, time.UTC) }

	t.Run("missing district", func(t *testing.T) {
		source := &mocks.MockRecordFetcher{
			FetchRecordsFunc: func(context.Context, string) ([]datagov.Record, error) {
				t.Error("upstream must not be called")
				return nil, nil
			},
		}
		svc := NewDashboardService(source, zaptest.NewLogger(t))

		for _, district := range []string{"", "   ", "\t"} {
			_, err := svc.GetDistrictSummary(ctx, district)
			assert.ErrorIs(t, err, ErrMissingDistrict)
		}
	})

	t.Run("success", func(t *testing.T) {
		var rec fetchLogRecorder
		source := &mocks.MockRecordFetcher{
			FetchRecordsFunc: func(_ context.Context, district string) ([]datagov.Record, error) {
				assert.Equal(t, "Pune", district)
				return puneRecords(), nil
			},
		}
		svc := NewDashboardService(source, zaptest.NewLogger(t), WithFetchLog(rec.repo()), WithClock(now))

		got, err := svc.GetDistrictSummary(ctx, "  Pune ")
		require.NoError(t, err)

		assert.Equal(t, "Pune", got.District)
		assert.Equal(t, int64(5), got.CurrentMonth.Villages)
		assert.Equal(t, "2025-10-20T06:00:00.000Z", got.LastUpdated)
		require.Len(t, got.HistoricalData, 2)
		assert.Equal(t, "Dec", got.HistoricalData[0].Month)

		entries := rec.all()
		require.Len(t, entries, 1)
		assert.Equal(t, "PUNE", entries[0].District)
		assert.Equal(t, models.OutcomeOK, entries[0].Outcome)
		assert.Equal(t, 2, entries[0].RecordCount)
		assert.Zero(t, entries[0].StatusCode)
	})

	t.Run("no data", func(t *testing.T) {
		var rec fetchLogRecorder
		source := &mocks.MockRecordFetcher{
			FetchRecordsFunc: func(context.Context, string) ([]datagov.Record, error) {
				return []datagov.Record{}, nil
			},
		}
		svc := NewDashboardService(source, zaptest.NewLogger(t), WithFetchLog(rec.repo()))

		got, err := svc.GetDistrictSummary(ctx, "Gadchiroli")
		assert.ErrorIs(t, err, ErrNoData)
		assert.Nil(t, got)

		entries := rec.all()
		require.Len(t, entries, 1)
		assert.Equal(t, models.OutcomeNoData, entries[0].Outcome)
	})

	errorCases := []struct {
		name       string
		err        error
		outcome    string
		statusCode int
		is         error
	}{
		{"remote error", &datagov.RemoteFetchError{StatusCode: 503}, models.OutcomeRemoteError, 503, datagov.ErrRemoteFetch},
		{"network error", fmt.Errorf("%w: dial tcp: refused", datagov.ErrNetwork), models.OutcomeNetworkError, 0, datagov.ErrNetwork},
		{"decode error", fmt.Errorf("%w: unexpected EOF", datagov.ErrDecode), models.OutcomeFailure, 0, datagov.ErrDecode},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			var rec fetchLogRecorder
			source := &mocks.MockRecordFetcher{
				FetchRecordsFunc: func(context.Context, string) ([]datagov.Record, error) {
					return nil, tc.err
				},
			}
			svc := NewDashboardService(source, zaptest.NewLogger(t), WithFetchLog(rec.repo()))

			got, err := svc.GetDistrictSummary(ctx, "Nagpur")
			assert.Nil(t, got)
			assert.ErrorIs(t, err, ErrUpstreamFailure)
			assert.ErrorIs(t, err, tc.is)

			entries := rec.all()
			require.Len(t, entries, 1)
			assert.Equal(t, tc.outcome, entries[0].Outcome)
			assert.Equal(t, tc.statusCode, entries[0].StatusCode)
		})
	}

	t.Run("fetch log failure does not fail the request", func(t *testing.T) {
		source := &mocks.MockRecordFetcher{
			FetchRecordsFunc: func(context.Context, string) ([]datagov.Record, error) {
				return puneRecords(), nil
			},
		}
		repo := &mocks.MockFetchLogRepository{
			RecordFunc: func(context.Context, models.FetchLogEntry) (int64, error) {
				return 0, errors.New("database is locked")
			},
		}
		svc := NewDashboardService(source, zaptest.NewLogger(t), WithFetchLog(repo))

		got, err := svc.GetDistrictSummary(ctx, "Pune")
		require.NoError(t, err)
		assert.Equal(t, "Pune", got.District)
	})

	t.Run("requests are independent", func(t *testing.T) {
		source := &mocks.MockRecordFetcher{
			FetchRecordsFunc: func(_ context.Context, district string) ([]datagov.Record, error) {
				return []datagov.Record{record("Jan", district, 100, 1, 1)}, nil
			},
		}
		svc := NewDashboardService(source, zaptest.NewLogger(t))

		var wg sync.WaitGroup
		for _, d := range []string{"Pune", "Nagpur", "Thane", "Akola"} {
			d := d
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := svc.GetDistrictSummary(ctx, d)
				if assert.NoError(t, err) {
					assert.Equal(t, d, got.District)
				}
			}()
		}
		wg.Wait()
	})
}

func TestGetDistrictSummary_WithCache(t *testing.T) {
	ctx := context.Background()

	var (
		mu     sync.Mutex
		stored = map[string]cachedValue[[]datagov.Record]{}
	)
	c := &mocks.MockCacher{
		GetFunc: func(_ context.Context, key string, dest any) error {
			mu.Lock()
			defer mu.Unlock()
			v, ok := stored[key]
			if !ok {
				return cache.ErrMiss
			}
			*dest.(*cachedValue[[]datagov.Record]) = v
			return nil
		},
		SetFunc: func(_ context.Context, key string, value any, _ time.Duration) error {
			mu.Lock()
			defer mu.Unlock()
			stored[key] = value.(cachedValue[[]datagov.Record])
			return nil
		},
	}

	var calls atomic.Int32
	source := &mocks.MockRecordFetcher{
		FetchRecordsFunc: func(context.Context, string) ([]datagov.Record, error) {
			calls.Add(1)
			return puneRecords(), nil
		},
	}
	svc := NewDashboardService(source, zap.NewNop(), WithCache(c, time.Hour))

	first, err := svc.GetDistrictSummary(ctx, "pune")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		_, ok := stored["datagov:records:PUNE"]
		return ok
	}, 2*time.Second, 10*time.Millisecond)

	second, err := svc.GetDistrictSummary(ctx, "Pune")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, first.CurrentMonth, second.CurrentMonth)
	assert.Equal(t, first.HistoricalData, second.HistoricalData)
}

func TestRecentFetches(t *testing.T) {
	ctx := context.Background()

	t.Run("without fetch log", func(t *testing.T) {
		svc := NewDashboardService(&mocks.MockRecordFetcher{}, zap.NewNop())
		got, err := svc.RecentFetches(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, got)
		assert.NotNil(t, got)
	})

	limits := []struct {
		in, want int
	}{
		{0, 50},
		{-3, 50},
		{10, 10},
		{200, 200},
		{5000, 200},
	}
	for _, tc := range limits {
		t.Run(fmt.Sprintf("limit %d", tc.in), func(t *testing.T) {
			repo := &mocks.MockFetchLogRepository{
				RecentFunc: func(ctx context.Context, limit int) ([]models.FetchLogEntry, error) {
					_, hasDeadline := ctx.Deadline()
					assert.True(t, hasDeadline)
					assert.Equal(t, tc.want, limit)
					return []models.FetchLogEntry{{ID: 1, District: "PUNE", Outcome: models.OutcomeOK}}, nil
				},
			}
			svc := NewDashboardService(&mocks.MockRecordFetcher{}, zap.NewNop(), WithFetchLog(repo))

			got, err := svc.RecentFetches(ctx, tc.in)
			require.NoError(t, err)
			assert.Len(t, got, 1)
		})
	}

	t.Run("repository error", func(t *testing.T) {
		repo := &mocks.MockFetchLogRepository{
			RecentFunc: func(context.Context, int) ([]models.FetchLogEntry, error) {
				return nil, errors.New("no such table: fetch_log")
			},
		}
		svc := NewDashboardService(&mocks.MockRecordFetcher{}, zap.NewNop(), WithFetchLog(repo))

		_, err := svc.RecentFetches(ctx, 5)
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "recent fetches:"))
	})
}
