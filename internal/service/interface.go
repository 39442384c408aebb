package service

import (
	"context"
	"time"

	"github.com/godilite/mgnrega-dashboard/internal/datagov"
	"github.com/godilite/mgnrega-dashboard/internal/repository/models"
)

// RecordFetcher retrieves raw district records from the upstream API.
type RecordFetcher interface {
	FetchRecords(ctx context.Context, district string) ([]datagov.Record, error)
}

// FetchLogRepository defines the persistence operations for the fetch audit log.
type FetchLogRepository interface {
	Record(ctx context.Context, entry models.FetchLogEntry) (int64, error)
	Recent(ctx context.Context, limit int) ([]models.FetchLogEntry, error)
}

// Cacher defines the interface for cache operations.
type Cacher interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}
