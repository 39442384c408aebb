package mocks

import (
	"context"
	"errors"

	"github.com/godilite/mgnrega-dashboard/internal/repository/models"
)

// MockFetchLogRepository is a mock implementation of the FetchLogRepository
// interface.
type MockFetchLogRepository struct {
	RecordFunc func(ctx context.Context, entry models.FetchLogEntry) (int64, error)
	RecentFunc func(ctx context.Context, limit int) ([]models.FetchLogEntry, error)
}

// Record implements the FetchLogRepository interface
func (m *MockFetchLogRepository) Record(ctx context.Context, entry models.FetchLogEntry) (int64, error) {
	if m.RecordFunc != nil {
		return m.RecordFunc(ctx, entry)
	}
	return 0, nil
}

// Recent implements the FetchLogRepository interface
func (m *MockFetchLogRepository) Recent(ctx context.Context, limit int) ([]models.FetchLogEntry, error) {
	if m.RecentFunc != nil {
		return m.RecentFunc(ctx, limit)
	}
	return nil, errors.New("RecentFunc not implemented")
}
