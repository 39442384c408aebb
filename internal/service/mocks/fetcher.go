package mocks

import (
	"context"
	"errors"

	"github.com/godilite/mgnrega-dashboard/internal/datagov"
)

// MockRecordFetcher is a mock implementation of the RecordFetcher interface
// for testing the service layer.
type MockRecordFetcher struct {
	FetchRecordsFunc func(ctx context.Context, district string) ([]datagov.Record, error)
}

// FetchRecords implements the RecordFetcher interface
func (m *MockRecordFetcher) FetchRecords(ctx context.Context, district string) ([]datagov.Record, error) {
	if m.FetchRecordsFunc != nil {
		return m.FetchRecordsFunc(ctx, district)
	}
	return nil, errors.New("FetchRecordsFunc not implemented")
}
