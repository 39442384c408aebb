package mocks

import (
	"context"
	"errors"

	"github.com/godilite/mgnrega-dashboard/internal/geo"
	"github.com/godilite/mgnrega-dashboard/internal/repository/models"
	"github.com/godilite/mgnrega-dashboard/internal/service"
)

// MockDashboardService is a mock implementation of the DashboardService
// interface for testing the handler layer.
type MockDashboardService struct {
	GetDistrictSummaryFunc func(ctx context.Context, district string) (*service.DistrictSummary, error)
	RecentFetchesFunc      func(ctx context.Context, limit int) ([]models.FetchLogEntry, error)
}

// GetDistrictSummary implements the DashboardService interface
func (m *MockDashboardService) GetDistrictSummary(ctx context.Context, district string) (*service.DistrictSummary, error) {
	if m.GetDistrictSummaryFunc != nil {
		return m.GetDistrictSummaryFunc(ctx, district)
	}
	return nil, errors.New("GetDistrictSummaryFunc not implemented")
}

// RecentFetches implements the DashboardService interface
func (m *MockDashboardService) RecentFetches(ctx context.Context, limit int) ([]models.FetchLogEntry, error) {
	if m.RecentFetchesFunc != nil {
		return m.RecentFetchesFunc(ctx, limit)
	}
	return nil, errors.New("RecentFetchesFunc not implemented")
}

// MockLocationResolver is a mock implementation of the LocationResolver interface.
type MockLocationResolver struct {
	DistrictsFunc   func() []string
	NearestFunc     func(point geo.Coordinate) (geo.NearestDistrict, error)
	NearestToIPFunc func(ip string) (geo.NearestDistrict, error)
}

// Districts implements the LocationResolver interface
func (m *MockLocationResolver) Districts() []string {
	if m.DistrictsFunc != nil {
		return m.DistrictsFunc()
	}
	return []string{}
}

// Nearest implements the LocationResolver interface
func (m *MockLocationResolver) Nearest(point geo.Coordinate) (geo.NearestDistrict, error) {
	if m.NearestFunc != nil {
		return m.NearestFunc(point)
	}
	return geo.NearestDistrict{}, errors.New("NearestFunc not implemented")
}

// NearestToIP implements the LocationResolver interface
func (m *MockLocationResolver) NearestToIP(ip string) (geo.NearestDistrict, error) {
	if m.NearestToIPFunc != nil {
		return m.NearestToIPFunc(ip)
	}
	return geo.NearestDistrict{}, geo.ErrLocationUnavailable
}
