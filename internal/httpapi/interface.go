package httpapi

import (
	"context"

	"github.com/godilite/mgnrega-dashboard/internal/geo"
	"github.com/godilite/mgnrega-dashboard/internal/repository/models"
	"github.com/godilite/mgnrega-dashboard/internal/service"
)

type DashboardService interface {
	GetDistrictSummary(ctx context.Context, district string) (*service.DistrictSummary, error)
	RecentFetches(ctx context.Context, limit int) ([]models.FetchLogEntry, error)
}

type LocationResolver interface {
	Districts() []string
	Nearest(point geo.Coordinate) (geo.NearestDistrict, error)
	NearestToIP(ip string) (geo.NearestDistrict, error)
}
