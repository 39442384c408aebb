package geo

import (
	"errors"
	"fmt"
	"math"
	"net"

	"github.com/jftuga/geodist"
	"go.uber.org/zap"
)

var (
	ErrInvalidCoordinate   = errors.New("invalid coordinate")
	ErrLocationUnavailable = errors.New("location unavailable")
)

// Validate checks that c is a finite position within WGS84 bounds.
func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) ||
		math.IsInf(c.Latitude, 0) || math.IsInf(c.Longitude, 0) {
		return fmt.Errorf("%w: not finite", ErrInvalidCoordinate)
	}
	if c.Latitude < -90 || c.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidCoordinate, c.Latitude)
	}
	if c.Longitude < -180 || c.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidCoordinate, c.Longitude)
	}
	return nil
}

// FindNearest returns the table entry closest to point using squared
// Euclidean distance over raw degrees. This ignores latitude compression and
// is only meant for province-sized tables. The first entry wins ties.
func FindNearest(point Coordinate, table []DistrictReference) (string, bool) {
	i := nearestIndex(point, table)
	if i < 0 {
		return "", false
	}
	return table[i].Name, true
}

func nearestIndex(point Coordinate, table []DistrictReference) int {
	best := -1
	bestDist := math.Inf(1)
	for i, d := range table {
		dLat := point.Latitude - d.Coordinate.Latitude
		dLon := point.Longitude - d.Coordinate.Longitude
		dist := dLat*dLat + dLon*dLon
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	return best
}

// NearestDistrict is a resolved district with its reference coordinate.
// DistanceKm is informational and absent when it could not be computed.
type NearestDistrict struct {
	District    string     `json:"district"`
	Reference   Coordinate `json:"reference"`
	DistanceKm  *float64   `json:"distanceKm,omitempty"`
	Approximate bool       `json:"approximate"`
}

// IPLocator maps an IP address to a coordinate.
type IPLocator interface {
	Locate(ip net.IP) (Coordinate, error)
}

// Resolver answers nearest-district queries against a fixed table.
type Resolver struct {
	table   []DistrictReference
	locator IPLocator
	logger  *zap.Logger
}

// NewResolver builds a Resolver. locator may be nil, in which case IP based
// lookups report ErrLocationUnavailable.
func NewResolver(table []DistrictReference, locator IPLocator, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := make([]DistrictReference, len(table))
	copy(t, table)
	return &Resolver{
		table:   t,
		locator: locator,
		logger:  logger.Named("geo-resolver"),
	}
}

// Districts lists the table's district names in order.
func (r *Resolver) Districts() []string {
	return Names(r.table)
}

// Nearest resolves point to the closest district.
func (r *Resolver) Nearest(point Coordinate) (NearestDistrict, error) {
	if err := point.Validate(); err != nil {
		return NearestDistrict{}, err
	}

	i := nearestIndex(point, r.table)
	if i < 0 {
		return NearestDistrict{}, ErrLocationUnavailable
	}
	ref := r.table[i]

	out := NearestDistrict{
		District:    ref.Name,
		Reference:   ref.Coordinate,
		Approximate: true,
	}

	_, km, err := geodist.VincentyDistance(
		geodist.Coord{Lat: point.Latitude, Lon: point.Longitude},
		geodist.Coord{Lat: ref.Coordinate.Latitude, Lon: ref.Coordinate.Longitude},
	)
	if err != nil {
		r.logger.Debug("geodesic distance unavailable", zap.String("district", ref.Name), zap.Error(err))
	} else {
		out.DistanceKm = &km
	}

	return out, nil
}

// NearestToIP locates ip and resolves the result to the closest district.
func (r *Resolver) NearestToIP(ip string) (NearestDistrict, error) {
	if r.locator == nil {
		return NearestDistrict{}, fmt.Errorf("%w: no ip database configured", ErrLocationUnavailable)
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return NearestDistrict{}, fmt.Errorf("%w: unparsable ip %q", ErrLocationUnavailable, ip)
	}

	point, err := r.locator.Locate(parsed)
	if err != nil {
		r.logger.Info("ip location lookup failed", zap.String("ip", ip), zap.Error(err))
		return NearestDistrict{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	return r.Nearest(point)
}
