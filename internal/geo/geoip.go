package geo

import (
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
)

// GeoIPLocator resolves IP addresses with a MaxMind City database.
type GeoIPLocator struct {
	reader *geoip2.Reader
}

// OpenGeoIP opens a GeoLite2/GeoIP2 City database file.
func OpenGeoIP(path string) (*GeoIPLocator, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database %q: %w", path, err)
	}
	return &GeoIPLocator{reader: reader}, nil
}

func (g *GeoIPLocator) Locate(ip net.IP) (Coordinate, error) {
	city, err := g.reader.City(ip)
	if err != nil {
		return Coordinate{}, fmt.Errorf("geoip city lookup: %w", err)
	}
	// The database reports 0,0 for addresses it has no position for.
	if city.Location.Latitude == 0 && city.Location.Longitude == 0 {
		return Coordinate{}, ErrLocationUnavailable
	}
	return Coordinate{
		Latitude:  city.Location.Latitude,
		Longitude: city.Location.Longitude,
	}, nil
}

func (g *GeoIPLocator) Close() error {
	return g.reader.Close()
}
