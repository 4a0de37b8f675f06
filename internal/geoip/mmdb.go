package geoip

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"linkpulse/internal/entities"
)

// MMDBResolver answers lookups from a local MaxMind City database.
// When configured it sits in front of the HTTP providers: no network
// round trip, no timeout to manage.
type MMDBResolver struct {
	reader *geoip2.Reader
}

// OpenMMDB opens a GeoLite2/GeoIP2 City database file
func OpenMMDB(path string) (*MMDBResolver, error) {
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open geoip database: %w", err)
	}
	return &MMDBResolver{reader: reader}, nil
}

func (r *MMDBResolver) Name() string { return "mmdb" }

func (r *MMDBResolver) Resolve(_ context.Context, ip string) (*entities.GeoInfo, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("mmdb: invalid ip %q", ip)
	}

	record, err := r.reader.City(parsed)
	if err != nil {
		return nil, err
	}
	if record.Country.IsoCode == "" && len(record.City.Names) == 0 {
		return nil, fmt.Errorf("mmdb: no record for %s", ip)
	}

	geo := &entities.GeoInfo{
		Country:     record.Country.Names["en"],
		CountryCode: record.Country.IsoCode,
		City:        record.City.Names["en"],
		Latitude:    record.Location.Latitude,
		Longitude:   record.Location.Longitude,
	}
	if len(record.Subdivisions) > 0 {
		geo.Region = record.Subdivisions[0].Names["en"]
	}
	return geo, nil
}

// Close releases the underlying database file
func (r *MMDBResolver) Close() error {
	return r.reader.Close()
}
