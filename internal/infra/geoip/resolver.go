package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/oschwald/geoip2-golang"
	"golang.org/x/text/language"
)

// ErrUnavailable is returned when the resolver is not initialized.
var ErrUnavailable = errors.New("geoip resolver unavailable")

// RegionResolver maps a client IP to its country. The i18n middleware uses it
// to pick a locale when Accept-Language is absent.
type RegionResolver interface {
	Region(ip string) (language.Region, error)
}

// Resolver provides country lookups backed by a MaxMind GeoIP2 database.
type Resolver struct {
	reader *geoip2.Reader
}

// NewResolver opens the GeoIP database at the given path. An empty path yields
// a nil resolver and no error; lookups are then skipped.
func NewResolver(path string) (*Resolver, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	reader, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open database: %w", err)
	}
	return &Resolver{reader: reader}, nil
}

// CountryCode returns the ISO country code for the provided IP.
func (r *Resolver) CountryCode(ip string) (string, error) {
	if r == nil || r.reader == nil {
		return "", ErrUnavailable
	}
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return "", fmt.Errorf("geoip: invalid ip %q", ip)
	}
	record, err := r.reader.Country(parsed)
	if err != nil {
		return "", fmt.Errorf("geoip: lookup country: %w", err)
	}
	if record == nil {
		return "", nil
	}
	return record.Country.IsoCode, nil
}

// Region resolves the IP's country as a language region.
func (r *Resolver) Region(ip string) (language.Region, error) {
	code, err := r.CountryCode(ip)
	if err != nil {
		return language.Region{}, err
	}
	return ParseRegion(code)
}

// ParseRegion converts an ISO 3166 alpha-2 code into a region.
func ParseRegion(code string) (language.Region, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return language.Region{}, ErrUnavailable
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return language.Region{}, fmt.Errorf("geoip: region %q: %w", code, err)
	}
	return region, nil
}

// Close closes the underlying database reader.
func (r *Resolver) Close() error {
	if r == nil || r.reader == nil {
		return nil
	}
	return r.reader.Close()
}
