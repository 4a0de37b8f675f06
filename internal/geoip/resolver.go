package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"linkpulse/internal/entities"
)

// Resolver turns an IP address into a location. Implementations own
// their timeout policy; callers treat any error as "no location".
type Resolver interface {
	Resolve(ctx context.Context, ip string) (*entities.GeoInfo, error)
	Name() string
}

// IsRoutable reports whether an IP is worth sending to a resolver.
// Loopback, private, link-local, multicast and unspecified addresses
// never have a public location; neither does garbage that fails to
// parse.
func IsRoutable(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	if parsed.IsLoopback() || parsed.IsPrivate() || parsed.IsUnspecified() {
		return false
	}
	if parsed.IsLinkLocalUnicast() || parsed.IsLinkLocalMulticast() || parsed.IsMulticast() {
		return false
	}
	return true
}

// IPAPIResolver queries ip-api.com's JSON endpoint
type IPAPIResolver struct {
	baseURL string
	client  *http.Client
}

// NewIPAPI creates the ip-api.com resolver. baseURL is normally
// "http://ip-api.com" and is injectable for tests.
func NewIPAPI(baseURL string, timeout time.Duration) *IPAPIResolver {
	return &IPAPIResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *IPAPIResolver) Name() string { return "ip-api" }

func (r *IPAPIResolver) Resolve(ctx context.Context, ip string) (*entities.GeoInfo, error) {
	endpoint := fmt.Sprintf("%s/json/%s?fields=status,message,country,countryCode,regionName,city,lat,lon,isp,org", r.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip-api: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Status      string  `json:"status"`
		Message     string  `json:"message"`
		Country     string  `json:"country"`
		CountryCode string  `json:"countryCode"`
		RegionName  string  `json:"regionName"`
		City        string  `json:"city"`
		Lat         float64 `json:"lat"`
		Lon         float64 `json:"lon"`
		ISP         string  `json:"isp"`
		Org         string  `json:"org"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("ip-api: lookup failed: %s", body.Message)
	}

	return &entities.GeoInfo{
		Country:     body.Country,
		CountryCode: body.CountryCode,
		Region:      body.RegionName,
		City:        body.City,
		Latitude:    body.Lat,
		Longitude:   body.Lon,
		ISP:         body.ISP,
		Org:         body.Org,
	}, nil
}

// IPWhoResolver queries ipwho.is, used as the fallback provider
type IPWhoResolver struct {
	baseURL string
	client  *http.Client
}

// NewIPWho creates the ipwho.is resolver. baseURL is normally
// "https://ipwho.is" and is injectable for tests.
func NewIPWho(baseURL string, timeout time.Duration) *IPWhoResolver {
	return &IPWhoResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *IPWhoResolver) Name() string { return "ipwho" }

func (r *IPWhoResolver) Resolve(ctx context.Context, ip string) (*entities.GeoInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"/"+ip, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ipwho: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Success     bool    `json:"success"`
		Message     string  `json:"message"`
		Country     string  `json:"country"`
		CountryCode string  `json:"country_code"`
		Region      string  `json:"region"`
		City        string  `json:"city"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Connection  struct {
			ISP string `json:"isp"`
			Org string `json:"org"`
		} `json:"connection"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if !body.Success {
		return nil, fmt.Errorf("ipwho: lookup failed: %s", body.Message)
	}

	return &entities.GeoInfo{
		Country:     body.Country,
		CountryCode: body.CountryCode,
		Region:      body.Region,
		City:        body.City,
		Latitude:    body.Latitude,
		Longitude:   body.Longitude,
		ISP:         body.Connection.ISP,
		Org:         body.Connection.Org,
	}, nil
}
