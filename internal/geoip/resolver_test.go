package geoip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRoutable(t *testing.T) {
	tests := []struct {
		name     string
		ip       string
		routable bool
	}{
		{"public ipv4", "8.8.8.8", true},
		{"public ipv6", "2001:4860:4860::8888", true},
		{"loopback", "127.0.0.1", false},
		{"ipv6 loopback", "::1", false},
		{"private 10", "10.1.2.3", false},
		{"private 192.168", "192.168.1.10", false},
		{"private 172.16", "172.16.0.1", false},
		{"link local", "169.254.10.10", false},
		{"unspecified", "0.0.0.0", false},
		{"multicast", "224.0.0.1", false},
		{"garbage", "not-an-ip", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.routable, IsRoutable(tt.ip))
		})
	}
}

func TestIPAPIResolver_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/8.8.8.8", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "success",
			"country": "United States",
			"countryCode": "US",
			"regionName": "Virginia",
			"city": "Ashburn",
			"lat": 39.03,
			"lon": -77.5,
			"isp": "Google LLC",
			"org": "Google Public DNS"
		}`))
	}))
	defer srv.Close()

	resolver := NewIPAPI(srv.URL, time.Second)
	geo, err := resolver.Resolve(context.Background(), "8.8.8.8")
	require.NoError(t, err)

	assert.Equal(t, "United States", geo.Country)
	assert.Equal(t, "US", geo.CountryCode)
	assert.Equal(t, "Virginia", geo.Region)
	assert.Equal(t, "Ashburn", geo.City)
	assert.InDelta(t, 39.03, geo.Latitude, 0.001)
	assert.InDelta(t, -77.5, geo.Longitude, 0.001)
	assert.Equal(t, "Google LLC", geo.ISP)
	assert.Equal(t, "Google Public DNS", geo.Org)
}

func TestIPAPIResolver_ProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// ip-api reports failures with HTTP 200 and a status field
		w.Write([]byte(`{"status": "fail", "message": "reserved range"}`))
	}))
	defer srv.Close()

	resolver := NewIPAPI(srv.URL, time.Second)
	geo, err := resolver.Resolve(context.Background(), "203.0.113.7")
	assert.Error(t, err)
	assert.Nil(t, geo)
}

func TestIPAPIResolver_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	resolver := NewIPAPI(srv.URL, time.Second)
	_, err := resolver.Resolve(context.Background(), "8.8.8.8")
	assert.Error(t, err)
}

func TestIPWhoResolver_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1.1.1.1", r.URL.Path)
		w.Write([]byte(`{
			"success": true,
			"country": "Australia",
			"country_code": "AU",
			"region": "Queensland",
			"city": "Brisbane",
			"latitude": -27.47,
			"longitude": 153.03,
			"connection": {"isp": "Cloudflare, Inc.", "org": "APNIC"}
		}`))
	}))
	defer srv.Close()

	resolver := NewIPWho(srv.URL, time.Second)
	geo, err := resolver.Resolve(context.Background(), "1.1.1.1")
	require.NoError(t, err)

	assert.Equal(t, "Australia", geo.Country)
	assert.Equal(t, "AU", geo.CountryCode)
	assert.Equal(t, "Brisbane", geo.City)
	assert.Equal(t, "Cloudflare, Inc.", geo.ISP)
	assert.Equal(t, "APNIC", geo.Org)
}

func TestIPWhoResolver_ProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "invalid ip"}`))
	}))
	defer srv.Close()

	resolver := NewIPWho(srv.URL, time.Second)
	_, err := resolver.Resolve(context.Background(), "bogus")
	assert.Error(t, err)
}

func TestResolver_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	resolver := NewIPAPI(srv.URL, 20*time.Millisecond)
	_, err := resolver.Resolve(context.Background(), "8.8.8.8")
	assert.Error(t, err)
}
