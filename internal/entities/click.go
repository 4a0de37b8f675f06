package entities

import "time"

// Click represents a single recorded visit to a short link.
// Everything except Geo is captured at redirect time and never changes.
type Click struct {
	ID        string    `json:"id"` // UUID
	LinkID    string    `json:"link_id"`
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referer   string    `json:"referer,omitempty"`

	// Geo is nil until background enrichment completes. It is set as a
	// whole block exactly once and never cleared, so readers see either
	// no location at all or a fully resolved one.
	Geo *GeoInfo `json:"geo,omitempty"`
}

// GeoInfo holds the IP-derived location attached to a click
type GeoInfo struct {
	Country     string  `json:"country,omitempty"`
	CountryCode string  `json:"country_code,omitempty"`
	Region      string  `json:"region,omitempty"`
	City        string  `json:"city,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
	ISP         string  `json:"isp,omitempty"`
	Org         string  `json:"org,omitempty"`
}
