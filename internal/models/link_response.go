package models

import (
	"time"

	"linkpulse/internal/analytics"
	"linkpulse/internal/entities"
)

// CreateLinkResponse represents the response after shortening a URL
type CreateLinkResponse struct {
	ID          string    `json:"id"`
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	ShortURL    string    `json:"short_url"` // Full short URL (base URL + short code)
	CreatedAt   time.Time `json:"created_at"`
}

// AnalyticsResponse bundles everything the analytics view needs for
// one link in a single payload
type AnalyticsResponse struct {
	Link         entities.Link          `json:"link"`
	Clicks       []entities.Click       `json:"clicks"`
	TotalClicks  int                    `json:"total_clicks"`
	UniqueClicks int                    `json:"unique_clicks"`
	TopCountries []analytics.LabelCount `json:"top_countries"`
	TopCities    []analytics.LabelCount `json:"top_cities"`
	ClicksByDate []analytics.DateCount  `json:"clicks_by_date"`
	TopReferers  []analytics.LabelCount `json:"top_referers"`
}

// DashboardResponse summarizes the whole registry.
// TopPerformingLink breaks click-count ties by earliest creation time.
type DashboardResponse struct {
	TotalLinks        int            `json:"total_links"`
	TotalClicks       int            `json:"total_clicks"`
	ActiveLinks       int            `json:"active_links"`
	TopPerformingLink *entities.Link `json:"top_performing_link,omitempty"`
}
