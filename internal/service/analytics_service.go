package service

import (
	"time"

	"linkpulse/internal/analytics"
	"linkpulse/internal/models"
	"linkpulse/internal/repository"
)

// AnalyticsService defines the read-side aggregation operations
type AnalyticsService interface {
	GetLinkAnalytics(linkID string) (*models.AnalyticsResponse, error)
	GetDashboardStats() *models.DashboardResponse
}

type analyticsService struct {
	links  repository.LinkRepository
	clicks repository.ClickRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(links repository.LinkRepository, clicks repository.ClickRepository) AnalyticsService {
	return &analyticsService{
		links:  links,
		clicks: clicks,
	}
}

// GetLinkAnalytics recomputes the full analytics bundle for one link
// from its click history. Nothing is cached; a click enriched between
// two calls simply shows up in the second one.
func (s *analyticsService) GetLinkAnalytics(linkID string) (*models.AnalyticsResponse, error) {
	link := s.links.FindByID(linkID)
	if link == nil {
		return nil, ErrNotFound
	}

	clicks := s.clicks.ClicksForLink(linkID)

	return &models.AnalyticsResponse{
		Link:         *link,
		Clicks:       clicks,
		TotalClicks:  len(clicks),
		UniqueClicks: s.clicks.UniqueVisitorCount(linkID),
		TopCountries: analytics.GroupByCountry(clicks),
		TopCities:    analytics.GroupByCity(clicks),
		ClicksByDate: analytics.ClicksByDate(clicks, time.Now().UTC()),
		TopReferers:  analytics.TopReferers(clicks),
	}, nil
}

// GetDashboardStats summarizes the whole registry. The top performer
// is the link with the most clicks; equal counts go to the earlier
// created link so the result is deterministic.
func (s *analyticsService) GetDashboardStats() *models.DashboardResponse {
	links := s.links.ListLinks()

	stats := &models.DashboardResponse{
		TotalLinks: len(links),
	}

	for i := range links {
		link := &links[i]
		stats.TotalClicks += link.ClickCount
		if link.IsActive {
			stats.ActiveLinks++
		}
		top := stats.TopPerformingLink
		if top == nil || link.ClickCount > top.ClickCount ||
			(link.ClickCount == top.ClickCount && link.CreatedAt.Before(top.CreatedAt)) {
			stats.TopPerformingLink = link
		}
	}

	return stats
}
