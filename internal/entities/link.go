package entities

import "time"

// Link represents a shortened link
type Link struct {
	ID          string    `json:"id"` // UUID
	ShortCode   string    `json:"short_code"`
	OriginalURL string    `json:"original_url"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	ClickCount  int       `json:"click_count"` // maintained by the ledger, one increment per appended click
	IsActive    bool      `json:"is_active"`   // inactive links stop redirecting but keep their history
	CreatedAt   time.Time `json:"created_at"`
}
