package models

// CreateLinkRequest represents the request body for shortening a URL
type CreateLinkRequest struct {
	URL         string  `json:"url" binding:"required,url"` // Gin validation: required and must be a valid URL
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	ShortCode   *string `json:"short_code,omitempty"` // Optional custom short code
}
