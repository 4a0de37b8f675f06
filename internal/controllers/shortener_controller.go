package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkpulse/internal/models"
	"linkpulse/internal/service"
)

type ShortenerController struct {
	linkService service.LinkService
	baseURL     string
}

func NewShortenerController(linkService service.LinkService, baseURL string) *ShortenerController {
	return &ShortenerController{
		linkService: linkService,
		baseURL:     baseURL,
	}
}

// CreateShortLink handles POST /api/v1/shorten
func (sc *ShortenerController) CreateShortLink(c *gin.Context) {
	var req models.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	response, err := sc.linkService.CreateShortLink(&req, sc.baseURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateCode):
			c.JSON(http.StatusConflict, gin.H{"error": "Short code already exists"})
		case errors.Is(err, service.ErrInvalidCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Redirect handles GET /:shortCode - sends the visitor to the original
// URL. A temporary redirect keeps browsers from caching the hop, so
// every visit passes through the ledger.
func (sc *ShortenerController) Redirect(c *gin.Context) {
	shortCode := c.Param("shortCode")

	originalURL, err := sc.linkService.ResolveRedirect(
		shortCode,
		c.ClientIP(),
		c.Request.UserAgent(),
		c.Request.Referer(),
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLinkInactive):
			c.JSON(http.StatusGone, gin.H{"error": "This link has been deactivated"})
		default:
			c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
		}
		return
	}

	c.Redirect(http.StatusFound, originalURL)
}

// ListLinks handles GET /api/v1/links - returns all links, newest first
func (sc *ShortenerController) ListLinks(c *gin.Context) {
	c.JSON(http.StatusOK, sc.linkService.ListLinks())
}

// ToggleLink handles PATCH /api/v1/link/:id/toggle - flips the active flag
func (sc *ShortenerController) ToggleLink(c *gin.Context) {
	id := c.Param("id")

	if err := sc.linkService.ToggleLink(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link toggled successfully"})
}

// DeleteLink handles DELETE /api/v1/link/:id - removes a link and its click history
func (sc *ShortenerController) DeleteLink(c *gin.Context) {
	id := c.Param("id")

	if err := sc.linkService.DeleteLink(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Link deleted successfully"})
}
