package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"linkpulse/internal/service"
)

type QRCodeController struct {
	linkService service.LinkService
	baseURL     string
}

func NewQRCodeController(linkService service.LinkService, baseURL string) *QRCodeController {
	return &QRCodeController{
		linkService: linkService,
		baseURL:     baseURL,
	}
}

// GenerateQRCode handles GET /api/v1/qrcode/:shortCode - renders a QR
// code for a registered short link
func (qc *QRCodeController) GenerateQRCode(c *gin.Context) {
	shortCode := c.Param("shortCode")
	if shortCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Short code is required"})
		return
	}

	// Only mint codes for links that actually exist
	if _, err := qc.linkService.GetLinkByCode(shortCode); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
		return
	}

	shortURL := qc.baseURL + "/" + shortCode

	qrCode, err := qrcode.New(shortURL, qrcode.Medium)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code"})
		return
	}

	pngData, err := qrCode.PNG(256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate QR code image"})
		return
	}

	c.Header("Content-Type", "image/png")
	c.Header("Content-Disposition", "inline; filename=qrcode.png")
	c.Data(http.StatusOK, "image/png", pngData)
}
