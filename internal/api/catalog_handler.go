package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"instavibe/internal/carousel"
	"instavibe/internal/layout"
	"instavibe/internal/style"
)

// CatalogHandler serves the static editor catalogues: vibes, fonts,
// gradient presets, aspect ratios and text anchors.
type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// GetCatalog returns every selectable option in one payload.
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"vibes": []carousel.Vibe{
			carousel.VibeMinimalist,
			carousel.VibeBold,
			carousel.VibeRetro,
			carousel.VibeNeon,
			carousel.VibePastel,
			carousel.VibeProfessional,
			carousel.VibeDarkMode,
		},
		"aspectRatios": []carousel.AspectRatio{
			carousel.RatioSquare,
			carousel.RatioPortrait,
			carousel.RatioStory,
		},
		"anchors":         layout.Anchors(),
		"fonts":           style.FontOptions,
		"gradientPresets": style.GradientPresets,
		"defaultStyle":    style.Default(),
	})
}
