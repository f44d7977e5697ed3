package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"genie/internal/service"
)

// ListingHandler serves property details for navigation from chat cards
type ListingHandler struct {
	sessions *service.SessionService
}

// NewListingHandler creates a new listing handler
func NewListingHandler(sessions *service.SessionService) *ListingHandler {
	return &ListingHandler{sessions: sessions}
}

// Get handles GET /api/v1/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	property, err := h.sessions.Property(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"property":    property,
		"price_label": property.PriceLabel(),
	})
}
