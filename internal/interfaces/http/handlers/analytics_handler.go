package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfswap/shelfswap/internal/application/analytics"
)

// AnalyticsHandler serves the read-only analytics views for a book.
type AnalyticsHandler struct {
	svc analytics.Service
}

// NewAnalyticsHandler constructs an AnalyticsHandler.
func NewAnalyticsHandler(svc analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// Overview handles GET /api/v1/books/:id/analytics.
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	out, err := h.svc.Overview(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Trend handles GET /api/v1/books/:id/trend.
func (h *AnalyticsHandler) Trend(c *gin.Context) {
	out, err := h.svc.Trend(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Journey handles GET /api/v1/books/:id/journey.
func (h *AnalyticsHandler) Journey(c *gin.Context) {
	out, err := h.svc.Journey(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Discussions handles GET /api/v1/books/:id/discussions. The optional
// "limit" query parameter truncates the thread page.
func (h *AnalyticsHandler) Discussions(c *gin.Context) {
	limit := queryInt(c, "limit", 0)
	out, err := h.svc.Discussions(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
