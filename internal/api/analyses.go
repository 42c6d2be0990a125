package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterAnalysisRoutes registers analysis lookup routes.
func RegisterAnalysisRoutes(r *gin.Engine, h *Handler) {
	r.GET("/api/analyses/:id", h.handleGetAnalysis)
}

func (h *Handler) handleGetAnalysis(c *gin.Context) {
	id, ok := parseID(c, "analysis")
	if !ok {
		return
	}

	analysis, err := h.store.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get analysis")
		return
	}
	c.JSON(http.StatusOK, analysis)
}
