package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes registers the liveness route.
func RegisterHealthRoutes(r *gin.Engine, h *Handler) {
	r.GET("/api/health", func(c *gin.Context) {
		summarizer := h.pipeline.SummarizerName()
		if summarizer == "" {
			summarizer = "none"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"store":      h.config.Store.Driver,
			"summarizer": summarizer,
		})
	})
}
