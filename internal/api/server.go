// Package api exposes documents, analyses and cards over HTTP.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/ppiankov/debatecards/internal/model"
	"github.com/ppiankov/debatecards/internal/pipeline"
	"github.com/ppiankov/debatecards/internal/store"
)

// Handler holds the collaborators shared by all routes
type Handler struct {
	store    store.Store
	runner   *pipeline.Runner
	pipeline *pipeline.Pipeline
	config   *model.Config
}

// NewHandler creates a handler
func NewHandler(s store.Store, p *pipeline.Pipeline, cfg *model.Config) *Handler {
	return &Handler{
		store:    s,
		runner:   pipeline.NewRunner(p, s),
		pipeline: p,
		config:   cfg,
	}
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(RequestID(), CORS(h.config.Server.AllowedOrigin))
	r.MaxMultipartMemory = h.config.Server.MaxUploadBytes

	RegisterDocumentRoutes(r, h)
	RegisterAnalysisRoutes(r, h)
	RegisterHealthRoutes(r, h)
	return r
}
