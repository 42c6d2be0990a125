package api

import (
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/debatecards/internal/ingest"
	"github.com/ppiankov/debatecards/internal/model"
)

// RegisterDocumentRoutes registers document upload, lookup and analysis routes.
func RegisterDocumentRoutes(r *gin.Engine, h *Handler) {
	docs := r.Group("/api/documents")
	docs.POST("/upload", h.handleUpload)
	docs.GET("", h.handleListDocuments)
	docs.GET("/:id", h.handleGetDocument)
	docs.POST("/:id/analyze", h.handleAnalyze)
	docs.GET("/:id/analyses", h.handleListAnalyses)
}

// analyzeRequest is the body of POST /api/documents/:id/analyze
type analyzeRequest struct {
	Prompt   string                  `json:"prompt"`
	Settings *model.AnalysisSettings `json:"settings"`
}

// handleUpload accepts multipart fields title, fileType, text, sourceUrl and file.
func (h *Handler) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.Server.MaxUploadBytes)

	if err := c.Request.ParseMultipartForm(h.config.Server.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		respondError(c, err, "Failed to upload document")
		return
	}

	upload := ingest.Upload{
		Title:     c.PostForm("title"),
		Kind:      model.SourceKind(c.PostForm("fileType")),
		Text:      c.PostForm("text"),
		SourceURL: c.PostForm("sourceUrl"),
	}

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			respondError(c, err, "Failed to upload document")
			return
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			respondError(c, err, "Failed to upload document")
			return
		}
		upload.File = data
	}

	text, err := ingest.Resolve(upload)
	if err != nil {
		respondError(c, err, "Failed to upload document")
		return
	}

	doc, err := h.store.CreateDocument(c.Request.Context(), ingest.NewDocument(upload, text))
	if err != nil {
		respondError(c, err, "Failed to upload document")
		return
	}

	log.Printf("[%s] stored document %d (%s, %d bytes)", c.GetString(requestIDKey), doc.ID, doc.SourceKind, len(doc.OriginalText))
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) handleListDocuments(c *gin.Context) {
	docs, err := h.store.ListDocuments(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list documents")
		return
	}
	c.JSON(http.StatusOK, docs)
}

func (h *Handler) handleGetDocument(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}

	doc, err := h.store.GetDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get document")
		return
	}

	cards, err := h.store.ListCards(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to get document")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"cards":    cards,
	})
}

func (h *Handler) handleAnalyze(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}

	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid request body: " + err.Error()})
		return
	}

	settings := h.config.Defaults
	if req.Settings != nil {
		settings = *req.Settings
	}

	outcome, err := h.runner.AnalyzeDocument(c.Request.Context(), id, req.Prompt, settings)
	if err != nil {
		respondError(c, err, "Failed to analyze document")
		return
	}

	log.Printf("[%s] analysis %d of document %d completed with %d cards", c.GetString(requestIDKey), outcome.Analysis.ID, id, len(outcome.Cards))
	c.JSON(http.StatusOK, outcome)
}

func (h *Handler) handleListAnalyses(c *gin.Context) {
	id, ok := parseID(c, "document")
	if !ok {
		return
	}

	analyses, err := h.store.ListAnalyses(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "Failed to list analyses")
		return
	}
	c.JSON(http.StatusOK, analyses)
}

// parseID reads the :id path parameter, writing a 400 when it is not a positive integer
func parseID(c *gin.Context, kind string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid " + kind + " id"})
		return 0, false
	}
	return id, true
}
