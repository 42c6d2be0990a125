package api

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/debatecards/internal/model"
)

// respondError maps the error taxonomy onto status codes. The response body
// is always {"message": ...}; fallback is used for unexpected errors.
func respondError(c *gin.Context, err error, fallback string) {
	var (
		inputErr    *model.InputError
		notFoundErr *model.NotFoundError
		upstreamErr *model.UpstreamError
		tooLarge    *http.MaxBytesError
	)

	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, gin.H{"message": inputErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"message": capitalize(notFoundErr.Kind) + " not found"})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.As(err, &upstreamErr):
		log.Printf("[%s] %s: %v", c.GetString(requestIDKey), fallback, err)
		c.JSON(http.StatusBadGateway, gin.H{"message": fallback + ": " + upstreamErr.Err.Error()})
	case errors.As(err, &tooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Upload exceeds the size limit"})
	default:
		log.Printf("[%s] %s: %v", c.GetString(requestIDKey), fallback, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
