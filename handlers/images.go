package handlers

import (
	"context"
	"errors"
	"net/http"

	"echochats/images"

	"github.com/gin-gonic/gin"
)

// GetImage streams a picture kept by an images.Opener (GridFS).
func (h *Handler) GetImage(c *gin.Context) {
	opener, ok := h.Images.(images.Opener)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), uploadTimeout)
	defer cancel()

	rc, contentType, err := opener.Open(ctx, c.Param("id"))
	if errors.Is(err, images.ErrImageNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	if err != nil {
		h.apiError(c, err, "Failed to read image")
		return
	}
	defer rc.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
