package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/haoyu/memorybook/internal/domain"
	"github.com/haoyu/memorybook/internal/service"
)

// MetadataHandler handles post-metadata generation endpoints.
type MetadataHandler struct {
	pipeline *service.MetadataService
}

// NewMetadataHandler creates a new metadata handler.
func NewMetadataHandler(pipeline *service.MetadataService) *MetadataHandler {
	return &MetadataHandler{pipeline: pipeline}
}

// metadataRequest is the wire shape of POST /api/v1/posts/metadata.
// Both fields are optional; an empty request is still served.
type metadataRequest struct {
	Draft        string   `json:"draft"`
	ImagesBase64 []string `json:"imagesBase64"`
}

// GenerateMetadata handles POST /api/v1/posts/metadata. The only client
// errors are a malformed body and undecodable image data; everything past
// decoding degrades inside the pipeline instead of failing the request.
func (h *MetadataHandler) GenerateMetadata(c *gin.Context) {
	var req metadataRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	images, err := decodeImages(req.ImagesBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": err.Error(),
		})
		return
	}

	result := h.pipeline.Generate(c.Request.Context(), &domain.GenerationRequest{
		Draft:  req.Draft,
		Images: images,
	})

	c.JSON(http.StatusOK, result)
}

// decodeImages decodes every entry, naming the offending field position on
// failure. Indices are 1-based in both payloads and error messages.
func decodeImages(encoded []string) ([]*domain.ImagePayload, error) {
	images := make([]*domain.ImagePayload, 0, len(encoded))
	for i, enc := range encoded {
		img, err := domain.DecodeImagePayload(i+1, enc)
		if err != nil {
			return nil, fmt.Errorf("imagesBase64[%d]: %w", i, err)
		}
		images = append(images, img)
	}
	return images, nil
}
