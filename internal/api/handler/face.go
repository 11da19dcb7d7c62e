package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/haoyu/memorybook/internal/api/middleware"
	"github.com/haoyu/memorybook/internal/domain"
	"github.com/haoyu/memorybook/internal/service"
)

// FaceHandler exposes the face service operations: registration, detection
// and recognition, plus the batch recognition used by the pipeline.
type FaceHandler struct {
	client  *service.FaceClient
	matcher *service.FaceMatcher
}

// NewFaceHandler creates a new face handler.
func NewFaceHandler(client *service.FaceClient, matcher *service.FaceMatcher) *FaceHandler {
	return &FaceHandler{client: client, matcher: matcher}
}

type faceRegisterRequest struct {
	PersonID    string `json:"personId" binding:"required"`
	Name        string `json:"name" binding:"required"`
	ImageBase64 string `json:"imageBase64" binding:"required"`
}

// Threshold is optional on both recognize shapes; zero or absent means the
// configured default distance.
type faceImageRequest struct {
	ImageBase64 string  `json:"imageBase64" binding:"required"`
	Threshold   float64 `json:"threshold"`
}

type faceBatchRequest struct {
	ImagesBase64 []string `json:"imagesBase64" binding:"required"`
	Threshold    float64  `json:"threshold"`
}

// Register handles POST /api/v1/faces/register.
func (h *FaceHandler) Register(c *gin.Context) {
	var req faceRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Field 'name' must not be blank",
		})
		return
	}

	img, err := domain.DecodeImagePayload(1, req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "imageBase64: " + err.Error(),
		})
		return
	}

	result, err := h.client.Register(c.Request.Context(), req.PersonID, req.Name, img)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Face registration failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Face registration failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// Detect handles POST /api/v1/faces/detect.
func (h *FaceHandler) Detect(c *gin.Context) {
	var req faceImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	img, err := domain.DecodeImagePayload(1, req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "imageBase64: " + err.Error(),
		})
		return
	}

	count, err := h.client.Detect(c.Request.Context(), img)
	if err != nil {
		middleware.GetLogger(c).WithError(err).Error("Face detection failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Face detection failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"facesCount": count,
	})
}

// Recognize handles POST /api/v1/faces/recognize for a single image. The
// degraded single-image path mirrors the batch contract: recognition
// failure answers ok=false with an empty face list, not an error status.
func (h *FaceHandler) Recognize(c *gin.Context) {
	var req faceImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	img, err := domain.DecodeImagePayload(1, req.ImageBase64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "imageBase64: " + err.Error(),
		})
		return
	}

	results := h.matcher.RecognizeBatchWithThreshold(c.Request.Context(), []*domain.ImagePayload{img}, req.Threshold)
	c.JSON(http.StatusOK, results[0])
}

// RecognizeBatch handles POST /api/v1/faces/recognize-batch. Images past
// the batch limit are ignored; a failed image yields ok=false for its slot.
func (h *FaceHandler) RecognizeBatch(c *gin.Context) {
	var req faceBatchRequest
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

	results := h.matcher.RecognizeBatchWithThreshold(c.Request.Context(), images, req.Threshold)
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"tags":    h.matcher.PromoteTags(results),
	})
}
