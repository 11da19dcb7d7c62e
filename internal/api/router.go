package api

import (
	"github.com/gin-gonic/gin"
	"github.com/haoyu/memorybook/internal/api/handler"
	"github.com/haoyu/memorybook/internal/api/middleware"
	"github.com/haoyu/memorybook/internal/config"
	"github.com/haoyu/memorybook/internal/service"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	pipeline *service.MetadataService,
	faceClient *service.FaceClient,
	faceMatcher *service.FaceMatcher,
	cfg *config.Config,
) *gin.Engine {
	// Set Gin mode
	switch cfg.Server.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	metadataHandler := handler.NewMetadataHandler(pipeline)
	faceHandler := handler.NewFaceHandler(faceClient, faceMatcher)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Post metadata
		v1.POST("/posts/metadata", metadataHandler.GenerateMetadata)

		// Faces
		v1.POST("/faces/register", faceHandler.Register)
		v1.POST("/faces/detect", faceHandler.Detect)
		v1.POST("/faces/recognize", faceHandler.Recognize)
		v1.POST("/faces/recognize-batch", faceHandler.RecognizeBatch)
	}

	return r
}
