package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haoyu/memorybook/internal/api"
	"github.com/haoyu/memorybook/internal/config"
	"github.com/haoyu/memorybook/internal/logger"
	"github.com/haoyu/memorybook/internal/service"
)

func main() {
	// Load configuration
	// Support CONFIG_PATH environment variable for production deployments
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger.SetDefaultLogger(logger.NewDefault())
	defer logger.Sync()

	// Upstream model and face-service clients
	textService := service.NewTextGenService(&service.TextGenConfig{
		Model:       cfg.TextGen.Model,
		APIKey:      cfg.TextGen.APIKey,
		BaseURL:     cfg.TextGen.BaseURL,
		Temperature: cfg.TextGen.Temperature,
		MaxTokens:   cfg.TextGen.MaxTokens,
		Timeout:     cfg.TextGen.Timeout,
	})

	visionService := service.NewVisionService(&service.VisionConfig{
		Model:     cfg.Vision.Model,
		APIKey:    cfg.Vision.APIKey,
		BaseURL:   cfg.Vision.BaseURL,
		MaxTokens: cfg.Vision.MaxTokens,
		Timeout:   cfg.Vision.Timeout,
	})

	faceClient := service.NewFaceClient(&service.FaceClientConfig{
		BaseURL: cfg.Face.BaseURL,
		Timeout: cfg.Face.Timeout,
	})

	// Pipeline components
	aggregator := service.NewVisionAggregator(visionService, cfg.Pipeline.DescribeWorkers)
	normalizer := service.NewNormalizer(cfg.Pipeline.MaxCaptionWords)

	faceMatcher := service.NewFaceMatcher(faceClient, service.FaceMatcherConfig{
		Threshold:     cfg.Face.Threshold,
		MinGap:        cfg.Face.MinGap,
		BatchLimit:    cfg.Face.BatchLimit,
		TagScanImages: cfg.Face.TagScanImages,
		MaxTags:       cfg.Face.MaxTags,
	})

	moodEstimator := service.NewMoodEstimator(visionService, textService, service.MoodFusionConfig{
		AgreementFloor: cfg.Mood.AgreementFloor,
		SingleFloor:    cfg.Mood.SingleFloor,
		AgreementBoost: cfg.Mood.AgreementBoost,
	})

	pipeline := service.NewMetadataService(
		aggregator,
		textService,
		faceMatcher,
		moodEstimator,
		normalizer,
		service.PipelineConfig{
			MaxHashtags:   cfg.Pipeline.MaxHashtags,
			MaxDraftTags:  cfg.Pipeline.MaxDraftTags,
			MaxFriendTags: cfg.Face.MaxTags,
			MaxImages:     cfg.Pipeline.MaxImagesPerPost,
		},
	)

	// Setup router
	router := api.SetupRouter(pipeline, faceClient, faceMatcher, cfg)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		logger.GetDefault().WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.GetDefault().WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.GetDefault().Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.GetDefault().WithError(err).Fatal("Server forced to shutdown")
	}

	logger.GetDefault().Info("Server exited")
}
