package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/haoyu/memorybook/internal/domain"
)

// FaceClient talks to the external face-embedding service. The service
// owns the reference encodings; this client only ships images and reads
// match lists back.
type FaceClient struct {
	client  *resty.Client
	baseURL string
}

// FaceClientConfig holds configuration for the face service client.
type FaceClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewFaceClient creates a new face service client.
func NewFaceClient(cfg *FaceClientConfig) *FaceClient {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://127.0.0.1:8000"
	}

	return &FaceClient{
		client:  client,
		baseURL: baseURL,
	}
}

type faceRegisterRequest struct {
	PersonID    string `json:"personId"`
	Name        string `json:"name"`
	ImageBase64 string `json:"imageBase64"`
}

type faceRegisterResponse struct {
	OK             bool   `json:"ok"`
	PersonID       string `json:"personId"`
	Name           string `json:"name"`
	EncodingsCount int    `json:"encodingsCount"`
}

type faceRecognizeRequest struct {
	ImageBase64 string  `json:"imageBase64"`
	Threshold   float64 `json:"threshold"`
}

type faceRecognizeResponse struct {
	OK    bool                  `json:"ok"`
	Faces []domain.DetectedFace `json:"faces"`
}

type faceDetectResponse struct {
	OK        bool `json:"ok"`
	FaceCount int  `json:"faceCount"`
}

// Register stores a reference image for a person and returns the updated
// encodings count.
func (c *FaceClient) Register(ctx context.Context, personID, name string, img *domain.ImagePayload) (*domain.RegisterResult, error) {
	var resp faceRegisterResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(faceRegisterRequest{PersonID: personID, Name: name, ImageBase64: img.Base64()}).
		SetResult(&resp).
		Post(c.baseURL + "/faces/register")

	if err != nil {
		return nil, fmt.Errorf("failed to call face register API: %w", err)
	}
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, fmt.Errorf("face register API returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}
	if !resp.OK {
		return nil, fmt.Errorf("face register API rejected the image")
	}

	return &domain.RegisterResult{
		PersonID:       resp.PersonID,
		Name:           resp.Name,
		EncodingsCount: resp.EncodingsCount,
	}, nil
}

// Detect returns the number of faces visible in an image.
func (c *FaceClient) Detect(ctx context.Context, img *domain.ImagePayload) (int, error) {
	var resp faceDetectResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"imageBase64": img.Base64()}).
		SetResult(&resp).
		Post(c.baseURL + "/faces/detect")

	if err != nil {
		return 0, fmt.Errorf("failed to call face detect API: %w", err)
	}
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return 0, fmt.Errorf("face detect API returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}

	return resp.FaceCount, nil
}

// Recognize matches every face in one image against the stored references.
// Candidate lists may arrive unordered; callers sort before promotion.
func (c *FaceClient) Recognize(ctx context.Context, img *domain.ImagePayload, threshold float64) ([]domain.DetectedFace, error) {
	var resp faceRecognizeResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(faceRecognizeRequest{ImageBase64: img.Base64(), Threshold: threshold}).
		SetResult(&resp).
		Post(c.baseURL + "/faces/recognize")

	if err != nil {
		return nil, fmt.Errorf("failed to call face recognize API: %w", err)
	}
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		return nil, fmt.Errorf("face recognize API returned HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}

	return resp.Faces, nil
}
