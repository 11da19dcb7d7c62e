package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/haoyu/memorybook/internal/domain"
	"github.com/haoyu/memorybook/internal/prompts"
)

// VisionService calls the vision-description model, one image per request.
type VisionService struct {
	client    *resty.Client
	model     string
	endpoint  string
	maxTokens int
}

// VisionConfig holds configuration for the vision service.
type VisionConfig struct {
	Model     string
	APIKey    string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// NewVisionService creates a new vision service.
func NewVisionService(cfg *VisionConfig) *VisionService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 200
	}

	return &VisionService{
		client:    client,
		model:     cfg.Model,
		endpoint:  baseURL + "/chat/completions",
		maxTokens: maxTokens,
	}
}

// GetModel returns the model name being used.
func (s *VisionService) GetModel() string {
	return s.model
}

// Complete sends a system/user prompt pair with one image and returns the
// raw model text.
func (s *VisionService) Complete(ctx context.Context, system, user string, img *domain.ImagePayload) (string, error) {
	req := openAIRequest{
		Model: s.model,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{
				Role: "user",
				Content: []interface{}{
					openAITextContent{Type: "text", Text: user},
					openAIImageContent{
						Type: "image_url",
						ImageURL: openAIImageURL{
							URL:    img.DataURL(),
							Detail: "auto",
						},
					},
				},
			},
		},
		MaxTokens: s.maxTokens,
	}

	var resp openAIResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		return "", fmt.Errorf("failed to call vision API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return "", fmt.Errorf("vision API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("vision API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from vision API (status: %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}

// Describe generates a 1-2 sentence factual description for one image.
func (s *VisionService) Describe(ctx context.Context, img *domain.ImagePayload) (string, error) {
	return s.Complete(ctx, prompts.VisionSystemPrompt, prompts.VisionUserPrompt, img)
}
