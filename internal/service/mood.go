package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/haoyu/memorybook/internal/domain"
	"github.com/haoyu/memorybook/internal/logger"
	"github.com/haoyu/memorybook/internal/prompts"
)

// textModel is the slice of TextGenService the mood estimator and the
// pipeline need.
type textModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// MoodFusionConfig holds the confidence floors for fusing the two branches.
type MoodFusionConfig struct {
	AgreementFloor float64
	SingleFloor    float64
	AgreementBoost float64
}

// MoodEstimator runs the face-mood and caption-mood classifiers
// concurrently and fuses the two estimates into one labeled mood.
type MoodEstimator struct {
	vision visionModel
	text   textModel
	cfg    MoodFusionConfig
}

// NewMoodEstimator creates a new mood estimator.
func NewMoodEstimator(vision visionModel, text textModel, cfg MoodFusionConfig) *MoodEstimator {
	if cfg.AgreementFloor <= 0 {
		cfg.AgreementFloor = 0.45
	}
	if cfg.SingleFloor <= 0 {
		cfg.SingleFloor = 0.35
	}
	if cfg.AgreementBoost <= 0 {
		cfg.AgreementBoost = 0.1
	}
	return &MoodEstimator{vision: vision, text: text, cfg: cfg}
}

// Estimate runs both branches and fuses them. firstImage may be nil (no
// images on the post); caption may be empty. A branch failure degrades to
// (neutral, 0) for that branch, never to a hard failure.
func (e *MoodEstimator) Estimate(ctx context.Context, firstImage *domain.ImagePayload, caption string) domain.FusedMood {
	faceMood := domain.NeutralMood()
	captionMood := domain.NeutralMood()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		if firstImage == nil {
			return
		}
		mood, err := e.classifyFace(ctx, firstImage)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Face mood classification failed, using neutral")
			return
		}
		faceMood = mood
	}()

	go func() {
		defer wg.Done()
		if caption == "" {
			return
		}
		mood, err := e.classifyCaption(ctx, caption)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Warn("Caption mood classification failed, using neutral")
			return
		}
		captionMood = mood
	}()

	wg.Wait()

	return FuseMoods(faceMood, captionMood, e.cfg)
}

func (e *MoodEstimator) classifyFace(ctx context.Context, img *domain.ImagePayload) (domain.MoodAssessment, error) {
	content, err := e.vision.Complete(ctx, prompts.FaceMoodSystemPrompt, prompts.FaceMoodUserPrompt, img)
	if err != nil {
		return domain.NeutralMood(), err
	}
	return parseMood(content)
}

func (e *MoodEstimator) classifyCaption(ctx context.Context, caption string) (domain.MoodAssessment, error) {
	content, err := e.text.Complete(ctx, prompts.CaptionMoodSystemPrompt, caption)
	if err != nil {
		return domain.NeutralMood(), err
	}
	return parseMood(content)
}

// parseMood extracts the classifier JSON and forces it back into the label
// and confidence invariants.
func parseMood(content string) (domain.MoodAssessment, error) {
	block, err := ExtractJSONBlock(content)
	if err != nil {
		return domain.NeutralMood(), err
	}
	var mood domain.MoodAssessment
	if err := json.Unmarshal([]byte(block), &mood); err != nil {
		return domain.NeutralMood(), fmt.Errorf("failed to parse mood JSON: %w", err)
	}
	return mood.Clamp(), nil
}

// FuseMoods combines the two branch estimates. Pure. Evaluated in order:
// agreement above the floor beats either branch alone; otherwise the more
// confident branch wins if it clears the lower floor; otherwise neutral
// with the larger raw confidence, never silently zeroed.
func FuseMoods(face, caption domain.MoodAssessment, cfg MoodFusionConfig) domain.FusedMood {
	face = face.Clamp()
	caption = caption.Clamp()

	if face.Label == caption.Label &&
		face.Confidence >= cfg.AgreementFloor && caption.Confidence >= cfg.AgreementFloor {
		conf := (face.Confidence+caption.Confidence)/2 + cfg.AgreementBoost
		if conf > 1 {
			conf = 1
		}
		return domain.FusedMood{Label: face.Label, Source: domain.MoodSourceBoth, Confidence: conf}
	}

	stronger, source := face, domain.MoodSourceFace
	if caption.Confidence > face.Confidence {
		stronger, source = caption, domain.MoodSourceCaption
	}
	if stronger.Confidence >= cfg.SingleFloor {
		return domain.FusedMood{Label: stronger.Label, Source: source, Confidence: stronger.Confidence}
	}

	return domain.FusedMood{
		Label:      domain.MoodNeutral,
		Source:     domain.MoodSourceUnknown,
		Confidence: stronger.Confidence,
	}
}
