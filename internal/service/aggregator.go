package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/haoyu/memorybook/internal/domain"
	"github.com/haoyu/memorybook/internal/logger"
	"github.com/haoyu/memorybook/internal/prompts"
)

// visionModel is the slice of VisionService the aggregator needs.
type visionModel interface {
	Complete(ctx context.Context, system, user string, img *domain.ImagePayload) (string, error)
}

// VisionAggregator issues one description call per image and merges the
// results into a single grounding context for the text model.
type VisionAggregator struct {
	vision  visionModel
	workers int
}

// NewVisionAggregator creates a new vision aggregator with a bounded
// worker count for the per-image fan-out.
func NewVisionAggregator(vision visionModel, workers int) *VisionAggregator {
	if workers <= 0 {
		workers = 4
	}
	return &VisionAggregator{vision: vision, workers: workers}
}

// Describe runs one description call per image and returns the combined
// context plus the per-image descriptions in request order. A failed image
// degrades to an empty description; partial vision data is strictly better
// than none, so the batch never fails.
func (a *VisionAggregator) Describe(ctx context.Context, images []*domain.ImagePayload) (string, []domain.ImageDescription) {
	if len(images) == 0 {
		return "", nil
	}

	perImage := make([]domain.ImageDescription, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, img := range images {
		i, img := i, img
		perImage[i] = domain.ImageDescription{Index: i + 1}
		g.Go(func() error {
			text, err := a.vision.Complete(gctx, prompts.VisionSystemPrompt, prompts.VisionUserPrompt, img)
			if err != nil {
				logger.FromContext(ctx).WithFields(logger.Fields{
					logger.FieldImageIndex: i + 1,
				}).WithError(err).Warn("Image description failed, degrading to empty")
				return nil
			}
			perImage[i].Text = strings.TrimSpace(text)
			return nil
		})
	}
	_ = g.Wait()

	return combineDescriptions(perImage), perImage
}

// combineDescriptions builds the line-oriented grounding context. Order is
// preserved so the text model can reason per photo. The brand token is
// stripped unconditionally, line by line so the layout survives.
func combineDescriptions(perImage []domain.ImageDescription) string {
	var b strings.Builder
	for _, d := range perImage {
		text := stripBrandToken(d.Text)
		if text == "" {
			text = "(unclear)"
		}
		fmt.Fprintf(&b, "Photo %d: %s\n", d.Index, text)
	}
	return b.String()
}

// stripBrandToken removes the product name regardless of casing. Policy:
// the token never surfaces in model-visible context or output.
func stripBrandToken(text string) string {
	return removeWholeWords(text, []string{prompts.BrandToken})
}

// MustKeywordsFromFirst scans only the first image's description against
// the fixed vocabulary and returns at most one lowercase token. Later
// photos never force an object into a caption describing the whole post.
func MustKeywordsFromFirst(perImage []domain.ImageDescription) []string {
	if len(perImage) == 0 {
		return nil
	}
	first := strings.ToLower(perImage[0].Text)
	for _, kw := range prompts.MustKeywordVocabulary {
		if containsWholeWord(first, kw) {
			return []string{kw}
		}
	}
	return nil
}
