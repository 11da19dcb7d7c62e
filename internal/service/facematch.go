package service

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/haoyu/memorybook/internal/domain"
	"github.com/haoyu/memorybook/internal/logger"
)

// faceRecognizer is the slice of FaceClient the matcher needs.
type faceRecognizer interface {
	Recognize(ctx context.Context, img *domain.ImagePayload, threshold float64) ([]domain.DetectedFace, error)
}

// FaceMatcherConfig holds the recognition and tag-promotion knobs.
type FaceMatcherConfig struct {
	Threshold     float64 // max accepted distance
	MinGap        float64 // min separation between best and runner-up
	BatchLimit    int     // max images per batch recognition
	TagScanImages int     // images scanned for tag promotion
	MaxTags       int     // max promoted names per request
}

// FaceMatcher runs bounded batches of face-recognition calls and promotes
// detected faces to confirmed name tags.
type FaceMatcher struct {
	client faceRecognizer
	cfg    FaceMatcherConfig
}

// NewFaceMatcher creates a new face matcher.
func NewFaceMatcher(client faceRecognizer, cfg FaceMatcherConfig) *FaceMatcher {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 0.6
	}
	if cfg.MinGap <= 0 {
		cfg.MinGap = 0.06
	}
	if cfg.BatchLimit <= 0 {
		cfg.BatchLimit = 6
	}
	if cfg.TagScanImages <= 0 {
		cfg.TagScanImages = 3
	}
	if cfg.MaxTags <= 0 {
		cfg.MaxTags = 5
	}
	return &FaceMatcher{client: client, cfg: cfg}
}

// RecognizeBatch matches each image independently against the configured
// distance threshold.
func (m *FaceMatcher) RecognizeBatch(ctx context.Context, images []*domain.ImagePayload) []domain.ImageMatchResult {
	return m.RecognizeBatchWithThreshold(ctx, images, m.cfg.Threshold)
}

// RecognizeBatchWithThreshold matches each image independently, capped at
// the batch limit. Callers may override the distance threshold per request;
// a non-positive value falls back to the configured one. One bad image does
// not fail the batch: its result records OK=false and an empty face list.
func (m *FaceMatcher) RecognizeBatchWithThreshold(ctx context.Context, images []*domain.ImagePayload, threshold float64) []domain.ImageMatchResult {
	if threshold <= 0 {
		threshold = m.cfg.Threshold
	}
	if len(images) > m.cfg.BatchLimit {
		images = images[:m.cfg.BatchLimit]
	}

	results := make([]domain.ImageMatchResult, len(images))

	g := new(errgroup.Group)
	g.SetLimit(m.cfg.BatchLimit)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			faces, err := m.client.Recognize(ctx, img, threshold)
			if err != nil {
				logger.FromContext(ctx).WithFields(logger.Fields{
					logger.FieldImageIndex: i + 1,
				}).WithError(err).Warn("Face recognition failed for image")
				results[i] = domain.ImageMatchResult{Index: i + 1, OK: false, Faces: []domain.DetectedFace{}}
				return nil
			}
			if faces == nil {
				faces = []domain.DetectedFace{}
			}
			results[i] = domain.ImageMatchResult{Index: i + 1, OK: true, Faces: faces}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ConfirmTags recognizes the first few images and promotes confident
// matches to name tags.
func (m *FaceMatcher) ConfirmTags(ctx context.Context, images []*domain.ImagePayload) []string {
	if len(images) > m.cfg.TagScanImages {
		images = images[:m.cfg.TagScanImages]
	}
	results := m.RecognizeBatch(ctx, images)
	return m.PromoteTags(results)
}

// PromoteTags applies the threshold-and-gap rule per detected face and
// returns the deduplicated, capped list of confirmed names. A face whose
// top two candidates are too close in distance is skipped entirely rather
// than risk tagging the wrong person.
func (m *FaceMatcher) PromoteTags(results []domain.ImageMatchResult) []string {
	scan := results
	if len(scan) > m.cfg.TagScanImages {
		scan = scan[:m.cfg.TagScanImages]
	}

	tags := make([]string, 0, m.cfg.MaxTags)
	seen := make(map[string]bool)

	for _, res := range scan {
		for _, face := range res.Faces {
			name, ok := m.promoteFace(face)
			if !ok {
				continue
			}
			key := strings.ToLower(name)
			if seen[key] {
				continue
			}
			seen[key] = true
			tags = append(tags, name)
			if len(tags) == m.cfg.MaxTags {
				return tags
			}
		}
	}
	return tags
}

// promoteFace decides whether one detected face yields a confirmed name.
func (m *FaceMatcher) promoteFace(face domain.DetectedFace) (string, bool) {
	if len(face.Candidates) == 0 {
		return "", false
	}

	candidates := make([]domain.FaceMatchCandidate, len(face.Candidates))
	copy(candidates, face.Candidates)
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	best := candidates[0]
	if best.Distance > m.cfg.Threshold {
		return "", false
	}
	if len(candidates) > 1 {
		gap := candidates[1].Distance - best.Distance
		if gap < m.cfg.MinGap {
			return "", false
		}
	}
	return best.Name, true
}
