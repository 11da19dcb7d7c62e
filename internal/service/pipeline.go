package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/haoyu/memorybook/internal/domain"
	"github.com/haoyu/memorybook/internal/logger"
	"github.com/haoyu/memorybook/internal/prompts"
)

// captionStage names the states of the caption stage. Transitions are
// strictly sequential; each stage's input depends on the previous output.
type captionStage string

const (
	stageDescribed  captionStage = "described"
	stageGenerated  captionStage = "generated"
	stageValidated  captionStage = "validated"
	stageRetried    captionStage = "retried"
	stageNormalized captionStage = "normalized"
	stageFinalized  captionStage = "finalized"
)

// PipelineConfig holds the orchestrator knobs.
type PipelineConfig struct {
	MaxHashtags   int
	MaxDraftTags  int
	MaxFriendTags int
	MaxImages     int
}

// MetadataService orchestrates the post-metadata pipeline: vision
// aggregation, caption generation with one bounded grounding retry,
// normalization, face tagging and mood fusion.
type MetadataService struct {
	aggregator *VisionAggregator
	text       textModel
	matcher    *FaceMatcher
	mood       *MoodEstimator
	normalizer *Normalizer
	cfg        PipelineConfig
}

// NewMetadataService creates the pipeline orchestrator.
func NewMetadataService(
	aggregator *VisionAggregator,
	text textModel,
	matcher *FaceMatcher,
	mood *MoodEstimator,
	normalizer *Normalizer,
	cfg PipelineConfig,
) *MetadataService {
	if cfg.MaxHashtags <= 0 {
		cfg.MaxHashtags = 5
	}
	if cfg.MaxDraftTags <= 0 {
		cfg.MaxDraftTags = 3
	}
	if cfg.MaxFriendTags <= 0 {
		cfg.MaxFriendTags = 5
	}
	if cfg.MaxImages <= 0 {
		cfg.MaxImages = 10
	}
	return &MetadataService{
		aggregator: aggregator,
		text:       text,
		matcher:    matcher,
		mood:       mood,
		normalizer: normalizer,
		cfg:        cfg,
	}
}

// Generate runs the full pipeline for one request. It always produces a
// result: upstream transport and parse failures degrade to documented
// defaults, and the caption falls back to a deterministic neutral sentence
// when generation and retry both fail validation.
func (s *MetadataService) Generate(ctx context.Context, req *domain.GenerationRequest) *domain.PipelineResult {
	start := time.Now()

	images := req.Images
	if len(images) > s.cfg.MaxImages {
		images = images[:s.cfg.MaxImages]
	}

	// Face tagging is independent of the caption stage; run it alongside.
	tagsCh := make(chan []string, 1)
	go func() {
		tagsCh <- s.matcher.ConfirmTags(ctx, images)
	}()

	// Draft -> Described
	combined, perImage := s.aggregator.Describe(ctx, images)
	must := MustKeywordsFromFirst(perImage)
	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldStage: string(stageDescribed),
		logger.FieldCount: len(perImage),
	}).Debug("Vision context assembled")

	// Described -> Generated -> Validated -> (Retried). With no draft and
	// no vision text there is nothing to ground a caption in; any model
	// answer would be pure invention, so generation is skipped and the
	// deterministic fallback takes over at finalize.
	var out *domain.ModelOutput
	var candidate domain.CandidateCaption
	if strings.TrimSpace(req.Draft) == "" && combined == "" {
		out = &domain.ModelOutput{}
		candidate = domain.CandidateCaption{Source: domain.CaptionSourceFallback}
	} else {
		out, candidate = s.generateCaption(ctx, req.Draft, combined, must)
	}

	// -> Normalized
	normalized := s.normalizer.NormalizeCaption(candidate.Text, req.Draft)
	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldStage: string(stageNormalized),
	}).Debug("Caption normalized")

	// -> Finalized: the fallback is the only path that may override an
	// ungrounded survivor (including a kept first pass after an unparsable
	// retry).
	caption := normalized
	source := candidate.Source
	if caption == "" || IsUngrounded(caption, combined, req.Draft, must) {
		caption = FallbackCaption(combined)
		source = domain.CaptionSourceFallback
	}

	hashtags := s.normalizer.SanitizeHashtags(out.Hashtags, req.Draft, s.cfg.MaxHashtags)
	if len(hashtags) == 0 {
		hashtags = s.normalizer.DraftFallbackTags(req.Draft, s.cfg.MaxDraftTags)
	}

	confirmed := <-tagsCh
	friendTags := s.assembleFriendTags(confirmed, out.FriendTags, req.Draft)

	var firstImage *domain.ImagePayload
	if len(images) > 0 {
		firstImage = images[0]
	}
	fused := s.mood.Estimate(ctx, firstImage, caption)

	logger.With(logger.Fields{
		logger.FieldStage:      string(stageFinalized),
		logger.FieldStatus:     string(source),
		logger.FieldDurationMs: time.Since(start).Milliseconds(),
	}).Info(ctx, "Post metadata generated: mood=%s source=%s", fused.Label, fused.Source)

	return &domain.PipelineResult{
		Caption:    caption,
		Hashtags:   hashtags,
		FriendTags: friendTags,
		MoodLabel:  fused.Label,
		MoodSource: fused.Source,
		Emoji:      fused.Label.Emoji(),
	}
}

// generateCaption covers Generated -> Validated -> Retried. Exactly one
// retry; if the retry does not parse, the first-pass result is kept and
// the finalize re-check decides its fate.
func (s *MetadataService) generateCaption(ctx context.Context, draft, combined string, must []string) (*domain.ModelOutput, domain.CandidateCaption) {
	userPrompt := buildCaptionPrompt(draft, combined)

	out, err := s.callTextModel(ctx, userPrompt)
	if err != nil {
		// Transport/parse failure is never fatal: proceed with the draft.
		logger.FromContext(ctx).WithFields(logger.Fields{
			logger.FieldStage: string(stageGenerated),
		}).WithError(err).Warn("Caption generation failed, substituting draft")
		return &domain.ModelOutput{Caption: draft}, domain.CandidateCaption{Text: draft, Source: domain.CaptionSourceFallback}
	}

	if !IsUngrounded(out.Caption, combined, draft, must) {
		return out, domain.CandidateCaption{Text: out.Caption, Source: domain.CaptionSourceModel}
	}
	logger.FromContext(ctx).WithFields(logger.Fields{
		logger.FieldStage: string(stageValidated),
	}).Info("Caption failed grounding, retrying once")

	retryOut, err := s.callTextModel(ctx, userPrompt+prompts.CaptionRetryInstruction)
	if err != nil {
		logger.FromContext(ctx).WithFields(logger.Fields{
			logger.FieldStage: string(stageRetried),
		}).WithError(err).Warn("Retry unparsable, keeping first-pass caption")
		return out, domain.CandidateCaption{Text: out.Caption, Source: domain.CaptionSourceModel}
	}
	return retryOut, domain.CandidateCaption{Text: retryOut.Caption, Source: domain.CaptionSourceRetry}
}

// callTextModel performs one generation call and parses the strict-JSON
// answer, tolerating markdown fences.
func (s *MetadataService) callTextModel(ctx context.Context, userPrompt string) (*domain.ModelOutput, error) {
	raw, err := s.text.Complete(ctx, prompts.CaptionSystemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}
	block, err := ExtractJSONBlock(raw)
	if err != nil {
		return nil, err
	}
	var out domain.ModelOutput
	if err := json.Unmarshal([]byte(block), &out); err != nil {
		return nil, fmt.Errorf("failed to parse model JSON: %w", err)
	}
	return &out, nil
}

// assembleFriendTags merges face-confirmed names with model-suggested tags
// that the user literally typed. The model never invents a friend tag.
func (s *MetadataService) assembleFriendTags(confirmed, suggested []string, draft string) []string {
	merged := make([]string, 0, len(confirmed)+len(suggested))
	merged = append(merged, confirmed...)
	for _, name := range suggested {
		if strings.TrimSpace(name) == "" {
			continue
		}
		if containsFold(draft, name) {
			merged = append(merged, strings.TrimSpace(name))
		}
	}
	return s.normalizer.SanitizeFriendTags(merged, s.cfg.MaxFriendTags)
}

// buildCaptionPrompt combines the draft and the per-photo context into one
// structured user prompt.
func buildCaptionPrompt(draft, combined string) string {
	var b strings.Builder
	b.WriteString("User draft: ")
	if strings.TrimSpace(draft) == "" {
		b.WriteString("(none)")
	} else {
		b.WriteString(draft)
	}
	b.WriteString("\n\nPhoto descriptions:\n")
	if combined == "" {
		b.WriteString("(no photos)\n")
	} else {
		b.WriteString(combined)
	}
	b.WriteString("\nWrite the caption JSON now.")
	return b.String()
}
