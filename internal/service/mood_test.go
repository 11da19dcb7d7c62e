package service

import (
	"math"
	"testing"

	"github.com/haoyu/memorybook/internal/domain"
)

func TestFuseMoods(t *testing.T) {
	cfg := MoodFusionConfig{AgreementFloor: 0.45, SingleFloor: 0.35, AgreementBoost: 0.1}

	tests := []struct {
		name       string
		face       domain.MoodAssessment
		caption    domain.MoodAssessment
		wantLabel  domain.MoodLabel
		wantSource domain.MoodSource
		wantConf   float64
	}{
		{
			name:       "agreement boosts the average",
			face:       domain.MoodAssessment{Label: domain.MoodHappy, Confidence: 0.6},
			caption:    domain.MoodAssessment{Label: domain.MoodHappy, Confidence: 0.5},
			wantLabel:  domain.MoodHappy,
			wantSource: domain.MoodSourceBoth,
			wantConf:   0.65,
		},
		{
			name:       "boost is capped at one",
			face:       domain.MoodAssessment{Label: domain.MoodHappy, Confidence: 1.0},
			caption:    domain.MoodAssessment{Label: domain.MoodHappy, Confidence: 0.95},
			wantLabel:  domain.MoodHappy,
			wantSource: domain.MoodSourceBoth,
			wantConf:   1.0,
		},
		{
			name:       "stronger single branch wins",
			face:       domain.MoodAssessment{Label: domain.MoodTired, Confidence: 0.5},
			caption:    domain.MoodAssessment{Label: domain.MoodHappy, Confidence: 0.3},
			wantLabel:  domain.MoodTired,
			wantSource: domain.MoodSourceFace,
			wantConf:   0.5,
		},
		{
			name:       "caption branch wins when more confident",
			face:       domain.MoodAssessment{Label: domain.MoodTired, Confidence: 0.2},
			caption:    domain.MoodAssessment{Label: domain.MoodHappy, Confidence: 0.4},
			wantLabel:  domain.MoodHappy,
			wantSource: domain.MoodSourceCaption,
			wantConf:   0.4,
		},
		{
			name:       "both weak yields neutral unknown with raw confidence",
			face:       domain.MoodAssessment{Label: domain.MoodSad, Confidence: 0.2},
			caption:    domain.MoodAssessment{Label: domain.MoodNeutral, Confidence: 0.1},
			wantLabel:  domain.MoodNeutral,
			wantSource: domain.MoodSourceUnknown,
			wantConf:   0.2,
		},
		{
			name:       "agreement below the floor falls through to single branch",
			face:       domain.MoodAssessment{Label: domain.MoodHappy, Confidence: 0.4},
			caption:    domain.MoodAssessment{Label: domain.MoodHappy, Confidence: 0.3},
			wantLabel:  domain.MoodHappy,
			wantSource: domain.MoodSourceFace,
			wantConf:   0.4,
		},
		{
			name:       "invalid label is clamped to neutral before fusing",
			face:       domain.MoodAssessment{Label: "ecstatic", Confidence: 0.9},
			caption:    domain.MoodAssessment{Label: domain.MoodNeutral, Confidence: 0.9},
			wantLabel:  domain.MoodNeutral,
			wantSource: domain.MoodSourceBoth,
			wantConf:   1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FuseMoods(tt.face, tt.caption, cfg)
			if got.Label != tt.wantLabel {
				t.Errorf("label = %q, want %q", got.Label, tt.wantLabel)
			}
			if got.Source != tt.wantSource {
				t.Errorf("source = %q, want %q", got.Source, tt.wantSource)
			}
			if math.Abs(got.Confidence-tt.wantConf) > 1e-9 {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestParseMood(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantLabel domain.MoodLabel
		wantConf  float64
		wantErr   bool
	}{
		{
			name:      "plain JSON",
			content:   `{"label": "happy", "confidence": 0.8}`,
			wantLabel: domain.MoodHappy,
			wantConf:  0.8,
		},
		{
			name:      "fenced JSON",
			content:   "```json\n{\"label\": \"sad\", \"confidence\": 0.4}\n```",
			wantLabel: domain.MoodSad,
			wantConf:  0.4,
		},
		{
			name:      "unknown label clamped to neutral",
			content:   `{"label": "euphoric", "confidence": 0.9}`,
			wantLabel: domain.MoodNeutral,
			wantConf:  0.9,
		},
		{
			name:      "confidence clamped into range",
			content:   `{"label": "angry", "confidence": 1.7}`,
			wantLabel: domain.MoodAngry,
			wantConf:  1.0,
		},
		{
			name:    "no JSON",
			content: "neutral, probably",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMood(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Label != tt.wantLabel || math.Abs(got.Confidence-tt.wantConf) > 1e-9 {
				t.Errorf("parseMood = %+v, want label %q conf %v", got, tt.wantLabel, tt.wantConf)
			}
		})
	}
}
