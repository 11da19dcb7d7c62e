package service

import (
	"strings"

	"github.com/haoyu/memorybook/internal/prompts"
)

// FallbackCaption picks a deterministic neutral caption by keyword match
// against the combined vision text. Fully offline, no model call; used only
// when generation and retry both fail validation. Never returns empty.
func FallbackCaption(visionText string) string {
	lower := strings.ToLower(visionText)
	for _, fc := range prompts.FallbackCaptions {
		if strings.Contains(lower, fc.Keyword) {
			return fc.Caption
		}
	}
	return prompts.DefaultFallbackCaption
}
