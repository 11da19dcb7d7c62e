package service

import (
	"strings"

	"github.com/haoyu/memorybook/internal/prompts"
)

// IsUngrounded decides whether a generated caption is consistent with the
// visual evidence and the user draft. Two independent checks; either one
// trips a reject. Pure and side-effect-free; called on the first pass and
// again after the retry.
func IsUngrounded(caption, visionText, draft string, mustKeywords []string) bool {
	lowerCaption := strings.ToLower(caption)

	// (a) the caption must carry at least one must-mention keyword
	if len(mustKeywords) > 0 {
		found := false
		for _, kw := range mustKeywords {
			if strings.Contains(lowerCaption, strings.ToLower(kw)) {
				found = true
				break
			}
		}
		if !found {
			return true
		}
	}

	// (b) fantasy vocabulary needs support in the vision text or the draft
	lowerVision := strings.ToLower(visionText)
	lowerDraft := strings.ToLower(draft)
	for _, term := range prompts.FantasyWords {
		if !containsTerm(lowerCaption, term) {
			continue
		}
		if containsTerm(lowerVision, term) || containsTerm(lowerDraft, term) {
			continue
		}
		return true
	}

	return false
}

// containsTerm matches single words on word boundaries and multi-word
// phrases as substrings. Inputs are expected lowercased.
func containsTerm(text, term string) bool {
	term = strings.ToLower(term)
	if strings.ContainsRune(term, ' ') {
		return strings.Contains(text, term)
	}
	return containsWholeWord(text, term)
}
