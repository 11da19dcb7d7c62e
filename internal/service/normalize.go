package service

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/haoyu/memorybook/internal/prompts"
)

// Normalizer applies the fixed-order caption cleanup passes and the
// hashtag/friend-tag sanitization rules. All methods are pure.
type Normalizer struct {
	MaxWords int
}

// NewNormalizer creates a normalizer with the configured word cap.
func NewNormalizer(maxWords int) *Normalizer {
	if maxWords <= 0 {
		maxWords = 14
	}
	return &Normalizer{MaxWords: maxWords}
}

// NormalizeCaption runs the passes in fixed order. The order matters: word
// removal happens before the length clamp so the clamp sees the final text.
func (n *Normalizer) NormalizeCaption(caption, draft string) string {
	text := caption

	// 1. banned background words
	text = removeWholeWords(text, prompts.BannedBackgroundWords)

	// 2. banned activity phrases, unless the draft carries the exact phrase
	for _, phrase := range prompts.BannedActivityPhrases {
		if containsFold(draft, phrase) {
			continue
		}
		text = removePhrase(text, phrase)
	}

	// 3. brand token, unless the user typed it
	if !containsFold(draft, prompts.BrandToken) {
		text = removeWholeWords(text, []string{prompts.BrandToken})
	}

	// 4. animal words become the stand-in substitute for plush/toy posts
	if draftIndicatesStandIn(draft) {
		text = replaceWholeWords(text, prompts.AnimalWords, prompts.StandInSubstitute)
	}

	// 5. leading generic intros
	text = stripGenericIntro(text)

	// 6. pronouns, whole-word
	text = removeWholeWords(text, prompts.Pronouns)

	// 7. length clamp, trimmed back to a sentence boundary when one exists
	text = clampWords(text, n.MaxWords)

	return capitalizeFirst(strings.TrimSpace(text))
}

// SanitizeHashtags lowercases, strips, deduplicates and filters hashtags,
// capped at max. Output is idempotent under re-sanitization and never nil.
func (n *Normalizer) SanitizeHashtags(tags []string, draft string, max int) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))

	for _, tag := range tags {
		t := strings.ToLower(strings.TrimSpace(tag))
		t = strings.TrimPrefix(t, "#")
		t = strings.Join(strings.Fields(t), "")
		if t == "" || seen[t] {
			continue
		}
		if inList(t, prompts.BannedHashtags) {
			continue
		}
		// Sensitive tags need the user to have typed them
		if inList(t, prompts.SensitiveHashtags) && !containsFold(draft, t) {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == max {
			break
		}
	}
	return out
}

// DraftFallbackTags extracts alphanumeric tokens (>=3 chars) directly from
// the draft when the model produced zero usable hashtags.
func (n *Normalizer) DraftFallbackTags(draft string, max int) []string {
	out := make([]string, 0, max)
	seen := make(map[string]bool)

	tokens := strings.FieldsFunc(strings.ToLower(draft), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		if len(tok) < 3 || seen[tok] {
			continue
		}
		if inList(tok, prompts.BannedHashtags) {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
		if len(out) == max {
			break
		}
	}
	return out
}

// SanitizeFriendTags trims, deduplicates (case-insensitive) and caps friend
// tags. First casing wins. Never nil.
func (n *Normalizer) SanitizeFriendTags(tags []string, max int) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))

	for _, tag := range tags {
		t := strings.TrimSpace(tag)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
		if len(out) == max {
			break
		}
	}
	return out
}

// draftIndicatesStandIn reports whether the draft is about a plush or toy
// stand-in rather than a live animal.
func draftIndicatesStandIn(draft string) bool {
	lower := strings.ToLower(draft)
	for _, marker := range prompts.StandInMarkers {
		if containsWholeWord(lower, marker) {
			return true
		}
	}
	return false
}

// stripGenericIntro removes a leading generic phrase ("Today...", "This
// is...") so the caption opens on the moment itself.
func stripGenericIntro(text string) string {
	trimmed := strings.TrimSpace(text)
	lower := strings.ToLower(trimmed)
	for _, intro := range prompts.GenericIntros {
		if strings.HasPrefix(lower, intro) {
			rest := strings.TrimLeft(trimmed[len(intro):], " ,")
			return rest
		}
	}
	return trimmed
}

// clampWords cuts the text to at most max words, then trims back to the
// last sentence-ending punctuation within the window so the result does
// not stop mid-sentence.
func clampWords(text string, max int) string {
	words := strings.Fields(text)
	if len(words) <= max {
		return strings.Join(words, " ")
	}

	window := words[:max]
	for i := len(window) - 1; i >= 0; i-- {
		if endsSentence(window[i]) {
			return strings.Join(window[:i+1], " ")
		}
	}
	return strings.Join(window, " ")
}

func endsSentence(word string) bool {
	return strings.HasSuffix(word, ".") ||
		strings.HasSuffix(word, "!") ||
		strings.HasSuffix(word, "?")
}

// removeWholeWords removes case-insensitive whole-word occurrences and
// tidies the spacing left behind.
func removeWholeWords(text string, words []string) string {
	if len(words) == 0 {
		return text
	}
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	if len(quoted) == 0 {
		return text
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return tidySpacing(re.ReplaceAllString(text, ""))
}

// replaceWholeWords substitutes case-insensitive whole-word occurrences.
func replaceWholeWords(text string, words []string, substitute string) string {
	if len(words) == 0 {
		return text
	}
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return re.ReplaceAllString(text, substitute)
}

// removePhrase removes case-insensitive occurrences of a multi-word phrase.
func removePhrase(text, phrase string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(phrase))
	return tidySpacing(re.ReplaceAllString(text, ""))
}

// containsWholeWord reports a case-insensitive whole-word match. The text
// must already be lowercased by the caller when comparing lexicon entries.
func containsWholeWord(text, word string) bool {
	if word == "" {
		return false
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
	return re.MatchString(text)
}

// containsFold is a case-insensitive substring check.
func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func inList(s string, list []string) bool {
	for _, item := range list {
		if s == item {
			return true
		}
	}
	return false
}

// tidySpacing collapses whitespace runs and pulls stranded punctuation back
// onto the preceding word.
func tidySpacing(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	for _, p := range []string{".", ",", "!", "?", ";", ":"} {
		text = strings.ReplaceAll(text, " "+p, p)
	}
	return strings.TrimSpace(text)
}

func capitalizeFirst(text string) string {
	if text == "" {
		return text
	}
	r := []rune(text)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
