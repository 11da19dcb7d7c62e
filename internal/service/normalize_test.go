package service

import (
	"reflect"
	"strings"
	"testing"
)

func TestNormalizeCaption(t *testing.T) {
	n := NewNormalizer(14)

	tests := []struct {
		name     string
		caption  string
		draft    string
		expected string
	}{
		{
			name:     "pronouns removed whole-word",
			caption:  "I love my dog at the park",
			draft:    "",
			expected: "Love dog at the park",
		},
		{
			name:     "banned background words stripped",
			caption:  "The city skyline backdrop at night",
			draft:    "",
			expected: "The city skyline at night",
		},
		{
			name:     "activity phrase removed without draft support",
			caption:  "Having fun at the lake",
			draft:    "",
			expected: "At the lake",
		},
		{
			name:     "activity phrase kept when draft carries it",
			caption:  "Having fun at the lake",
			draft:    "having fun with friends",
			expected: "Having fun at the lake",
		},
		{
			name:     "brand token removed",
			caption:  "Shared via memorybook app",
			draft:    "",
			expected: "Shared via app",
		},
		{
			name:     "brand token kept when user typed it",
			caption:  "Shared via memorybook app",
			draft:    "posting to memorybook",
			expected: "Shared via memorybook app",
		},
		{
			name:     "animal substituted for stand-in posts",
			caption:  "The cutest dog ever",
			draft:    "my new plushie",
			expected: "The cutest plushie ever",
		},
		{
			name:     "animal kept without stand-in marker",
			caption:  "The cutest dog ever",
			draft:    "",
			expected: "The cutest dog ever",
		},
		{
			name:     "generic intro stripped",
			caption:  "This is a quiet morning coffee",
			draft:    "",
			expected: "A quiet morning coffee",
		},
		{
			name:     "photo-of intro stripped",
			caption:  "A photo of two lattes on a wooden table",
			draft:    "",
			expected: "Two lattes on a wooden table",
		},
		{
			name:     "empty caption stays empty",
			caption:  "",
			draft:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.NormalizeCaption(tt.caption, tt.draft)
			if got != tt.expected {
				t.Errorf("NormalizeCaption(%q, %q) = %q, want %q", tt.caption, tt.draft, got, tt.expected)
			}
		})
	}
}

func TestNormalizeCaption_WordClamp(t *testing.T) {
	n := NewNormalizer(14)

	long := "Sunlight through tall trees onto a narrow gravel path winding far beyond the old stone wall and gate"
	got := n.NormalizeCaption(long, "")
	if words := strings.Fields(got); len(words) > 14 {
		t.Errorf("expected at most 14 words, got %d: %q", len(words), got)
	}

	// Clamp trims back to the last full sentence inside the window.
	withSentence := "Quiet streets before the rain started. Everyone stayed inside watching the clouds roll over rooftops slowly"
	got = n.NormalizeCaption(withSentence, "")
	if got != "Quiet streets before the rain started." {
		t.Errorf("expected sentence-boundary trim, got %q", got)
	}
}

func TestSanitizeHashtags(t *testing.T) {
	n := NewNormalizer(14)

	tests := []struct {
		name     string
		tags     []string
		draft    string
		max      int
		expected []string
	}{
		{
			name:     "lowercased trimmed deduplicated",
			tags:     []string{"#Beach", " beach ", "SUN sets"},
			max:      5,
			expected: []string{"beach", "sunsets"},
		},
		{
			name:     "banned tags dropped",
			tags:     []string{"memorybook", "sponsored", "coffee"},
			max:      5,
			expected: []string{"coffee"},
		},
		{
			name:     "sensitive tag dropped without draft support",
			tags:     []string{"couple", "picnic"},
			max:      5,
			expected: []string{"picnic"},
		},
		{
			name:     "sensitive tag kept when user typed it",
			tags:     []string{"couple", "picnic"},
			draft:    "couple goals today",
			max:      5,
			expected: []string{"couple", "picnic"},
		},
		{
			name:     "capped at max",
			tags:     []string{"one", "two", "three", "four", "five", "six"},
			max:      5,
			expected: []string{"one", "two", "three", "four", "five"},
		},
		{
			name:     "nil input yields empty non-nil slice",
			tags:     nil,
			max:      5,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.SanitizeHashtags(tt.tags, tt.draft, tt.max)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("SanitizeHashtags(%v) = %v, want %v", tt.tags, got, tt.expected)
			}

			// Sanitization must be idempotent.
			again := n.SanitizeHashtags(got, tt.draft, tt.max)
			if !reflect.DeepEqual(again, got) {
				t.Errorf("not idempotent: first %v, second %v", got, again)
			}
		})
	}
}

func TestDraftFallbackTags(t *testing.T) {
	n := NewNormalizer(14)

	got := n.DraftFallbackTags("Beach day 2024!", 3)
	expected := []string{"beach", "day", "2024"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("DraftFallbackTags = %v, want %v", got, expected)
	}

	// Short tokens are skipped, banned tags are skipped, max is honored.
	got = n.DraftFallbackTags("at memorybook we go up so far beyond limits", 2)
	expected = []string{"far", "beyond"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("DraftFallbackTags = %v, want %v", got, expected)
	}

	if got := n.DraftFallbackTags("", 3); len(got) != 0 || got == nil {
		t.Errorf("expected empty non-nil slice for empty draft, got %v", got)
	}
}

func TestSanitizeFriendTags(t *testing.T) {
	n := NewNormalizer(14)

	got := n.SanitizeFriendTags([]string{" Alice ", "alice", "Bob", "", "Cara", "Dan", "Eve", "Frank"}, 5)
	expected := []string{"Alice", "Bob", "Cara", "Dan", "Eve"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("SanitizeFriendTags = %v, want %v", got, expected)
	}
}
