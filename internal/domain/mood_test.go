package domain

import "testing"

func TestMoodAssessmentClamp(t *testing.T) {
	tests := []struct {
		name     string
		in       MoodAssessment
		expected MoodAssessment
	}{
		{
			name:     "valid assessment untouched",
			in:       MoodAssessment{Label: MoodHappy, Confidence: 0.7},
			expected: MoodAssessment{Label: MoodHappy, Confidence: 0.7},
		},
		{
			name:     "unknown label becomes neutral",
			in:       MoodAssessment{Label: "euphoric", Confidence: 0.7},
			expected: MoodAssessment{Label: MoodNeutral, Confidence: 0.7},
		},
		{
			name:     "confidence clamped high",
			in:       MoodAssessment{Label: MoodSad, Confidence: 1.5},
			expected: MoodAssessment{Label: MoodSad, Confidence: 1},
		},
		{
			name:     "confidence clamped low",
			in:       MoodAssessment{Label: MoodTired, Confidence: -0.2},
			expected: MoodAssessment{Label: MoodTired, Confidence: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Clamp(); got != tt.expected {
				t.Errorf("Clamp() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestMoodLabelEmoji(t *testing.T) {
	tests := []struct {
		label    MoodLabel
		expected string
	}{
		{MoodHappy, "😊"},
		{MoodNeutral, "🙂"},
		{MoodTired, "😴"},
		{MoodSad, "😢"},
		{MoodAngry, "😠"},
		{"unknown", "🙂"},
	}

	for _, tt := range tests {
		if got := tt.label.Emoji(); got != tt.expected {
			t.Errorf("Emoji(%q) = %q, want %q", tt.label, got, tt.expected)
		}
	}
}
