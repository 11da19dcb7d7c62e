package domain

// MoodLabel is one of the five enumerated moods.
type MoodLabel string

const (
	MoodHappy   MoodLabel = "happy"
	MoodNeutral MoodLabel = "neutral"
	MoodTired   MoodLabel = "tired"
	MoodSad     MoodLabel = "sad"
	MoodAngry   MoodLabel = "angry"
)

// ValidMoodLabel reports whether label is one of the five enumerated values.
func ValidMoodLabel(label MoodLabel) bool {
	switch label {
	case MoodHappy, MoodNeutral, MoodTired, MoodSad, MoodAngry:
		return true
	}
	return false
}

// MoodSource records which signal(s) a fused mood came from.
type MoodSource string

const (
	MoodSourceBoth    MoodSource = "face+caption"
	MoodSourceFace    MoodSource = "face"
	MoodSourceCaption MoodSource = "caption"
	MoodSourceUnknown MoodSource = "unknown"
)

// MoodAssessment is one branch's estimate. Confidence is clamped to [0,1]
// at construction; a failed branch is (neutral, 0).
type MoodAssessment struct {
	Label      MoodLabel `json:"label"`
	Confidence float64   `json:"confidence"`
}

// Clamp forces the assessment back into its invariants: a valid label and
// a confidence in [0,1].
func (m MoodAssessment) Clamp() MoodAssessment {
	if !ValidMoodLabel(m.Label) {
		m.Label = MoodNeutral
	}
	if m.Confidence < 0 {
		m.Confidence = 0
	}
	if m.Confidence > 1 {
		m.Confidence = 1
	}
	return m
}

// NeutralMood is the documented default for a failed or silent branch.
func NeutralMood() MoodAssessment {
	return MoodAssessment{Label: MoodNeutral, Confidence: 0}
}

// FusedMood combines the two branch assessments.
type FusedMood struct {
	Label      MoodLabel  `json:"label"`
	Source     MoodSource `json:"source"`
	Confidence float64    `json:"confidence"`
}

// Emoji returns the display emoji for a mood label.
func (l MoodLabel) Emoji() string {
	switch l {
	case MoodHappy:
		return "😊"
	case MoodTired:
		return "😴"
	case MoodSad:
		return "😢"
	case MoodAngry:
		return "😠"
	default:
		return "🙂"
	}
}
