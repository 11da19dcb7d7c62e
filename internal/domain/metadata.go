package domain

// GenerationRequest is one post-metadata request. Draft may be empty and
// Images may be empty; neither is an error.
type GenerationRequest struct {
	Draft  string
	Images []*ImagePayload
}

// ImageDescription is the vision model's text for one image. Text may be
// empty, meaning "unclear". Created once by the vision aggregator and
// immutable afterwards.
type ImageDescription struct {
	Index int // 1-based, matches ImagePayload.Index
	Text  string
}

// CaptionSource records which path produced a candidate caption.
type CaptionSource string

const (
	CaptionSourceModel    CaptionSource = "model"
	CaptionSourceRetry    CaptionSource = "retry"
	CaptionSourceFallback CaptionSource = "fallback"
)

// CandidateCaption is a caption moving through the normalization passes.
type CandidateCaption struct {
	Text   string
	Source CaptionSource
}

// ModelOutput is the JSON shape requested from the text model.
type ModelOutput struct {
	Caption    string   `json:"caption"`
	Hashtags   []string `json:"hashtags"`
	FriendTags []string `json:"friendTags"`
}

// PipelineResult is the final assembled response for one request.
// Caption is always non-empty; Hashtags and FriendTags are always non-nil.
type PipelineResult struct {
	Caption    string     `json:"caption"`
	Hashtags   []string   `json:"hashtags"`
	FriendTags []string   `json:"friendTags"`
	MoodLabel  MoodLabel  `json:"moodLabel"`
	MoodSource MoodSource `json:"moodSource"`
	Emoji      string     `json:"emoji"`
}
