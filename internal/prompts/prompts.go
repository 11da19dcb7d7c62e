package prompts

// ============================================================================
// Shared Lexicons
// ============================================================================

// BrandToken is the product name. It must never surface in generated
// captions, descriptions or hashtags unless the user typed it themselves.
const BrandToken = "memorybook"

// MoodLabels is the closed label set shared by the face-mood and
// caption-mood classifiers. Every classifier output is validated against it.
var MoodLabels = []string{"happy", "neutral", "tired", "sad", "angry"}

// Pronouns are removed from captions via whole-word matching. Captions
// describe the moment, not the narrator.
var Pronouns = []string{
	"i", "me", "my", "mine", "myself",
	"we", "us", "our", "ours", "ourselves",
	"you", "your", "yours", "yourself",
	"he", "him", "his", "she", "her", "hers",
	"they", "them", "their", "theirs",
}

// FantasyWords is the vocabulary the grounding validator rejects unless the
// exact term already appears in the vision text or the user draft. These are
// the words the text model reaches for when it invents backstory.
var FantasyWords = []string{
	"memories", "memory", "nostalgia", "nostalgic", "childhood",
	"summer", "winter", "autumn", "spring", "holiday", "vacation",
	"adventure", "journey", "story", "dream", "dreams", "magical",
	"forever", "timeless", "golden hour", "wanderlust", "river",
	"sunset", "sunrise", "ocean", "mountains",
}

// BannedBackgroundWords are filler scene words stripped from every caption.
var BannedBackgroundWords = []string{
	"background", "backdrop", "foreground", "scenery", "wallpaper",
}

// BannedActivityPhrases are activity claims the model tends to invent.
// A phrase survives only when the draft contains it verbatim.
var BannedActivityPhrases = []string{
	"having fun", "enjoying life", "living the dream", "making memories",
	"good vibes", "quality time", "best day ever",
}

// StandInMarkers indicate the draft is about a plush or toy stand-in rather
// than a live animal; when present, animal words are substituted.
var StandInMarkers = []string{"plush", "plushie", "toy", "doll", "figurine", "mascot"}

// AnimalWords are substituted with StandInSubstitute when the draft carries
// a stand-in marker.
var AnimalWords = []string{
	"dog", "puppy", "cat", "kitten", "bear", "bunny", "rabbit", "duck", "penguin",
}

// StandInSubstitute replaces animal words for stand-in posts.
const StandInSubstitute = "plushie"

// GenericIntros are leading phrases stripped from captions; the caption
// should start with the moment itself. Longer phrases first so the longest
// prefix wins.
var GenericIntros = []string{
	"a photo of", "an image of", "a picture of", "pictured:",
	"this is", "here is", "here's", "today,", "today",
}

// MustKeywordVocabulary is the small fixed vocabulary scanned against the
// first image description only. At most one match becomes a must-mention
// keyword for grounding.
var MustKeywordVocabulary = []string{
	"beach", "park", "cafe", "restaurant", "cake", "dog", "cat",
	"flowers", "snow", "concert", "city", "garden", "pool", "bridge",
}

// SensitiveHashtags are dropped unless the exact tag appears in the draft.
// The model must not infer these about people in the photos.
var SensitiveHashtags = []string{
	"couple", "engaged", "wedding", "pregnant", "baby", "breakup",
	"diet", "weightloss", "sick", "hospital",
}

// BannedHashtags are dropped unconditionally.
var BannedHashtags = []string{
	BrandToken, "ad", "sponsored", "follow4follow", "like4like", "nsfw",
}

// ============================================================================
// Caption Generation Prompts (text model)
// ============================================================================

// CaptionSystemPrompt defines the rules for post caption generation.
// The model is asked for strict JSON; the orchestrator still tolerates
// markdown fencing around the object.
const CaptionSystemPrompt = `You write short photo-post captions. Follow every rule:

1. 6-14 words. One sentence, ending with a period or exclamation mark.
2. No first, second or third person pronouns. Describe the moment, not people's inner lives.
3. At most one emoji, or none.
4. No hashtags inside the caption text.
5. The photos form one post (a carousel). Describe the overall moment, never a photo-by-photo inventory.
6. Only mention things visible in the photo descriptions or written in the user's draft. Do not invent weather, seasons, feelings or backstory.

Output strict JSON only, no prose, exactly this shape:
{"caption": "...", "hashtags": ["tag1", "tag2"], "friendTags": []}

hashtags: up to 5 lowercase single words drawn from the photo descriptions or draft.
friendTags: always an empty array; people tagging is handled elsewhere.`

// CaptionRetryInstruction is appended to the user prompt after a grounding
// failure. Exactly one retry is issued.
const CaptionRetryInstruction = `

Your previous answer was not grounded in the photos or the draft. Rewrite it using only things actually visible in the photo descriptions or written in the draft. Same JSON shape.`

// ============================================================================
// Vision Prompts (vision model, one image per call)
// ============================================================================

// VisionSystemPrompt constrains per-image descriptions to observable facts.
const VisionSystemPrompt = `You describe a single photo for a captioning system. State only what is visible: subjects, objects, setting, activity. 1-2 plain sentences. No speculation about feelings, occasions or relationships. If the image is unclear, answer with an empty string.`

// VisionUserPrompt is the per-image instruction.
const VisionUserPrompt = `Describe this photo in 1-2 sentences.`

// ============================================================================
// Mood Prompts
// ============================================================================

// FaceMoodSystemPrompt classifies the mood of the most prominent face in
// the first image. Output contract is shared with the caption-mood branch.
const FaceMoodSystemPrompt = `You classify the facial expression of the most prominent person in a photo.
Answer with strict JSON only: {"label": "...", "confidence": 0.0}
label must be one of: happy, neutral, tired, sad, angry.
confidence is a number between 0 and 1.
If no face is visible or the expression is ambiguous, answer {"label": "neutral", "confidence": 0.2}.`

// FaceMoodUserPrompt is the per-image instruction for mood classification.
const FaceMoodUserPrompt = `Classify the facial expression in this photo.`

// CaptionMoodSystemPrompt classifies the mood conveyed by a finished caption.
const CaptionMoodSystemPrompt = `You classify the mood conveyed by a short photo caption.
Answer with strict JSON only: {"label": "...", "confidence": 0.0}
label must be one of: happy, neutral, tired, sad, angry.
confidence is a number between 0 and 1.
If the caption is neutral or you are unsure, answer {"label": "neutral", "confidence": 0.2}.`

// ============================================================================
// Deterministic Fallback Captions
// ============================================================================

// FallbackCaptions maps vision-text keywords to neutral captions used when
// generation and retry both fail validation. First hit wins; order matters.
var FallbackCaptions = []struct {
	Keyword string
	Caption string
}{
	{"beach", "Sea air and an easy afternoon."},
	{"cake", "A sweet little celebration."},
	{"dog", "Four paws stealing the show."},
	{"cat", "Quiet company on soft paws."},
	{"flowers", "Fresh blooms brightening the day."},
	{"snow", "A crisp white morning outside."},
	{"food", "Good plates, better company."},
	{"park", "Green space and slow steps."},
	{"concert", "Loud lights and a full room."},
	{"city", "Streets humming with small scenes."},
}

// DefaultFallbackCaption is the last-resort caption; never empty.
const DefaultFallbackCaption = "Moment captured."
