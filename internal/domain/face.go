package domain

// FaceMatchCandidate is one stored identity compared against a detected
// face. Lower distance means more similar.
type FaceMatchCandidate struct {
	Name     string  `json:"name"`
	Distance float64 `json:"distance"`
}

// DetectedFace is one face found in one image, with its candidate matches.
// Candidates may arrive unordered; the matcher sorts before promotion.
type DetectedFace struct {
	Candidates []FaceMatchCandidate `json:"candidates"`
}

// ImageMatchResult is the per-image outcome of a batch recognition.
// A failed image keeps OK=false and an empty face list; it never fails
// the batch.
type ImageMatchResult struct {
	Index int            `json:"index"`
	OK    bool           `json:"ok"`
	Faces []DetectedFace `json:"faces"`
}

// RegisterResult confirms a face registration.
type RegisterResult struct {
	PersonID       string `json:"personId"`
	Name           string `json:"name"`
	EncodingsCount int    `json:"encodingsCount"`
}
