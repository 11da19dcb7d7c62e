package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/haoyu/memorybook/internal/domain"
)

// fakeRecognizer implements faceRecognizer for matcher tests.
type fakeRecognizer struct {
	mu         sync.Mutex
	calls      int
	thresholds []float64
	fn         func(img *domain.ImagePayload) ([]domain.DetectedFace, error)
}

func (f *fakeRecognizer) Recognize(_ context.Context, img *domain.ImagePayload, threshold float64) ([]domain.DetectedFace, error) {
	f.mu.Lock()
	f.calls++
	f.thresholds = append(f.thresholds, threshold)
	f.mu.Unlock()
	return f.fn(img)
}

func (f *fakeRecognizer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testImages(n int) []*domain.ImagePayload {
	images := make([]*domain.ImagePayload, n)
	for i := range images {
		images[i] = &domain.ImagePayload{Index: i + 1, Data: []byte{0xFF, byte(i)}}
	}
	return images
}

func face(candidates ...domain.FaceMatchCandidate) domain.DetectedFace {
	return domain.DetectedFace{Candidates: candidates}
}

func TestPromoteTags(t *testing.T) {
	m := NewFaceMatcher(nil, FaceMatcherConfig{})

	tests := []struct {
		name     string
		results  []domain.ImageMatchResult
		expected []string
	}{
		{
			name: "confident single candidate promoted",
			results: []domain.ImageMatchResult{
				{Index: 1, OK: true, Faces: []domain.DetectedFace{
					face(domain.FaceMatchCandidate{Name: "Alice", Distance: 0.30}),
				}},
			},
			expected: []string{"Alice"},
		},
		{
			name: "distance above threshold rejected",
			results: []domain.ImageMatchResult{
				{Index: 1, OK: true, Faces: []domain.DetectedFace{
					face(domain.FaceMatchCandidate{Name: "Alice", Distance: 0.65}),
				}},
			},
			expected: []string{},
		},
		{
			name: "ambiguous gap rejected",
			results: []domain.ImageMatchResult{
				{Index: 1, OK: true, Faces: []domain.DetectedFace{
					face(
						domain.FaceMatchCandidate{Name: "Alice", Distance: 0.30},
						domain.FaceMatchCandidate{Name: "Bea", Distance: 0.33},
					),
				}},
			},
			expected: []string{},
		},
		{
			name: "clear gap promoted",
			results: []domain.ImageMatchResult{
				{Index: 1, OK: true, Faces: []domain.DetectedFace{
					face(
						domain.FaceMatchCandidate{Name: "Alice", Distance: 0.30},
						domain.FaceMatchCandidate{Name: "Bea", Distance: 0.40},
					),
				}},
			},
			expected: []string{"Alice"},
		},
		{
			name: "unsorted candidates are sorted before promotion",
			results: []domain.ImageMatchResult{
				{Index: 1, OK: true, Faces: []domain.DetectedFace{
					face(
						domain.FaceMatchCandidate{Name: "Bea", Distance: 0.50},
						domain.FaceMatchCandidate{Name: "Alice", Distance: 0.25},
					),
				}},
			},
			expected: []string{"Alice"},
		},
		{
			name: "duplicate name across images deduplicated",
			results: []domain.ImageMatchResult{
				{Index: 1, OK: true, Faces: []domain.DetectedFace{
					face(domain.FaceMatchCandidate{Name: "Alice", Distance: 0.30}),
				}},
				{Index: 2, OK: true, Faces: []domain.DetectedFace{
					face(domain.FaceMatchCandidate{Name: "alice", Distance: 0.20}),
					face(domain.FaceMatchCandidate{Name: "Bob", Distance: 0.25}),
				}},
			},
			expected: []string{"Alice", "Bob"},
		},
		{
			name:     "no faces yields empty non-nil slice",
			results:  []domain.ImageMatchResult{{Index: 1, OK: true, Faces: []domain.DetectedFace{}}},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.PromoteTags(tt.results)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("PromoteTags = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPromoteTags_Cap(t *testing.T) {
	m := NewFaceMatcher(nil, FaceMatcherConfig{MaxTags: 2})

	results := []domain.ImageMatchResult{
		{Index: 1, OK: true, Faces: []domain.DetectedFace{
			face(domain.FaceMatchCandidate{Name: "Alice", Distance: 0.20}),
			face(domain.FaceMatchCandidate{Name: "Bob", Distance: 0.25}),
			face(domain.FaceMatchCandidate{Name: "Cara", Distance: 0.30}),
		}},
	}

	got := m.PromoteTags(results)
	if !reflect.DeepEqual(got, []string{"Alice", "Bob"}) {
		t.Errorf("expected cap at 2 tags, got %v", got)
	}
}

func TestRecognizeBatch_FailureIsolation(t *testing.T) {
	rec := &fakeRecognizer{fn: func(img *domain.ImagePayload) ([]domain.DetectedFace, error) {
		if img.Index == 2 {
			return nil, errors.New("service unavailable")
		}
		return []domain.DetectedFace{face(domain.FaceMatchCandidate{Name: "Alice", Distance: 0.3})}, nil
	}}
	m := NewFaceMatcher(rec, FaceMatcherConfig{})

	results := m.RecognizeBatch(context.Background(), testImages(3))
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i, res := range results {
		if res.Index != i+1 {
			t.Errorf("result %d has index %d", i, res.Index)
		}
		if res.Faces == nil {
			t.Errorf("result %d has nil face list", i)
		}
	}

	if results[1].OK {
		t.Error("expected failed image to report ok=false")
	}
	if len(results[1].Faces) != 0 {
		t.Errorf("expected empty faces for failed image, got %v", results[1].Faces)
	}
	if !results[0].OK || !results[2].OK {
		t.Error("expected healthy images to report ok=true")
	}
}

func TestRecognizeBatch_Limit(t *testing.T) {
	rec := &fakeRecognizer{fn: func(*domain.ImagePayload) ([]domain.DetectedFace, error) {
		return nil, nil
	}}
	m := NewFaceMatcher(rec, FaceMatcherConfig{BatchLimit: 2})

	results := m.RecognizeBatch(context.Background(), testImages(5))
	if len(results) != 2 {
		t.Errorf("expected batch capped at 2, got %d results", len(results))
	}
	if rec.callCount() != 2 {
		t.Errorf("expected 2 recognition calls, got %d", rec.callCount())
	}
}

func TestRecognizeBatch_ThresholdOverride(t *testing.T) {
	rec := &fakeRecognizer{fn: func(*domain.ImagePayload) ([]domain.DetectedFace, error) {
		return nil, nil
	}}
	m := NewFaceMatcher(rec, FaceMatcherConfig{Threshold: 0.6})

	m.RecognizeBatchWithThreshold(context.Background(), testImages(1), 0.4)
	m.RecognizeBatchWithThreshold(context.Background(), testImages(1), 0) // absent -> default
	m.RecognizeBatch(context.Background(), testImages(1))

	rec.mu.Lock()
	got := append([]float64(nil), rec.thresholds...)
	rec.mu.Unlock()

	expected := []float64{0.4, 0.6, 0.6}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("thresholds sent to the face service = %v, want %v", got, expected)
	}
}

func TestConfirmTags_ScanLimit(t *testing.T) {
	rec := &fakeRecognizer{fn: func(img *domain.ImagePayload) ([]domain.DetectedFace, error) {
		return []domain.DetectedFace{face(domain.FaceMatchCandidate{Name: "Alice", Distance: 0.3})}, nil
	}}
	m := NewFaceMatcher(rec, FaceMatcherConfig{TagScanImages: 3})

	tags := m.ConfirmTags(context.Background(), testImages(6))
	if rec.callCount() != 3 {
		t.Errorf("expected only the first 3 images scanned, got %d calls", rec.callCount())
	}
	if !reflect.DeepEqual(tags, []string{"Alice"}) {
		t.Errorf("expected [Alice], got %v", tags)
	}
}
