package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/haoyu/memorybook/internal/domain"
)

// fakeVision implements visionModel for aggregator and pipeline tests.
type fakeVision struct {
	mu    sync.Mutex
	calls int
	fn    func(system, user string, img *domain.ImagePayload) (string, error)
}

func (f *fakeVision) Complete(_ context.Context, system, user string, img *domain.ImagePayload) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return f.fn(system, user, img)
}

func TestVisionAggregator_Describe(t *testing.T) {
	vision := &fakeVision{fn: func(_, _ string, img *domain.ImagePayload) (string, error) {
		return fmt.Sprintf("A scene in photo number %d.", img.Index), nil
	}}
	agg := NewVisionAggregator(vision, 2)

	combined, perImage := agg.Describe(context.Background(), testImages(3))

	expected := "Photo 1: A scene in photo number 1.\n" +
		"Photo 2: A scene in photo number 2.\n" +
		"Photo 3: A scene in photo number 3.\n"
	if combined != expected {
		t.Errorf("combined = %q, want %q", combined, expected)
	}

	if len(perImage) != 3 {
		t.Fatalf("expected 3 descriptions, got %d", len(perImage))
	}
	for i, d := range perImage {
		if d.Index != i+1 {
			t.Errorf("description %d has index %d", i, d.Index)
		}
	}
}

func TestVisionAggregator_FailureDegradesToUnclear(t *testing.T) {
	vision := &fakeVision{fn: func(_, _ string, img *domain.ImagePayload) (string, error) {
		if img.Index == 2 {
			return "", errors.New("model overloaded")
		}
		return "A table with plates.", nil
	}}
	agg := NewVisionAggregator(vision, 4)

	combined, perImage := agg.Describe(context.Background(), testImages(2))

	if perImage[1].Text != "" {
		t.Errorf("expected empty text for failed image, got %q", perImage[1].Text)
	}
	expected := "Photo 1: A table with plates.\nPhoto 2: (unclear)\n"
	if combined != expected {
		t.Errorf("combined = %q, want %q", combined, expected)
	}
}

func TestVisionAggregator_EmptyInput(t *testing.T) {
	agg := NewVisionAggregator(&fakeVision{}, 4)

	combined, perImage := agg.Describe(context.Background(), nil)
	if combined != "" || perImage != nil {
		t.Errorf("expected empty output for no images, got %q / %v", combined, perImage)
	}
}

func TestVisionAggregator_BrandTokenStripped(t *testing.T) {
	vision := &fakeVision{fn: func(_, _ string, _ *domain.ImagePayload) (string, error) {
		return "A Memorybook mug on a desk.", nil
	}}
	agg := NewVisionAggregator(vision, 1)

	combined, _ := agg.Describe(context.Background(), testImages(1))
	if combined != "Photo 1: A mug on a desk.\n" {
		t.Errorf("expected brand token stripped, got %q", combined)
	}
}

func TestMustKeywordsFromFirst(t *testing.T) {
	tests := []struct {
		name     string
		perImage []domain.ImageDescription
		expected []string
	}{
		{
			name: "keyword in first description",
			perImage: []domain.ImageDescription{
				{Index: 1, Text: "A sandy beach with two umbrellas."},
				{Index: 2, Text: "A slice of cake on a plate."},
			},
			expected: []string{"beach"},
		},
		{
			name: "keyword only in later description is ignored",
			perImage: []domain.ImageDescription{
				{Index: 1, Text: "Two people talking."},
				{Index: 2, Text: "A slice of cake on a plate."},
			},
			expected: nil,
		},
		{
			name: "at most one keyword",
			perImage: []domain.ImageDescription{
				{Index: 1, Text: "A dog at the beach near the park."},
			},
			expected: []string{"beach"},
		},
		{
			name:     "no descriptions",
			perImage: nil,
			expected: nil,
		},
		{
			name: "embedded word does not count",
			perImage: []domain.ImageDescription{
				{Index: 1, Text: "A beachfront building."},
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustKeywordsFromFirst(tt.perImage)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("MustKeywordsFromFirst = %v, want %v", got, tt.expected)
			}
		})
	}
}
