package preprocess

import (
	"errors"
	"testing"

	"github.com/posekit/go-posekit/coordmap"
)

func TestPlanCrop(t *testing.T) {

	bounds := coordmap.Rect{Width: 640, Height: 640}

	tests := []struct {
		name     string
		center   coordmap.Point
		cropSize float32
		expected coordmap.Rect
	}{
		{
			name:     "interior centre",
			center:   coordmap.Point{X: 320, Y: 320},
			cropSize: 300,
			expected: coordmap.Rect{X: 170, Y: 170, Width: 300, Height: 300},
		},
		{
			name:     "clamped to top left",
			center:   coordmap.Point{X: 50, Y: 50},
			cropSize: 300,
			expected: coordmap.Rect{X: 0, Y: 0, Width: 300, Height: 300},
		},
		{
			name:     "clamped to bottom right",
			center:   coordmap.Point{X: 630, Y: 600},
			cropSize: 300,
			expected: coordmap.Rect{X: 340, Y: 340, Width: 300, Height: 300},
		},
		{
			name:     "crop fills the image",
			center:   coordmap.Point{X: 100, Y: 500},
			cropSize: 640,
			expected: coordmap.Rect{X: 0, Y: 0, Width: 640, Height: 640},
		},
	}

	for _, tc := range tests {
		got, err := PlanCrop(tc.center, tc.cropSize, bounds)

		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
			continue
		}

		if got != tc.expected {
			t.Errorf("%s: crop = %+v, expected %+v", tc.name, got, tc.expected)
		}
	}
}

func TestPlanCropOffsetBounds(t *testing.T) {

	// bounds that do not start at the origin, such as a display viewport
	bounds := coordmap.Rect{X: 100, Y: 50, Width: 400, Height: 400}

	got, err := PlanCrop(coordmap.Point{X: 100, Y: 50}, 200, bounds)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := coordmap.Rect{X: 100, Y: 50, Width: 200, Height: 200}

	if got != expected {
		t.Errorf("crop = %+v, expected %+v", got, expected)
	}
}

func TestPlanCropConfigError(t *testing.T) {

	bounds := coordmap.Rect{Width: 640, Height: 480}

	tests := []struct {
		name     string
		cropSize float32
	}{
		{"exceeds width and height", 700},
		{"exceeds height only", 500},
		{"zero size", 0},
		{"negative size", -10},
	}

	for _, tc := range tests {
		_, err := PlanCrop(coordmap.Point{X: 320, Y: 240}, tc.cropSize, bounds)

		if err == nil {
			t.Errorf("%s: expected an error", tc.name)
			continue
		}

		var cfgErr *ConfigError

		if !errors.As(err, &cfgErr) {
			t.Errorf("%s: error type %T, expected *ConfigError", tc.name, err)
		}
	}
}
