package preprocess

import (
	"math"
	"testing"

	"github.com/posekit/go-posekit/coordmap"
)

func TestResizerPreCalc(t *testing.T) {

	tests := []struct {
		name      string
		srcWidth  int
		srcHeight int
		scale     float32
		xPad      int
		yPad      int
	}{
		{"landscape 1080p", 1920, 1080, 1.0 / 3.0, 0, 140},
		{"portrait", 1080, 1920, 1.0 / 3.0, 140, 0},
		{"square", 640, 640, 1.0, 0, 0},
		{"upscale", 320, 320, 2.0, 0, 0},
	}

	for _, tc := range tests {
		r := NewResizer(tc.srcWidth, tc.srcHeight, 640, 640)

		if math.Abs(float64(r.ScaleFactor()-tc.scale)) > 1e-5 {
			t.Errorf("%s: scale = %f, expected %f", tc.name, r.ScaleFactor(), tc.scale)
		}

		if r.XPad() != tc.xPad {
			t.Errorf("%s: xPad = %d, expected %d", tc.name, r.XPad(), tc.xPad)
		}

		if r.YPad() != tc.yPad {
			t.Errorf("%s: yPad = %d, expected %d", tc.name, r.YPad(), tc.yPad)
		}

		r.Close()
	}
}

func TestResizerTransform(t *testing.T) {

	// a 1080p frame letterboxed to 640x640 scales by 1/3 with 140 pixel
	// bands top and bottom
	r := NewResizer(1920, 1080, 640, 640)
	defer r.Close()

	tr := r.Transform()

	tests := []struct {
		name             string
		modelX, modelY   float32
		sourceX, sourceY float32
	}{
		{"content top left", 0, 140, 0, 0},
		{"frame centre", 320, 320, 960, 540},
		{"content bottom right", 640, 500, 1920, 1080},
	}

	for _, tc := range tests {
		p := tr.Point(coordmap.Point{X: tc.modelX, Y: tc.modelY})

		if math.Abs(float64(p.X-tc.sourceX)) > 1e-2 ||
			math.Abs(float64(p.Y-tc.sourceY)) > 1e-2 {
			t.Errorf("%s: mapped to (%f,%f), expected (%f,%f)",
				tc.name, p.X, p.Y, tc.sourceX, tc.sourceY)
		}
	}
}

func TestResizerSourceSpace(t *testing.T) {

	r := NewResizer(1280, 720, 640, 640)
	defer r.Close()

	space := r.SourceSpace()

	if space.Bounds.Width != 1280 || space.Bounds.Height != 720 {
		t.Errorf("source space bounds %fx%f, expected 1280x720",
			space.Bounds.Width, space.Bounds.Height)
	}
}
