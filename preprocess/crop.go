package preprocess

import (
	"fmt"

	"github.com/posekit/go-posekit/coordmap"
)

// ConfigError indicates a caller supplied configuration that cannot
// produce a valid result, such as a crop size larger than the image it
// is cut from.  It is fatal to the stage that raised it but not to the
// frame as a whole.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

// PlanCrop computes a square crop of side cropSize centred as close to
// center as possible while staying fully inside imageBounds, used to
// cut a second stage model input region around a detected keypoint.
// The centre is clamped into the valid range first so crops near the
// image edge slide inward rather than leaving the image.
//
// When cropSize exceeds either imageBounds dimension the clamp range
// inverts, so that is rejected with a ConfigError rather than
// returning a negative size rectangle.
func PlanCrop(center coordmap.Point, cropSize float32,
	imageBounds coordmap.Rect) (coordmap.Rect, error) {

	if cropSize <= 0 {
		return coordmap.Rect{}, &ConfigError{
			Reason: fmt.Sprintf("crop size %.0f is not positive", cropSize),
		}
	}

	if cropSize > imageBounds.Width || cropSize > imageBounds.Height {
		return coordmap.Rect{}, &ConfigError{
			Reason: fmt.Sprintf("crop size %.0f exceeds image bounds %.0fx%.0f",
				cropSize, imageBounds.Width, imageBounds.Height),
		}
	}

	half := cropSize / 2

	cx := clamp(center.X, imageBounds.X+half, imageBounds.X+imageBounds.Width-half)
	cy := clamp(center.Y, imageBounds.Y+half, imageBounds.Y+imageBounds.Height-half)

	return coordmap.Rect{
		X:      cx - half,
		Y:      cy - half,
		Width:  cropSize,
		Height: cropSize,
	}, nil
}

// clamp restricts the value to be within the range min and max
func clamp(val, min, max float32) float32 {

	if val < min {
		return min
	}

	if val > max {
		return max
	}

	return val
}
