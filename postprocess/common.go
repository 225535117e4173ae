package postprocess

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/posekit/go-posekit/postprocess/result"
)

// iouEpsilon guards the IoU division against degenerate zero area boxes
const iouEpsilon = 1e-6

// Sigmoid maps a raw logit to a confidence in [0,1]
func Sigmoid(x float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(float64(-x))))
}

// Unsigmoid is the inverse of Sigmoid, used to move a configured
// confidence threshold into the raw logit domain so comparisons can be
// made without activating every candidate value first
func Unsigmoid(y float32) float32 {
	return float32(-math.Log(float64(1.0/y - 1.0)))
}

// SigmoidScores returns a copy of the detections with sigmoid applied
// to the detection confidence and every keypoint score.  Used by the
// orchestrator for models that emit raw logits, detections themselves
// are never mutated after decode.
func SigmoidScores(dets []result.Detection) []result.Detection {

	out := make([]result.Detection, len(dets))

	for i, det := range dets {

		keyPoints := make([]result.KeyPoint, len(det.KeyPoints))

		for k, kp := range det.KeyPoints {
			kp.Score = Sigmoid(kp.Score)
			keyPoints[k] = kp
		}

		det.Confidence = Sigmoid(det.Confidence)
		det.KeyPoints = keyPoints
		out[i] = det
	}

	return out
}

// calculateIoU works out the Intersection over Union (IoU) value of
// two boxes
func calculateIoU(a, b result.Box) float32 {

	w := math.Max(0.0, math.Min(float64(a.Right()), float64(b.Right()))-math.Max(float64(a.Left()), float64(b.Left())))
	h := math.Max(0.0, math.Min(float64(a.Bottom()), float64(b.Bottom()))-math.Max(float64(a.Top()), float64(b.Top())))
	intersection := float32(w * h)

	// union with epsilon so zero area boxes don't divide by zero
	union := a.Area() + b.Area() - intersection + iouEpsilon

	return intersection / union
}

// pointDistance returns the Euclidean distance between two keypoint
// positions
func pointDistance(a, b result.KeyPoint) float32 {
	return float32(floats.Distance(
		[]float64{float64(a.X), float64(a.Y)},
		[]float64{float64(b.X), float64(b.Y)},
		2,
	))
}
