package postprocess

import (
	"testing"

	posekit "github.com/posekit/go-posekit"
)

// makeHandTensor builds a flat landmark tensor of x, y, score triples
func makeHandTensor(points [][3]float32) *posekit.Tensor {

	data := make([]float32, 0, 3*len(points))

	for _, p := range points {
		data = append(data, p[0], p[1], p[2])
	}

	return posekit.NewTensor(data, 1, len(data), 1)
}

// spreadHand lays the 21 landmarks on a diagonal so box extents are
// easy to predict
func spreadHand() [][3]float32 {

	schema := Hand21Schema()
	points := make([][3]float32, schema.Len())

	for i := range points {
		points[i] = [3]float32{
			float32(100 + i*2),
			float32(50 + i*4),
			0.9,
		}
	}

	return points
}

func TestHandDecodeLandmarks(t *testing.T) {

	tensor := makeHandTensor(spreadHand())

	dec := NewHandDecoder(HandDefaultParams())

	// presence score is a raw logit, 2.0 is well above Unsigmoid(0.5)
	dets := dec.Decode(tensor, 2.0)

	if len(dets) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(dets))
	}

	det := dets[0]

	if len(det.KeyPoints) != Hand21Schema().Len() {
		t.Fatalf("keypoint count = %d, expected 21", len(det.KeyPoints))
	}

	if det.KeyPoints[HandWrist].X != 100 || det.KeyPoints[HandWrist].Y != 50 {
		t.Errorf("wrist landmark at (%f,%f), expected (100,50)",
			det.KeyPoints[HandWrist].X, det.KeyPoints[HandWrist].Y)
	}

	// landmarks run from (100,50) to (140,130), the box spans the extents
	if det.Box.Left() != 100 || det.Box.Top() != 50 ||
		det.Box.Right() != 140 || det.Box.Bottom() != 130 {
		t.Errorf("box extents (%f,%f,%f,%f), expected (100,50,140,130)",
			det.Box.Left(), det.Box.Top(), det.Box.Right(), det.Box.Bottom())
	}

	if det.Confidence != 2.0 {
		t.Errorf("confidence = %f, expected the raw presence score", det.Confidence)
	}
}

func TestHandDecodePresenceThreshold(t *testing.T) {

	tensor := makeHandTensor(spreadHand())
	dec := NewHandDecoder(HandDefaultParams())

	// the default threshold is 0 in the logit domain, a negative logit
	// means presence below 0.5
	tests := []struct {
		score    float32
		expected int
	}{
		{-1.5, 0},
		{0, 0},
		{0.001, 1},
	}

	for _, tc := range tests {
		if dets := dec.Decode(tensor, tc.score); len(dets) != tc.expected {
			t.Errorf("score %f: expected %d detections, got %d",
				tc.score, tc.expected, len(dets))
		}
	}
}

func TestHandDecodeShortTensor(t *testing.T) {

	dec := NewHandDecoder(HandDefaultParams())

	short := makeHandTensor(spreadHand()[:10])

	if dets := dec.Decode(short, 2.0); len(dets) != 0 {
		t.Errorf("short tensor produced %d detections", len(dets))
	}

	var nilTensor *posekit.Tensor

	if dets := dec.Decode(nilTensor, 2.0); len(dets) != 0 {
		t.Errorf("nil tensor produced %d detections", len(dets))
	}
}

func TestHandDecodeNoSigmoidApplied(t *testing.T) {

	// the decoder leaves raw logit keypoint scores untouched
	points := spreadHand()
	points[ThumbTip][2] = -3.0

	tensor := makeHandTensor(points)
	dec := NewHandDecoder(HandDefaultParams())

	dets := dec.Decode(tensor, 2.0)

	if len(dets) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(dets))
	}

	if dets[0].KeyPoints[ThumbTip].Score != -3.0 {
		t.Errorf("keypoint score = %f, expected the raw value -3.0",
			dets[0].KeyPoints[ThumbTip].Score)
	}
}
