package postprocess

import (
	"testing"

	"github.com/posekit/go-posekit/postprocess/result"
)

// boxDet builds a detection from a centre format box and confidence
func boxDet(cx, cy, w, h, conf float32) result.Detection {
	return result.Detection{
		Box: result.Box{
			CenterX: cx,
			CenterY: cy,
			Width:   w,
			Height:  h,
		},
		Confidence: conf,
	}
}

// pointDet builds a single keypoint detection at a position
func pointDet(x, y, conf float32) result.Detection {
	return result.Detection{
		Box: result.Box{
			CenterX: x,
			CenterY: y,
		},
		Confidence: conf,
		KeyPoints: []result.KeyPoint{
			{X: x, Y: y, Score: conf},
		},
	}
}

func TestIoUNMSSuppressesOverlap(t *testing.T) {

	// two 50x50 boxes offset by (5,5) overlap with IoU around 0.68,
	// above a 0.45 threshold only the higher confidence box survives
	dets := []result.Detection{
		boxDet(100, 100, 50, 50, 0.9),
		boxDet(105, 105, 50, 50, 0.8),
	}

	filtered := IoUNMS(dets, 0.45)

	if len(filtered) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(filtered))
	}

	if filtered[0].Confidence != 0.9 {
		t.Errorf("kept confidence = %f, expected 0.9", filtered[0].Confidence)
	}
}

func TestIoUNMSKeepsDisjoint(t *testing.T) {

	dets := []result.Detection{
		boxDet(100, 100, 50, 50, 0.9),
		boxDet(400, 400, 50, 50, 0.6),
		boxDet(250, 100, 50, 50, 0.8),
	}

	filtered := IoUNMS(dets, 0.45)

	if len(filtered) != 3 {
		t.Fatalf("expected 3 detections, got %d", len(filtered))
	}

	// results come back in descending confidence order
	for i := 1; i < len(filtered); i++ {
		if filtered[i].Confidence > filtered[i-1].Confidence {
			t.Errorf("results not sorted, %f before %f",
				filtered[i-1].Confidence, filtered[i].Confidence)
		}
	}
}

func TestIoUNMSPairwiseBound(t *testing.T) {

	// no surviving pair may overlap above the threshold
	dets := []result.Detection{
		boxDet(100, 100, 60, 60, 0.9),
		boxDet(110, 110, 60, 60, 0.85),
		boxDet(120, 120, 60, 60, 0.8),
		boxDet(300, 300, 60, 60, 0.7),
		boxDet(305, 305, 60, 60, 0.6),
	}

	threshold := float32(0.45)
	filtered := IoUNMS(dets, threshold)

	for i := 0; i < len(filtered); i++ {
		for j := i + 1; j < len(filtered); j++ {
			if iou := calculateIoU(filtered[i].Box, filtered[j].Box); iou > threshold {
				t.Errorf("survivors %d and %d overlap with IoU %f", i, j, iou)
			}
		}
	}
}

func TestIoUNMSIdempotent(t *testing.T) {

	dets := []result.Detection{
		boxDet(100, 100, 50, 50, 0.9),
		boxDet(105, 105, 50, 50, 0.8),
		boxDet(400, 400, 50, 50, 0.7),
		boxDet(402, 398, 50, 50, 0.75),
	}

	once := IoUNMS(dets, 0.45)
	twice := IoUNMS(once, 0.45)

	if len(once) != len(twice) {
		t.Fatalf("second pass changed count from %d to %d", len(once), len(twice))
	}

	for i := range once {
		if once[i].Box != twice[i].Box || once[i].Confidence != twice[i].Confidence {
			t.Errorf("second pass changed result %d", i)
		}
	}
}

func TestIoUNMSStableTies(t *testing.T) {

	// equal confidence detections keep their input order
	dets := []result.Detection{
		boxDet(100, 100, 50, 50, 0.8),
		boxDet(400, 400, 50, 50, 0.8),
		boxDet(250, 250, 50, 50, 0.8),
	}

	filtered := IoUNMS(dets, 0.45)

	if len(filtered) != 3 {
		t.Fatalf("expected 3 detections, got %d", len(filtered))
	}

	expected := []float32{100, 400, 250}

	for i, cx := range expected {
		if filtered[i].Box.CenterX != cx {
			t.Errorf("position %d CenterX = %f, expected %f",
				i, filtered[i].Box.CenterX, cx)
		}
	}
}

func TestIoUNMSEmpty(t *testing.T) {

	if filtered := IoUNMS(nil, 0.45); len(filtered) != 0 {
		t.Errorf("nil input produced %d detections", len(filtered))
	}
}

func TestDistanceNMSSuppressesNearby(t *testing.T) {

	// wrists at (300,300) and (310,305) are around 11.2 pixels apart,
	// under a 60 pixel threshold only the higher confidence one survives
	dets := []result.Detection{
		pointDet(300, 300, 0.9),
		pointDet(310, 305, 0.5),
	}

	filtered := DistanceNMS(dets, 60)

	if len(filtered) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(filtered))
	}

	if filtered[0].Confidence != 0.9 {
		t.Errorf("kept confidence = %f, expected 0.9", filtered[0].Confidence)
	}
}

func TestDistanceNMSKeepsDistant(t *testing.T) {

	dets := []result.Detection{
		pointDet(300, 300, 0.9),
		pointDet(500, 300, 0.5),
	}

	filtered := DistanceNMS(dets, 60)

	if len(filtered) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(filtered))
	}
}

func TestDistanceNMSBoundary(t *testing.T) {

	// suppression requires strictly less than the threshold, a pair at
	// exactly the threshold distance both survive
	dets := []result.Detection{
		pointDet(300, 300, 0.9),
		pointDet(360, 300, 0.5),
	}

	filtered := DistanceNMS(dets, 60)

	if len(filtered) != 2 {
		t.Fatalf("expected 2 detections at exact threshold, got %d", len(filtered))
	}
}
