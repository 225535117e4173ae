package postprocess

import (
	"testing"
)

func TestWristDecodeBothWrists(t *testing.T) {

	schema := COCO17Schema()

	kps := fullKps(schema.Len(), 0, 0, 0.9)
	kps[LeftWrist] = [3]float32{200, 300, 0.8}
	kps[RightWrist] = [3]float32{420, 310, 0.6}

	tensor := makePoseTensor(t, []poseCol{
		{box: [4]float32{320, 240, 200, 400}, conf: 0.9, kps: kps},
	}, schema.Len())

	dec := NewWristDecoder(WristCOCOParams())
	dets := dec.Decode(tensor)

	if len(dets) != 2 {
		t.Fatalf("expected 2 wrist detections, got %d", len(dets))
	}

	left := dets[0]

	if left.Box.CenterX != 200 || left.Box.CenterY != 300 {
		t.Errorf("left wrist at (%f,%f), expected (200,300)",
			left.Box.CenterX, left.Box.CenterY)
	}

	// the wrist keypoint score becomes the detection confidence
	if left.Confidence != 0.8 {
		t.Errorf("left wrist confidence = %f, expected 0.8", left.Confidence)
	}

	if left.Box.Width != 0 || left.Box.Height != 0 {
		t.Errorf("wrist detection box has size %fx%f, expected zero",
			left.Box.Width, left.Box.Height)
	}

	if len(left.KeyPoints) != 1 {
		t.Errorf("wrist detection has %d keypoints, expected 1", len(left.KeyPoints))
	}
}

func TestWristDecodeThresholds(t *testing.T) {

	schema := COCO17Schema()

	tests := []struct {
		name       string
		personConf float32
		leftScore  float32
		rightScore float32
		expected   int
	}{
		{"both above", 0.9, 0.8, 0.6, 2},
		{"one marginal wrist", 0.9, 0.8, 0.1, 1},
		{"wrist at exact threshold", 0.9, 0.3, 0.1, 0},
		{"person below box threshold", 0.5, 0.9, 0.9, 0},
	}

	dec := NewWristDecoder(WristCOCOParams())

	for _, tc := range tests {

		kps := fullKps(schema.Len(), 0, 0, 0.9)
		kps[LeftWrist] = [3]float32{200, 300, tc.leftScore}
		kps[RightWrist] = [3]float32{420, 310, tc.rightScore}

		tensor := makePoseTensor(t, []poseCol{
			{box: [4]float32{320, 240, 200, 400}, conf: tc.personConf, kps: kps},
		}, schema.Len())

		if dets := dec.Decode(tensor); len(dets) != tc.expected {
			t.Errorf("%s: expected %d detections, got %d",
				tc.name, tc.expected, len(dets))
		}
	}
}

func TestWristDecodeWithDistanceNMS(t *testing.T) {

	// two overlapping person columns report nearly the same left wrist,
	// distance suppression collapses them to one
	schema := COCO17Schema()

	kpsA := fullKps(schema.Len(), 0, 0, 0)
	kpsA[LeftWrist] = [3]float32{300, 300, 0.9}

	kpsB := fullKps(schema.Len(), 0, 0, 0)
	kpsB[LeftWrist] = [3]float32{310, 305, 0.5}

	tensor := makePoseTensor(t, []poseCol{
		{box: [4]float32{320, 240, 200, 400}, conf: 0.9, kps: kpsA},
		{box: [4]float32{325, 245, 200, 400}, conf: 0.85, kps: kpsB},
	}, schema.Len())

	dec := NewWristDecoder(WristCOCOParams())
	dets := dec.Decode(tensor)

	if len(dets) != 2 {
		t.Fatalf("expected 2 raw wrist detections, got %d", len(dets))
	}

	filtered := DistanceNMS(dets, 60)

	if len(filtered) != 1 {
		t.Fatalf("expected 1 wrist after suppression, got %d", len(filtered))
	}

	if filtered[0].Box.CenterX != 300 {
		t.Errorf("kept wrist CenterX = %f, expected 300", filtered[0].Box.CenterX)
	}
}
