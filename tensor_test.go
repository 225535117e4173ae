package posekit

import (
	"testing"
)

func TestTensorAt(t *testing.T) {

	// [1, 2, 3] layout, channel 0 then channel 1
	data := []float32{
		1, 2, 3,
		4, 5, 6,
	}

	tensor := NewTensor(data, 1, 2, 3)

	if !tensor.Valid() {
		t.Fatalf("expected tensor to be valid")
	}

	tests := []struct {
		channel   int
		detection int
		expected  float32
	}{
		{0, 0, 1},
		{0, 2, 3},
		{1, 0, 4},
		{1, 2, 6},
	}

	for _, tc := range tests {
		if got := tensor.At(0, tc.channel, tc.detection); got != tc.expected {
			t.Errorf("At(0, %d, %d) = %f, expected %f",
				tc.channel, tc.detection, got, tc.expected)
		}
	}

	if got := tensor.Flat(0, 4); got != 5 {
		t.Errorf("Flat(0, 4) = %f, expected 5", got)
	}
}

func TestTensorValid(t *testing.T) {

	tests := []struct {
		name       string
		dataLen    int
		batch      int
		channels   int
		detections int
		expected   bool
	}{
		{"exact", 6, 1, 2, 3, true},
		{"oversized buffer", 10, 1, 2, 3, true},
		{"short buffer", 5, 1, 2, 3, false},
		{"zero detections", 0, 1, 2, 0, false},
		{"zero channels", 0, 1, 0, 3, false},
	}

	for _, tc := range tests {
		tensor := NewTensor(make([]float32, tc.dataLen),
			tc.batch, tc.channels, tc.detections)

		if got := tensor.Valid(); got != tc.expected {
			t.Errorf("%s: Valid() = %v, expected %v", tc.name, got, tc.expected)
		}
	}

	var nilTensor *Tensor

	if nilTensor.Valid() {
		t.Errorf("nil tensor reported valid")
	}
}

func TestFloat16BufferToFloat32(t *testing.T) {

	// 0x3C00 is 1.0 and 0xC000 is -2.0 in IEEE 754 half precision
	buf := []uint16{0x3C00, 0xC000, 0x0000}

	out := Float16BufferToFloat32(buf)

	expected := []float32{1.0, -2.0, 0.0}

	for i, want := range expected {
		if out[i] != want {
			t.Errorf("index %d = %f, expected %f", i, out[i], want)
		}
	}
}
