package posekit

import (
	"github.com/x448/float16"
)

// Float16BufferToFloat32 converts a float16 buffer to float32 as Go has
// no support for FP16.  Some model exports emit FP16 output tensors so
// engine adapters use this before wrapping the buffer in a Tensor.
func Float16BufferToFloat32(float16Buf []uint16) []float32 {
	float32Buf := make([]float32, len(float16Buf))

	for i, val := range float16Buf {
		f16 := float16.Frombits(val)
		float32Buf[i] = f16.Float32()
	}

	return float32Buf
}
