package posekit

import (
	"fmt"
)

// Tensor is a read-only view over a flat float32 buffer holding a model
// output tensor.  Detection model outputs are laid out channels first as
// [batch, channels, detections] with one column per candidate detection,
// so the accessors index by named axis rather than raw offset.
type Tensor struct {
	data []float32
	// axis sizes
	batch      int
	channels   int
	detections int
}

// NewTensor returns a Tensor view over the given buffer with the named
// axis dimensions.  The buffer is not copied.
func NewTensor(data []float32, batch, channels, detections int) *Tensor {
	return &Tensor{
		data:       data,
		batch:      batch,
		channels:   channels,
		detections: detections,
	}
}

// Valid reports whether the buffer is large enough to hold the declared
// dimensions.  Decoders treat an invalid tensor as a frame containing no
// detections rather than an error.
func (t *Tensor) Valid() bool {

	if t == nil || t.batch <= 0 || t.channels <= 0 || t.detections <= 0 {
		return false
	}

	return len(t.data) >= t.batch*t.channels*t.detections
}

// At returns the value at (batch, channel, detection) for a channels
// first layout.  Bounds are not checked, callers are expected to have
// checked Valid() and stay within the declared dimensions.
func (t *Tensor) At(batch, channel, detection int) float32 {
	return t.data[batch*t.channels*t.detections+channel*t.detections+detection]
}

// Flat returns the value at the given flat index within a batch, used
// for output layouts that are a plain vector per batch.
func (t *Tensor) Flat(batch, index int) float32 {
	return t.data[batch*t.channels*t.detections+index]
}

// Batch returns the size of the batch axis
func (t *Tensor) Batch() int {
	return t.batch
}

// Channels returns the size of the channel axis
func (t *Tensor) Channels() int {
	return t.channels
}

// Detections returns the size of the detection axis
func (t *Tensor) Detections() int {
	return t.detections
}

// Data returns the underlying buffer
func (t *Tensor) Data() []float32 {
	return t.data
}

// String returns the tensor dimensions formatted as a string
func (t *Tensor) String() string {
	return fmt.Sprintf("dims=[%d, %d, %d], n_elems=%d",
		t.batch, t.channels, t.detections, len(t.data))
}
