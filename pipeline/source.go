package pipeline

import (
	"fmt"

	"gocv.io/x/gocv"
)

// FrameSource is the boundary to a video file or webcam.  The capture
// implementation refreshes an opaque image once per tick, the pipeline
// only needs to ask for the next frame and its dimensions.
type FrameSource interface {
	// NextFrame reads the next frame into img, returning false when no
	// new frame is available
	NextFrame(img *gocv.Mat) bool
	// Width of the source frames
	Width() int
	// Height of the source frames
	Height() int
	// Close the underlying capture
	Close() error
}

// VideoSource adapts a gocv VideoCapture to the FrameSource boundary
type VideoSource struct {
	cap    *gocv.VideoCapture
	width  int
	height int
}

// OpenVideoSource opens the given video file for frame capture
func OpenVideoSource(file string) (*VideoSource, error) {

	cap, err := gocv.VideoCaptureFile(file)

	if err != nil {
		return nil, fmt.Errorf("error opening video file: %w", err)
	}

	return newVideoSource(cap), nil
}

// OpenWebcamSource opens the given webcam device for frame capture
func OpenWebcamSource(device int) (*VideoSource, error) {

	cap, err := gocv.VideoCaptureDevice(device)

	if err != nil {
		return nil, fmt.Errorf("error opening webcam device %d: %w", device, err)
	}

	return newVideoSource(cap), nil
}

func newVideoSource(cap *gocv.VideoCapture) *VideoSource {
	return &VideoSource{
		cap:    cap,
		width:  int(cap.Get(gocv.VideoCaptureFrameWidth)),
		height: int(cap.Get(gocv.VideoCaptureFrameHeight)),
	}
}

// NextFrame reads the next frame into img
func (v *VideoSource) NextFrame(img *gocv.Mat) bool {

	if ok := v.cap.Read(img); !ok {
		return false
	}

	return !img.Empty()
}

// Width of the source frames
func (v *VideoSource) Width() int {
	return v.width
}

// Height of the source frames
func (v *VideoSource) Height() int {
	return v.height
}

// Close the underlying capture
func (v *VideoSource) Close() error {
	return v.cap.Close()
}

// Run drives the pipeline over every frame the source produces,
// handing each frame and its result to emit.  Frames are strictly
// sequential, a frames work completes before the next capture.  Run
// stops when the source is exhausted or emit returns false.  The frame
// Mat is reused between iterations, emit must not retain it.
func Run(src FrameSource, p *Pipeline, emit func(frame gocv.Mat, res *FrameResult) bool) error {

	frame := gocv.NewMat()
	defer frame.Close()

	for src.NextFrame(&frame) {

		res, err := p.Process(frame)

		if err != nil {
			return err
		}

		if !emit(frame, res) {
			return nil
		}
	}

	return nil
}
