// Package pipeline sequences the per frame detection flow, letterbox
// the captured frame, run the primary model, decode, suppress, map to
// display space, optionally crop and run a second stage hand model,
// then emit the frame result.  The pipeline holds no detection state
// across frames, every frame builds a fresh result list and the
// previous one is discarded by the caller.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	posekit "github.com/posekit/go-posekit"
	"github.com/posekit/go-posekit/coordmap"
	"github.com/posekit/go-posekit/postprocess"
	"github.com/posekit/go-posekit/postprocess/result"
	"github.com/posekit/go-posekit/preprocess"
)

// NMSKind selects the suppression strategy applied after decoding
type NMSKind int

const (
	// NMSIoU suppresses by bounding box overlap
	NMSIoU NMSKind = iota
	// NMSDistance suppresses by anchor point distance
	NMSDistance
)

// SecondStage configures the optional wrist crop and hand landmark
// stage run after the primary pose model
type SecondStage struct {
	// Wrist are the wrist extraction parameters
	Wrist postprocess.WristParams
	// DistanceThreshold is the minimum spacing between wrists kept by
	// distance NMS, in model space pixels
	DistanceThreshold float32
	// CropSize is the side of the square source frame region cut
	// around each wrist for the hand model
	CropSize float32
	// Hand are the hand landmark decode parameters
	Hand postprocess.HandParams
	// InputSize is the hand models input tensor width and height
	InputSize int
	// LandmarksOutput and ScoreOutput name the hand model output
	// tensors
	LandmarksOutput string
	ScoreOutput     string
	// ApplySigmoid activates the hand models raw logit scores after
	// decode.  The supported models disagree on whether scores are
	// pre-activated so this is per model configuration, not a decoder
	// default.
	ApplySigmoid bool
}

// Config defines the parameters for a detection pipeline
type Config struct {
	// Pose are the primary model decode parameters
	Pose postprocess.PoseParams
	// NMS selects the suppression strategy for primary detections
	NMS NMSKind
	// IoUThreshold is the maximum allowed IoU between two kept boxes
	IoUThreshold float32
	// DistanceThreshold is used when NMS is NMSDistance
	DistanceThreshold float32
	// MaxDetections is the maximum number of detections emitted per
	// frame
	MaxDetections int
	// Display maps model space onto the display, see the coordmap
	// fixed grid and aspect gap constructors
	Display coordmap.Transform
	// Second enables the wrist crop hand landmark stage when non nil
	Second *SecondStage
}

// DefaultConfig returns a single stage pose pipeline configuration
// with COCO defaults and an identity display mapping
func DefaultConfig() Config {
	return Config{
		Pose:          postprocess.PoseCOCOParams(),
		NMS:           NMSIoU,
		IoUThreshold:  0.45,
		MaxDetections: 64,
		Display:       coordmap.Identity(),
	}
}

// FrameResult is the ordered detection list emitted for one frame,
// with all coordinates in display space.  The renderer consuming it
// owns widget pooling and draw order.
type FrameResult struct {
	// Body holds the primary pose detections in confidence descending
	// order
	Body []result.Detection
	// Hands holds second stage hand landmark detections, one per
	// surviving wrist crop
	Hands []result.Detection
	// SecondErr records a failure of the second stage.  The primary
	// detections are still valid, a bad crop configuration is fatal
	// only to the hand stage of the frame.
	SecondErr error
}

// Pipeline drives one frame at a time through decode, suppression and
// mapping.  It is frame synchronous, all work for a frame completes
// before the next frames capture begins, and it is not safe for
// concurrent use.
type Pipeline struct {
	cfg     Config
	primary posekit.Worker
	second  posekit.Worker
	resizer *preprocess.Resizer
	// decoders
	pose  *postprocess.PoseDecoder
	wrist *postprocess.WristDecoder
	hand  *postprocess.HandDecoder
	// modelInput is the reused letterboxed input Mat
	modelInput gocv.Mat
	// srcToDisplay maps source frame coordinates onto the display,
	// used for second stage results that decode in crop space
	srcToDisplay coordmap.Transform
	// padColor fills the letterbox bands
	padColor color.RGBA
}

// NewPipeline returns a pipeline for frames of the given source
// dimensions.  primary runs the pose model, second runs the hand
// landmark model and may be nil when cfg.Second is nil.
func NewPipeline(cfg Config, primary posekit.Worker, second posekit.Worker,
	srcWidth, srcHeight int) (*Pipeline, error) {

	if primary == nil {
		return nil, errors.New("primary worker is required")
	}

	if cfg.Second != nil && second == nil {
		return nil, errors.New("second stage configured but no hand worker given")
	}

	if cfg.Pose.Schema.Len() == 0 {
		return nil, errors.New("pose schema has no keypoints")
	}

	p := &Pipeline{
		cfg:        cfg,
		primary:    primary,
		second:     second,
		resizer:    preprocess.NewResizer(srcWidth, srcHeight, coordmap.ModelSize, coordmap.ModelSize),
		pose:       postprocess.NewPoseDecoder(cfg.Pose),
		modelInput: gocv.NewMat(),
		padColor:   color.RGBA{R: 114, G: 114, B: 114, A: 255},
	}

	if cfg.Second != nil {
		p.wrist = postprocess.NewWristDecoder(cfg.Second.Wrist)
		p.hand = postprocess.NewHandDecoder(cfg.Second.Hand)
	}

	// display = model -> source -> display, composed once
	modelToSrc := p.resizer.Transform()
	srcToModel, err := modelToSrc.Inverse()

	if err != nil {
		return nil, fmt.Errorf("error inverting letterbox transform: %w", err)
	}

	p.srcToDisplay = cfg.Display.Compose(srcToModel)

	return p, nil
}

// Close frees resources held by the pipeline.  Workers are owned by
// the caller and are not closed.
func (p *Pipeline) Close() error {
	_ = p.resizer.Close()
	return p.modelInput.Close()
}

// Process runs one source frame through the pipeline and returns the
// frame result.  An empty result is a normal outcome for frames with
// nothing above threshold.
func (p *Pipeline) Process(frame gocv.Mat) (*FrameResult, error) {

	p.resizer.LetterBoxResize(frame, &p.modelInput, p.padColor)

	outputs, err := p.primary.Run(p.modelInput)

	if err != nil {
		return nil, fmt.Errorf("error running primary model: %w", err)
	}

	tensor := outputs.First()

	res := &FrameResult{}

	// decode and suppress in model space
	dets := p.pose.Decode(tensor)

	switch p.cfg.NMS {
	case NMSDistance:
		dets = postprocess.DistanceNMS(dets, p.cfg.DistanceThreshold)
	default:
		dets = postprocess.IoUNMS(dets, p.cfg.IoUThreshold)
	}

	if p.cfg.MaxDetections > 0 && len(dets) > p.cfg.MaxDetections {
		dets = dets[:p.cfg.MaxDetections]
	}

	res.Body = p.mapDetections(dets, p.cfg.Display)

	if p.cfg.Second != nil {
		res.Hands, res.SecondErr = p.runSecondStage(frame, tensor)
	}

	return res, nil
}

// runSecondStage extracts wrists from the primary output, plans a
// source frame crop around each and runs the hand landmark model on
// the crops
func (p *Pipeline) runSecondStage(frame gocv.Mat,
	tensor *posekit.Tensor) ([]result.Detection, error) {

	cfg := p.cfg.Second

	wrists := p.wrist.Decode(tensor)
	wrists = postprocess.DistanceNMS(wrists, cfg.DistanceThreshold)

	if len(wrists) == 0 {
		return nil, nil
	}

	modelToSrc := p.resizer.Transform()

	srcBounds := coordmap.Rect{
		Width:  float32(p.resizer.SrcWidth()),
		Height: float32(p.resizer.SrcHeight()),
	}

	var hands []result.Detection

	for _, w := range wrists {

		anchor := w.Anchor()
		center := modelToSrc.Point(coordmap.Point{X: anchor.X, Y: anchor.Y})

		crop, err := preprocess.PlanCrop(center, cfg.CropSize, srcBounds)

		if err != nil {
			// a bad crop size fails for every wrist, abandon the
			// stage but keep the primary detections
			return hands, err
		}

		det, err := p.runHandModel(frame, crop)

		if err != nil {
			return hands, err
		}

		hands = append(hands, det...)
	}

	return hands, nil
}

// runHandModel cuts the planned crop from the source frame, runs the
// hand model on it and maps the resulting landmarks to display space
func (p *Pipeline) runHandModel(frame gocv.Mat,
	crop coordmap.Rect) ([]result.Detection, error) {

	cfg := p.cfg.Second

	region := frame.Region(image.Rect(
		int(crop.X), int(crop.Y),
		int(crop.X+crop.Width), int(crop.Y+crop.Height),
	))
	defer region.Close()

	input := gocv.NewMat()
	defer input.Close()

	gocv.Resize(region, &input, image.Pt(cfg.InputSize, cfg.InputSize),
		0, 0, gocv.InterpolationArea)

	outputs, err := p.second.Run(input)

	if err != nil {
		return nil, fmt.Errorf("error running hand model: %w", err)
	}

	landmarks, err := outputs.MustPeek(cfg.LandmarksOutput)

	if err != nil {
		return nil, err
	}

	score := float32(0)

	if st := outputs.Peek(cfg.ScoreOutput); st != nil && st.Valid() {
		score = st.Flat(0, 0)
	}

	dets := p.hand.Decode(landmarks, score)

	if cfg.ApplySigmoid {
		dets = postprocess.SigmoidScores(dets)
	}

	// hand coordinates decode in the models own input square, map
	// them through the crop onto the source frame then the display
	handSpace := coordmap.Space{
		Name: "hand",
		Bounds: coordmap.Rect{
			Width:  float32(cfg.InputSize),
			Height: float32(cfg.InputSize),
		},
	}
	cropSpace := coordmap.Space{Name: "crop", Bounds: crop}

	toDisplay := p.srcToDisplay.Compose(handSpace.To(cropSpace))

	return p.mapDetections(dets, toDisplay), nil
}

// mapDetections passes every detection through the given transform,
// returning fresh records, decoded detections are never mutated
func (p *Pipeline) mapDetections(dets []result.Detection,
	t coordmap.Transform) []result.Detection {

	if len(dets) == 0 {
		return nil
	}

	out := make([]result.Detection, len(dets))

	for i, det := range dets {

		box := t.Rect(coordmap.Rect{
			X:      det.Box.Left(),
			Y:      det.Box.Top(),
			Width:  det.Box.Width,
			Height: det.Box.Height,
		})

		keyPoints := make([]result.KeyPoint, len(det.KeyPoints))

		for k, kp := range det.KeyPoints {
			pt := t.Point(coordmap.Point{X: kp.X, Y: kp.Y})
			keyPoints[k] = result.KeyPoint{X: pt.X, Y: pt.Y, Score: kp.Score}
		}

		det.Box = result.Box{
			CenterX: box.X + box.Width/2,
			CenterY: box.Y + box.Height/2,
			Width:   box.Width,
			Height:  box.Height,
		}
		det.KeyPoints = keyPoints
		out[i] = det
	}

	return out
}
