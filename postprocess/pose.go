package postprocess

import (
	posekit "github.com/posekit/go-posekit"
	"github.com/posekit/go-posekit/postprocess/result"
)

// model output channel layout, one column per candidate detection
const (
	chanCenterX    = 0
	chanCenterY    = 1
	chanWidth      = 2
	chanHeight     = 3
	chanConfidence = 4
	chanKeyPoints  = 5
)

// PoseDecoder decodes a pose estimation model output tensor into
// detection results with keypoints
type PoseDecoder struct {
	// Params are the model configuration parameters
	Params PoseParams
	// idGen provides the next number for each detection result ID
	idGen *result.IDGenerator
}

// PoseParams defines the parameters to use for decoding pose model
// output
type PoseParams struct {
	// Schema is the keypoint schema the model was trained on
	Schema KeypointSchema
	// BoxThreshold is the minimum objectness score required for a
	// detection column to be decoded.  The comparison is strictly
	// greater than, a detection at exactly the threshold is discarded.
	BoxThreshold float32
}

// PoseCOCOParams returns an instance of PoseParams configured with
// default values for a model trained on the COCO dataset featuring:
//   - Keypoint Schema: COCO-17
//   - Box Threshold: 0.7
func PoseCOCOParams() PoseParams {
	return PoseParams{
		Schema:       COCO17Schema(),
		BoxThreshold: 0.7,
	}
}

// NewPoseDecoder returns an instance of the PoseDecoder
func NewPoseDecoder(p PoseParams) *PoseDecoder {
	return &PoseDecoder{
		Params: p,
		idGen:  result.NewIDGenerator(),
	}
}

// Decode converts the raw model output tensor into detections.  Columns
// below the box threshold produce nothing, surviving columns always
// carry the schemas full keypoint count regardless of per keypoint
// confidence.  A malformed or short tensor decodes to an empty result,
// absence of detections is a normal frame outcome not an error.
func (d *PoseDecoder) Decode(t *posekit.Tensor) []result.Detection {

	wantChannels := chanKeyPoints + 3*d.Params.Schema.Len()

	if !t.Valid() || t.Channels() < wantChannels {
		return nil
	}

	var dets []result.Detection

	for n := 0; n < t.Detections(); n++ {

		conf := t.At(0, chanConfidence, n)

		if conf <= d.Params.BoxThreshold {
			continue
		}

		keyPoints := make([]result.KeyPoint, d.Params.Schema.Len())

		for k := 0; k < d.Params.Schema.Len(); k++ {
			base := chanKeyPoints + 3*k

			keyPoints[k] = result.KeyPoint{
				X:     t.At(0, base, n),
				Y:     t.At(0, base+1, n),
				Score: t.At(0, base+2, n),
			}
		}

		dets = append(dets, result.Detection{
			Box: result.Box{
				CenterX: t.At(0, chanCenterX, n),
				CenterY: t.At(0, chanCenterY, n),
				Width:   t.At(0, chanWidth, n),
				Height:  t.At(0, chanHeight, n),
			},
			Confidence: conf,
			KeyPoints:  keyPoints,
			ID:         d.idGen.GetNext(),
		})
	}

	return dets
}
