package postprocess

import (
	posekit "github.com/posekit/go-posekit"
	"github.com/posekit/go-posekit/postprocess/result"
)

// WristDecoder decodes only the left and right wrist keypoints from a
// pose model output.  Each surviving wrist becomes a standalone single
// keypoint detection, so that duplicate wrists produced by overlapping
// person boxes can be deduplicated with DistanceNMS rather than by box
// overlap.  The resulting crops feed a second stage hand model.
type WristDecoder struct {
	// Params are the model configuration parameters
	Params WristParams
	// idGen provides the next number for each detection result ID
	idGen *result.IDGenerator
}

// WristParams defines the parameters to use for decoding wrist
// detections from pose model output
type WristParams struct {
	// BoxThreshold is the minimum objectness score for the person
	// detection column to be considered at all
	BoxThreshold float32
	// WristThreshold is the minimum keypoint score for an individual
	// wrist to be kept.  It is deliberately lower than BoxThreshold, a
	// confident person detection can still have a marginal wrist.
	WristThreshold float32
}

// WristCOCOParams returns an instance of WristParams configured with
// default values for a COCO-17 pose model:
//   - Box Threshold: 0.7
//   - Wrist Threshold: 0.3
func WristCOCOParams() WristParams {
	return WristParams{
		BoxThreshold:   0.7,
		WristThreshold: 0.3,
	}
}

// NewWristDecoder returns an instance of the WristDecoder
func NewWristDecoder(p WristParams) *WristDecoder {
	return &WristDecoder{
		Params: p,
		idGen:  result.NewIDGenerator(),
	}
}

// Decode extracts wrist keypoints from a COCO-17 pose model output
// tensor.  Each wrist above the wrist threshold is returned as its own
// detection holding a single keypoint, with the wrist keypoint score as
// the detection confidence and a zero size box centred on the point.
func (d *WristDecoder) Decode(t *posekit.Tensor) []result.Detection {

	schema := COCO17Schema()
	wantChannels := chanKeyPoints + 3*schema.Len()

	if !t.Valid() || t.Channels() < wantChannels {
		return nil
	}

	var dets []result.Detection

	for n := 0; n < t.Detections(); n++ {

		if t.At(0, chanConfidence, n) <= d.Params.BoxThreshold {
			continue
		}

		for _, idx := range []int{LeftWrist, RightWrist} {
			base := chanKeyPoints + 3*idx

			score := t.At(0, base+2, n)

			if score <= d.Params.WristThreshold {
				continue
			}

			kp := result.KeyPoint{
				X:     t.At(0, base, n),
				Y:     t.At(0, base+1, n),
				Score: score,
			}

			dets = append(dets, result.Detection{
				Box: result.Box{
					CenterX: kp.X,
					CenterY: kp.Y,
				},
				Confidence: score,
				KeyPoints:  []result.KeyPoint{kp},
				ID:         d.idGen.GetNext(),
			})
		}
	}

	return dets
}
