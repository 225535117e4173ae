package postprocess

import (
	posekit "github.com/posekit/go-posekit"
	"github.com/posekit/go-posekit/postprocess/result"
)

// HandDecoder decodes a hand landmark model output into a single
// detection carrying the 21 point hand schema.  The hand model emits
// raw logits for its scores, the decoder does not apply sigmoid, that
// is the orchestrators responsibility as the supported models disagree
// on this convention.  To keep the decode boundary filter, the score
// threshold is expected in the same raw domain as the model output,
// see Unsigmoid.
type HandDecoder struct {
	// Params are the model configuration parameters
	Params HandParams
	// idGen provides the next number for each detection result ID
	idGen *result.IDGenerator
}

// HandParams defines the parameters to use for decoding hand landmark
// model output
type HandParams struct {
	// Schema is the hand keypoint schema
	Schema KeypointSchema
	// ScoreThreshold is the minimum hand presence score for a decode
	// to produce a detection, compared in the models raw output domain
	ScoreThreshold float32
}

// HandDefaultParams returns an instance of HandParams configured with
// default values for a MediaPipe style 21 point hand landmark model.
// The threshold is in the raw logit domain, Unsigmoid(0.5) = 0.
func HandDefaultParams() HandParams {
	return HandParams{
		Schema:         Hand21Schema(),
		ScoreThreshold: 0,
	}
}

// NewHandDecoder returns an instance of the HandDecoder
func NewHandDecoder(p HandParams) *HandDecoder {
	return &HandDecoder{
		Params: p,
		idGen:  result.NewIDGenerator(),
	}
}

// Decode converts a hand landmark tensor of x, y, score triples in
// schema order, plus the models hand presence score, into zero or one
// detection.  The bounding box is derived from the landmark extents.
// A malformed or short tensor decodes to an empty result.
func (d *HandDecoder) Decode(landmarks *posekit.Tensor, score float32) []result.Detection {

	k := d.Params.Schema.Len()

	if !landmarks.Valid() || landmarks.Channels()*landmarks.Detections() < 3*k {
		return nil
	}

	if score <= d.Params.ScoreThreshold {
		return nil
	}

	keyPoints := make([]result.KeyPoint, k)

	minX, minY := float32(0), float32(0)
	maxX, maxY := float32(0), float32(0)

	for i := 0; i < k; i++ {
		kp := result.KeyPoint{
			X:     landmarks.Flat(0, 3*i),
			Y:     landmarks.Flat(0, 3*i+1),
			Score: landmarks.Flat(0, 3*i+2),
		}
		keyPoints[i] = kp

		if i == 0 || kp.X < minX {
			minX = kp.X
		}
		if i == 0 || kp.Y < minY {
			minY = kp.Y
		}
		if i == 0 || kp.X > maxX {
			maxX = kp.X
		}
		if i == 0 || kp.Y > maxY {
			maxY = kp.Y
		}
	}

	return []result.Detection{{
		Box: result.Box{
			CenterX: (minX + maxX) / 2,
			CenterY: (minY + maxY) / 2,
			Width:   maxX - minX,
			Height:  maxY - minY,
		},
		Confidence: score,
		KeyPoints:  keyPoints,
		ID:         d.idGen.GetNext(),
	}}
}
