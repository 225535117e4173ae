package render

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/posekit/go-posekit/postprocess"
	"github.com/posekit/go-posekit/postprocess/result"
)

// KeyPoints renders the keypoints and skeleton lines for all
// detections.  The skeleton edge list comes from the schema so the
// same renderer draws COCO-17 bodies and 21 point hands.  Keypoints
// scoring below minScore are skipped along with any limb touching
// them, low confidence keypoints are present in every detection by
// contract and filtering them is the renderers job.
func KeyPoints(img *gocv.Mat, dets []result.Detection,
	schema postprocess.KeypointSchema, minScore float32, lineThickness int) {

	for _, det := range dets {

		keyPoints := det.KeyPoints

		if len(keyPoints) < schema.Len() {
			continue
		}

		// draw skeleton lines
		for j, edge := range schema.Skeleton {

			a := keyPoints[edge.A]
			b := keyPoints[edge.B]

			if a.Score < minScore || b.Score < minScore {
				continue
			}

			gocv.Line(img,
				image.Pt(int(a.X), int(a.Y)),
				image.Pt(int(b.X), int(b.Y)),
				limbColor(j), lineThickness)
		}

		// draw circles at skeleton joints
		for j := 0; j < schema.Len(); j++ {

			if keyPoints[j].Score < minScore {
				continue
			}

			gocv.Circle(img,
				image.Pt(int(keyPoints[j].X), int(keyPoints[j].Y)),
				3, jointColor(j), -1)
		}
	}
}
