package result

// Box is the bounding box of a detected object in centre and size form,
// in model space pixel units
type Box struct {
	CenterX float32
	CenterY float32
	Width   float32
	Height  float32
}

// Left returns the minimum X edge of the box
func (b Box) Left() float32 {
	return b.CenterX - b.Width/2
}

// Top returns the minimum Y edge of the box
func (b Box) Top() float32 {
	return b.CenterY - b.Height/2
}

// Right returns the maximum X edge of the box
func (b Box) Right() float32 {
	return b.CenterX + b.Width/2
}

// Bottom returns the maximum Y edge of the box
func (b Box) Bottom() float32 {
	return b.CenterY + b.Height/2
}

// Area returns the area of the box
func (b Box) Area() float32 {
	return b.Width * b.Height
}

// KeyPoint is a single landmark point of a detection.  Low confidence
// keypoints are still present in a detections keypoint list, filtering
// them out is a rendering concern.
type KeyPoint struct {
	X     float32
	Y     float32
	Score float32
}

// Detection defines the attributes of a single object detected.  A
// Detection is immutable once decoded, each frame produces a fresh list
// and the previous frames list is discarded, there is no identity
// carried across frames.
type Detection struct {
	// Box is the bounding box of the object location
	Box Box
	// Confidence is the objectness score of the detection.  Decoders
	// only ever produce detections above the configured threshold.
	Confidence float32
	// KeyPoints holds exactly schema length entries in schema order
	KeyPoints []KeyPoint
	// ID is a unique ID assigned to the detection result
	ID int64
}

// Anchor returns the keypoint used as the detections position for
// point based suppression.  For wrist only detections this is the
// single extracted wrist keypoint.
func (d Detection) Anchor() KeyPoint {

	if len(d.KeyPoints) == 0 {
		return KeyPoint{X: d.Box.CenterX, Y: d.Box.CenterY}
	}

	return d.KeyPoints[0]
}
