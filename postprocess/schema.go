package postprocess

// SkeletonEdge is an ordered pair of keypoint indices defining a
// drawable connection between two landmarks
type SkeletonEdge struct {
	A int
	B int
}

// KeypointSchema is the fixed ordered list of named landmark points a
// model produces, along with the skeleton connections between them
type KeypointSchema struct {
	// Name of the schema
	Name string
	// Points are the landmark names in model output order
	Points []string
	// Skeleton defines the limb connections to draw between points
	Skeleton []SkeletonEdge
}

// Len returns the number of keypoints in the schema
func (s KeypointSchema) Len() int {
	return len(s.Points)
}

// COCO-17 body keypoint indices
const (
	Nose = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)

// Hand landmark indices following the MediaPipe convention
const (
	HandWrist = iota
	ThumbCMC
	ThumbMCP
	ThumbIP
	ThumbTip
	IndexMCP
	IndexPIP
	IndexDIP
	IndexTip
	MiddleMCP
	MiddlePIP
	MiddleDIP
	MiddleTip
	RingMCP
	RingPIP
	RingDIP
	RingTip
	PinkyMCP
	PinkyPIP
	PinkyDIP
	PinkyTip
)

// COCO17Schema returns the 17 point full body pose schema the COCO
// trained pose models output
func COCO17Schema() KeypointSchema {
	return KeypointSchema{
		Name: "coco17",
		Points: []string{
			"nose", "left_eye", "right_eye", "left_ear", "right_ear",
			"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
			"left_wrist", "right_wrist", "left_hip", "right_hip",
			"left_knee", "right_knee", "left_ankle", "right_ankle",
		},
		Skeleton: []SkeletonEdge{
			{LeftAnkle, LeftKnee}, {LeftKnee, LeftHip},
			{RightAnkle, RightKnee}, {RightKnee, RightHip},
			{LeftHip, RightHip},
			{LeftShoulder, LeftHip}, {RightShoulder, RightHip},
			{LeftShoulder, RightShoulder},
			{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist},
			{RightShoulder, RightElbow}, {RightElbow, RightWrist},
			{Nose, LeftEye}, {Nose, RightEye},
			{LeftEye, LeftEar}, {RightEye, RightEar},
			{LeftEar, LeftShoulder}, {RightEar, RightShoulder},
		},
	}
}

// Hand21Schema returns the 21 point hand landmark schema
func Hand21Schema() KeypointSchema {
	return KeypointSchema{
		Name: "hand21",
		Points: []string{
			"wrist",
			"thumb_cmc", "thumb_mcp", "thumb_ip", "thumb_tip",
			"index_mcp", "index_pip", "index_dip", "index_tip",
			"middle_mcp", "middle_pip", "middle_dip", "middle_tip",
			"ring_mcp", "ring_pip", "ring_dip", "ring_tip",
			"pinky_mcp", "pinky_pip", "pinky_dip", "pinky_tip",
		},
		Skeleton: []SkeletonEdge{
			// thumb
			{HandWrist, ThumbCMC}, {ThumbCMC, ThumbMCP},
			{ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
			// index finger
			{HandWrist, IndexMCP}, {IndexMCP, IndexPIP},
			{IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
			// middle finger
			{MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP},
			{MiddleDIP, MiddleTip},
			// ring finger
			{RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
			// pinky finger
			{HandWrist, PinkyMCP}, {PinkyMCP, PinkyPIP},
			{PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
			// palm
			{IndexMCP, MiddleMCP}, {MiddleMCP, RingMCP},
			{RingMCP, PinkyMCP},
		},
	}
}

// WristSchema returns the single point schema used by the wrist only
// decode path, where each detection carries one wrist keypoint
func WristSchema() KeypointSchema {
	return KeypointSchema{
		Name:   "wrist",
		Points: []string{"wrist"},
	}
}
