package engine

// TrackingResult is the immutable per-frame output record. It is
// constructed fresh every processed frame and handed to collaborators
// by value; it carries no pixel data.
//
// ShouldersMoving, the head pose angles and the 3D gaze vector are
// reserved for future estimators and are always zero. They are kept in
// the record so its wire shape stays stable when those estimators land.
type TrackingResult struct {
	FaceDetected bool    `json:"face_detected"`
	FaceDistance float64 `json:"face_distance"` // cm, 0 when no face
	GazeAngleX   float64 `json:"gaze_angle_x"`  // degrees, 0 when undetermined
	GazeAngleY   float64 `json:"gaze_angle_y"`  // degrees, 0 when undetermined
	EyesFocused  bool    `json:"eyes_focused"`
	HeadMoving   bool    `json:"head_moving"`

	ShouldersMoving bool `json:"shoulders_moving"` // reserved, always false

	FaceRectX      float64 `json:"face_rect_x"`
	FaceRectY      float64 `json:"face_rect_y"`
	FaceRectWidth  float64 `json:"face_rect_width"`
	FaceRectHeight float64 `json:"face_rect_height"`

	// Reserved head pose and 3D gaze vector fields.
	HeadPosePitch float64 `json:"head_pose_pitch"`
	HeadPoseYaw   float64 `json:"head_pose_yaw"`
	HeadPoseRoll  float64 `json:"head_pose_roll"`
	GazeVectorX   float64 `json:"gaze_vector_x"`
	GazeVectorY   float64 `json:"gaze_vector_y"`
	GazeVectorZ   float64 `json:"gaze_vector_z"`

	Confidence float64 `json:"confidence"` // 0-1
}

// EmptyResult returns the zero-default record reported when no face is
// detected or no frame is available.
func EmptyResult() TrackingResult {
	return TrackingResult{}
}
