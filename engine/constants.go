package engine

// Rendering constants
const (
	FOV_X = 60.0

	DEFAULT_CAMERA_Z = -200.0
	DEFAULT_DZ       = 0.0
)
