package engine

import "math"

// Camera represents the viewing frustum and projection parameters
type Camera struct {
	Transform *Transform // Unified transform system
	FOV       Point      // Full field of view in degrees (X horizontal, Y vertical)
	Near      float64    // Near clipping plane
	Far       float64    // Far clipping plane
	DZ        float64    // Z offset for projection (for backward compatibility)
}

// NewCamera creates a new camera with default settings. The vertical
// FOV (the only one GenerateRay consults; horizontal is derived from
// the frame's aspect ratio) is set wide enough to frame the room from
// the default evaluation presets.
func NewCamera() *Camera {
	transform := NewTransformAt(0, 0, DEFAULT_CAMERA_Z)
	return &Camera{
		Transform: transform,
		FOV:       Point{X: FOV_X, Y: 60.0, Z: 0},
		Near:      0.1,
		Far:       100000.0,
		DZ:        DEFAULT_DZ,
	}
}

// NewCameraAt creates a camera at a specific position
func NewCameraAt(x, y, z float64) *Camera {
	cam := NewCamera()
	cam.Transform.SetPosition(x, y, z)
	return cam
}

// GetPosition returns the camera's world-space eye position.
func (cam *Camera) GetPosition() Point {
	return cam.Transform.GetWorldPosition()
}

// LookAt makes the camera look at a target position
func (cam *Camera) LookAt(target Point) {
	cam.Transform.LookAt(target)
}

// GenerateRay builds a primary ray through pixel (px, py) of a
// screenW x screenH frame, using the camera's FOV and forward/right/up
// basis. Pixel centers are sampled at the +0.5 offset.
func (cam *Camera) GenerateRay(px, py, screenW, screenH int) Ray {
	aspect := float64(screenW) / float64(screenH)
	u := (float64(px)+0.5)/float64(screenW)*2 - 1
	v := 1 - (float64(py)+0.5)/float64(screenH)*2

	halfHeight := math.Tan(cam.FOV.Y * math.Pi / 180.0 / 2.0)
	halfWidth := halfHeight * aspect

	forward := cam.Transform.GetForwardVector()
	right := cam.Transform.GetRightVector()
	up := cam.Transform.GetUpVector()

	dir := forward.
		Add(right.Scale(u * halfWidth)).
		Add(up.Scale(v * halfHeight))

	return NewRay(cam.GetPosition(), dir)
}

// CameraPresetCount must match the number of entries populated by
// NewScene's cameraPos/cameraTarget arrays.
const CameraPresetCount = 3

// NewCameraForPreset builds a camera positioned and aimed at evaluation
// preset i of scene (cycled with %CameraPresetCount so any i is valid).
func NewCameraForPreset(scene *Scene, i int) *Camera {
	pos := scene.GetCameraPos(i)
	target := scene.GetCameraTarget(i)
	cam := NewCameraAt(pos.X, pos.Y, pos.Z)
	cam.LookAt(target)
	return cam
}
