package components

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/exp/constraints"
)

// Keep the pitch away from the poles so the view matrix never
// degenerates.
const maxPitch = float32(math.Pi/2) * 0.99

// OrbitSettings are the sensitivities applied to raw input deltas.
type OrbitSettings struct {
	RotateSensitivityX float32
	RotateSensitivityY float32
	ZoomSensitivity    float32
	PanSensitivity     float32
	AutoRotateSpeed    float32
	MinRadius          float32
	MaxRadius          float32
}

func DefaultOrbitSettings() OrbitSettings {
	return OrbitSettings{
		RotateSensitivityX: 0.004,
		RotateSensitivityY: 0.006,
		ZoomSensitivity:    0.08,
		PanSensitivity:     0.004,
		AutoRotateSpeed:    0.5,
		MinRadius:          0.5,
		MaxRadius:          50.0,
	}
}

/**
 * @brief Represents a camera orbiting a target point, driven by mouse
 * drag and wheel input. The position is derived from spherical
 * coordinates; callers read it through Position() every frame.
 */
type Camera struct {
	settings OrbitSettings

	target mgl32.Vec3
	yaw    float32
	pitch  float32
	radius float32

	// Starting pose restored by Reset.
	homeTarget mgl32.Vec3
	homeYaw    float32
	homePitch  float32
	homeRadius float32

	FovY float32
}

// NewCamera places the camera at the viewer's starting pose, a little
// above and in front of the origin, looking at it.
func NewCamera(settings OrbitSettings) *Camera {
	position := mgl32.Vec3{0.0, 1.0, 3.0}
	target := mgl32.Vec3{0.0, 0.0, 0.0}

	offset := position.Sub(target)
	radius := offset.Len()

	c := &Camera{
		settings: settings,
		target:   target,
		yaw:      float32(math.Atan2(float64(offset.X()), float64(offset.Z()))),
		pitch:    float32(math.Asin(float64(offset.Y() / radius))),
		radius:   radius,
		FovY:     45.0,
	}
	c.homeTarget = c.target
	c.homeYaw = c.yaw
	c.homePitch = c.pitch
	c.homeRadius = c.radius
	return c
}

// Orbit rotates the camera around the target from a mouse drag delta.
func (c *Camera) Orbit(dx, dy float32) {
	c.yaw -= dx * c.settings.RotateSensitivityX
	c.pitch += dy * c.settings.RotateSensitivityY
	c.pitch = clamp(c.pitch, -maxPitch, maxPitch)
}

// Zoom moves the camera along the view ray. Positive wheel movement
// zooms in. The radius is clamped so the camera can neither cross the
// target nor drift away unrecoverably.
func (c *Camera) Zoom(wheel float32) {
	c.radius -= wheel * c.settings.ZoomSensitivity * c.radius
	c.radius = clamp(c.radius, c.settings.MinRadius, c.settings.MaxRadius)
}

// Pan shifts the target in the view plane from a mouse drag delta.
// The shift scales with the radius so a drag covers the same fraction
// of the screen at any zoom level.
func (c *Camera) Pan(dx, dy float32) {
	forward := c.target.Sub(c.Position()).Normalize()
	right := forward.Cross(c.Up()).Normalize()
	up := right.Cross(forward)

	scale := c.settings.PanSensitivity * c.radius
	c.target = c.target.Sub(right.Mul(dx * scale)).Add(up.Mul(dy * scale))
}

// AutoRotate spins the camera slowly around the target while the user
// is idle. delta is the frame time in seconds.
func (c *Camera) AutoRotate(delta float64) {
	c.yaw += c.settings.AutoRotateSpeed * float32(delta)
}

// Reset restores the starting pose.
func (c *Camera) Reset() {
	c.target = c.homeTarget
	c.yaw = c.homeYaw
	c.pitch = c.homePitch
	c.radius = c.homeRadius
}

// Position derives the camera position from the orbit state.
func (c *Camera) Position() mgl32.Vec3 {
	cosPitch := float32(math.Cos(float64(c.pitch)))
	return mgl32.Vec3{
		c.target.X() + c.radius*cosPitch*float32(math.Sin(float64(c.yaw))),
		c.target.Y() + c.radius*float32(math.Sin(float64(c.pitch))),
		c.target.Z() + c.radius*cosPitch*float32(math.Cos(float64(c.yaw))),
	}
}

func (c *Camera) Target() mgl32.Vec3 {
	return c.target
}

func (c *Camera) Up() mgl32.Vec3 {
	return mgl32.Vec3{0.0, 1.0, 0.0}
}

func (c *Camera) Radius() float32 {
	return c.radius
}

func clamp[T constraints.Ordered](value, min, max T) T {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
