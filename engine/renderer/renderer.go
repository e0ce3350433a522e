package renderer

import (
	"errors"

	"github.com/spaghettifunk/bricklayer/engine/renderer/components"
	"github.com/spaghettifunk/bricklayer/engine/sprite"
)

// ErrMeshLoadFailed is returned by a Backend when the model file could
// not be turned into a drawable mesh.
var ErrMeshLoadFailed = errors.New("renderer: mesh load failed")

// MeshHandle is an opaque, backend-owned mesh. MaterialCount reports
// how many material slots the mesh carries; a texture can only be bound
// when there is at least one.
type MeshHandle interface {
	Valid() bool
	MaterialCount() int
}

// TextureHandle is an opaque, backend-owned GPU texture.
type TextureHandle interface {
	Valid() bool
}

// WindowConfig carries the windowing parameters a backend needs at
// startup.
type WindowConfig struct {
	Width     int32
	Height    int32
	Title     string
	TargetFPS int32
}

// InputState is one frame's worth of polled input, already translated
// to viewer actions.
type InputState struct {
	OrbitActive     bool
	PanActive       bool
	MouseDeltaX     float32
	MouseDeltaY     float32
	WheelMove       float32
	ToggleGrid      bool
	ToggleWireframe bool
	ResetCamera     bool
}

// Backend is the rendering collaborator. Every method that touches GPU
// state must be called from the thread that owns the graphics context;
// the viewer guarantees that by doing all loads, uploads and draws from
// the frame loop.
type Backend interface {
	Startup(cfg WindowConfig) error
	Shutdown() error

	ShouldClose() bool
	PollInput() InputState

	BeginFrame(cam *components.Camera)
	DrawMesh(m MeshHandle, wireframe bool)
	DrawGrid()
	DrawStats(fps float64, frameTimeMS float64)
	EndFrame()

	LoadMesh(path string) (MeshHandle, error)
	ReleaseMesh(m MeshHandle)
	UploadTexture(img *sprite.Image) (TextureHandle, error)
	ReleaseTexture(t TextureHandle)
	BindTexture(m MeshHandle, t TextureHandle) error
}
