// Package raylib implements the rendering backend on top of raylib-go.
// It is the only package in the repository that talks to the GPU; every
// call here must come from the render thread.
package raylib

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spaghettifunk/bricklayer/engine/renderer"
	"github.com/spaghettifunk/bricklayer/engine/renderer/components"
	"github.com/spaghettifunk/bricklayer/engine/sprite"
)

func init() {
	// Window and GL calls must run on the main OS thread
	runtime.LockOSThread()
}

// Background colors: dimmed gray while the window has focus, black
// otherwise, so it is obvious at a glance which window eats the input.
var (
	focusedBackground = rl.NewColor(0x48, 0x48, 0x48, 0xFF)
	blurredBackground = rl.Black
)

type meshHandle struct {
	model rl.Model
}

func (h *meshHandle) Valid() bool {
	return h != nil && h.model.MeshCount > 0
}

func (h *meshHandle) MaterialCount() int {
	return int(h.model.MaterialCount)
}

type textureHandle struct {
	texture rl.Texture2D
}

func (h *textureHandle) Valid() bool {
	return h != nil && h.texture.ID != 0
}

// Backend drives a raylib window. The zero value is usable; Startup
// opens the window.
type Backend struct {
	inMode3D bool
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Startup(cfg renderer.WindowConfig) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(cfg.Width, cfg.Height, cfg.Title)
	if !rl.IsWindowReady() {
		return fmt.Errorf("renderer: window creation failed")
	}
	rl.SetTargetFPS(cfg.TargetFPS)
	return nil
}

func (b *Backend) Shutdown() error {
	rl.CloseWindow()
	return nil
}

func (b *Backend) ShouldClose() bool {
	return rl.WindowShouldClose()
}

func (b *Backend) PollInput() renderer.InputState {
	if rl.IsMouseButtonPressed(rl.MouseButtonMiddle) {
		rl.DisableCursor()
	}
	if rl.IsMouseButtonReleased(rl.MouseButtonMiddle) {
		rl.EnableCursor()
	}

	delta := rl.GetMouseDelta()
	middleDown := rl.IsMouseButtonDown(rl.MouseButtonMiddle)
	shiftDown := rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
	return renderer.InputState{
		OrbitActive:     middleDown && !shiftDown,
		PanActive:       middleDown && shiftDown,
		MouseDeltaX:     delta.X,
		MouseDeltaY:     delta.Y,
		WheelMove:       rl.GetMouseWheelMove(),
		ToggleGrid:      rl.IsKeyPressed(rl.KeyG),
		ToggleWireframe: rl.IsKeyPressed(rl.KeyW),
		ResetCamera:     rl.IsKeyPressed(rl.KeyB),
	}
}

func (b *Backend) BeginFrame(cam *components.Camera) {
	rl.BeginDrawing()
	if rl.IsWindowFocused() {
		rl.ClearBackground(focusedBackground)
	} else {
		rl.ClearBackground(blurredBackground)
	}

	position := cam.Position()
	target := cam.Target()
	up := cam.Up()
	rl.BeginMode3D(rl.Camera3D{
		Position:   rl.NewVector3(position.X(), position.Y(), position.Z()),
		Target:     rl.NewVector3(target.X(), target.Y(), target.Z()),
		Up:         rl.NewVector3(up.X(), up.Y(), up.Z()),
		Fovy:       cam.FovY,
		Projection: rl.CameraPerspective,
	})
	b.inMode3D = true
}

func (b *Backend) DrawMesh(m renderer.MeshHandle, wireframe bool) {
	h := m.(*meshHandle)
	rl.DrawModel(h.model, rl.NewVector3(0, 0, 0), 1.0, rl.RayWhite)
	if wireframe {
		rl.DrawModelWires(h.model, rl.NewVector3(0, 0, 0), 1.0, rl.Black)
	}
}

func (b *Backend) DrawGrid() {
	rl.DrawGrid(20, 1.0)
}

func (b *Backend) DrawStats(fps float64, frameTimeMS float64) {
	b.endMode3D()
	rl.DrawText(fmt.Sprintf("%.0f fps / %.2f ms", fps, frameTimeMS), 10, 10, 10, rl.RayWhite)
}

func (b *Backend) EndFrame() {
	b.endMode3D()
	rl.EndDrawing()
}

func (b *Backend) endMode3D() {
	if b.inMode3D {
		rl.EndMode3D()
		b.inMode3D = false
	}
}

func (b *Backend) LoadMesh(path string) (renderer.MeshHandle, error) {
	model := rl.LoadModel(path)
	if model.MeshCount == 0 {
		return nil, fmt.Errorf("%w: %q", renderer.ErrMeshLoadFailed, path)
	}
	return &meshHandle{model: model}, nil
}

func (b *Backend) ReleaseMesh(m renderer.MeshHandle) {
	h := m.(*meshHandle)
	if h.Valid() {
		rl.UnloadModel(h.model)
		h.model = rl.Model{}
	}
}

func (b *Backend) UploadTexture(img *sprite.Image) (renderer.TextureHandle, error) {
	rlImage := rl.NewImageFromImage(img.NRGBA())
	defer rl.UnloadImage(rlImage)

	texture := rl.LoadTextureFromImage(rlImage)
	if texture.ID == 0 {
		return nil, fmt.Errorf("renderer: texture upload failed for %dx%d raster", img.Width, img.Height)
	}
	return &textureHandle{texture: texture}, nil
}

func (b *Backend) ReleaseTexture(t renderer.TextureHandle) {
	h := t.(*textureHandle)
	if h.Valid() {
		rl.UnloadTexture(h.texture)
		h.texture = rl.Texture2D{}
	}
}

func (b *Backend) BindTexture(m renderer.MeshHandle, t renderer.TextureHandle) error {
	mesh := m.(*meshHandle)
	texture := t.(*textureHandle)
	if mesh.MaterialCount() == 0 {
		return fmt.Errorf("renderer: mesh has no material to bind to")
	}

	materials := mesh.model.GetMaterials()
	rl.SetMaterialTexture(&materials[0], rl.MapDiffuse, texture.texture)
	return nil
}

// compile-time interface check
var _ renderer.Backend = (*Backend)(nil)
