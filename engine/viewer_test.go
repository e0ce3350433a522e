package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/bricklayer/engine/renderer"
	"github.com/spaghettifunk/bricklayer/engine/renderer/components"
	"github.com/spaghettifunk/bricklayer/engine/sprite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loopMesh struct{ materials int }

func (m *loopMesh) Valid() bool        { return m != nil }
func (m *loopMesh) MaterialCount() int { return m.materials }

type loopTexture struct{}

func (t *loopTexture) Valid() bool { return t != nil }

// loopBackend closes the window after a fixed number of frames and
// records what the frame loop asked of it.
type loopBackend struct {
	framesRemaining int
	input           renderer.InputState

	startedUp        bool
	shutDown         bool
	frameTargets     []mgl32.Vec3
	loadedMeshes     int
	releasedMeshes   int
	beginFrames      int
	drawnMeshes      int
	wireframeDraws   int
	gridDraws        int
	statsDraws       int
	endFrames        int
	releasedTextures int
}

func (b *loopBackend) Startup(renderer.WindowConfig) error { b.startedUp = true; return nil }
func (b *loopBackend) Shutdown() error                     { b.shutDown = true; return nil }

func (b *loopBackend) ShouldClose() bool {
	if b.framesRemaining <= 0 {
		return true
	}
	b.framesRemaining--
	return false
}

func (b *loopBackend) PollInput() renderer.InputState {
	in := b.input
	b.input = renderer.InputState{}
	return in
}

func (b *loopBackend) BeginFrame(cam *components.Camera) {
	b.beginFrames++
	b.frameTargets = append(b.frameTargets, cam.Target())
}

func (b *loopBackend) DrawMesh(_ renderer.MeshHandle, wireframe bool) {
	b.drawnMeshes++
	if wireframe {
		b.wireframeDraws++
	}
}

func (b *loopBackend) DrawGrid()              { b.gridDraws++ }
func (b *loopBackend) DrawStats(_, _ float64) { b.statsDraws++ }
func (b *loopBackend) EndFrame()              { b.endFrames++ }

func (b *loopBackend) LoadMesh(string) (renderer.MeshHandle, error) {
	b.loadedMeshes++
	return &loopMesh{materials: 1}, nil
}

func (b *loopBackend) ReleaseMesh(renderer.MeshHandle) { b.releasedMeshes++ }

func (b *loopBackend) UploadTexture(*sprite.Image) (renderer.TextureHandle, error) {
	return &loopTexture{}, nil
}

func (b *loopBackend) ReleaseTexture(renderer.TextureHandle) { b.releasedTextures++ }

func (b *loopBackend) BindTexture(renderer.MeshHandle, renderer.TextureHandle) error { return nil }

var _ renderer.Backend = (*loopBackend)(nil)

func tempMesh(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.obj")
	require.NoError(t, os.WriteFile(path, []byte("o model\n"), 0o644))
	return path
}

func TestNewRequiresMeshPaths(t *testing.T) {
	_, err := New(DefaultConfig(), nil, &loopBackend{})
	assert.Error(t, err)
}

func TestRunRequiresInitialize(t *testing.T) {
	v, err := New(DefaultConfig(), []string{tempMesh(t)}, &loopBackend{})
	require.NoError(t, err)
	assert.Error(t, v.Run())
}

func TestViewerLifecycle(t *testing.T) {
	backend := &loopBackend{framesRemaining: 3}
	v, err := New(DefaultConfig(), []string{tempMesh(t)}, backend)
	require.NoError(t, err)

	require.NoError(t, v.Initialize())
	assert.True(t, backend.startedUp)
	assert.Equal(t, 1, backend.loadedMeshes, "initial mesh load happens during Initialize")

	require.NoError(t, v.Run())

	assert.Equal(t, 3, backend.beginFrames)
	assert.Equal(t, 3, backend.endFrames)
	assert.Equal(t, 3, backend.drawnMeshes)
	assert.Equal(t, 3, backend.gridDraws, "grid defaults to on")
	assert.Equal(t, 3, backend.statsDraws)
	assert.Zero(t, backend.wireframeDraws)

	assert.True(t, backend.shutDown)
	assert.Equal(t, 1, backend.releasedMeshes, "shutdown releases the table")
}

func TestViewerTogglesApplyNextFrame(t *testing.T) {
	backend := &loopBackend{
		framesRemaining: 2,
		input:           renderer.InputState{ToggleGrid: true, ToggleWireframe: true},
	}
	cfg := DefaultConfig()
	v, err := New(cfg, []string{tempMesh(t)}, backend)
	require.NoError(t, err)
	require.NoError(t, v.Initialize())
	require.NoError(t, v.Run())

	// Both frames see the toggled state because input is read before
	// drawing; the second frame gets no further toggle.
	assert.Zero(t, backend.gridDraws)
	assert.Equal(t, 2, backend.wireframeDraws)
}

func TestViewerPanInputMovesCameraTarget(t *testing.T) {
	backend := &loopBackend{
		framesRemaining: 2,
		input:           renderer.InputState{PanActive: true, MouseDeltaX: 120, MouseDeltaY: -40},
	}
	v, err := New(DefaultConfig(), []string{tempMesh(t)}, backend)
	require.NoError(t, err)
	require.NoError(t, v.Initialize())
	require.NoError(t, v.Run())

	require.Len(t, backend.frameTargets, 2)
	assert.NotEqual(t, mgl32.Vec3{}, backend.frameTargets[0], "pan applies before the frame is drawn")
	assert.Equal(t, backend.frameTargets[0], backend.frameTargets[1], "no further input, no further pan")
}

func TestViewerStopEndsRun(t *testing.T) {
	backend := &loopBackend{framesRemaining: 1 << 30}
	v, err := New(DefaultConfig(), []string{tempMesh(t)}, backend)
	require.NoError(t, err)
	require.NoError(t, v.Initialize())

	done := make(chan error, 1)
	go func() { done <- v.Run() }()

	v.Stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
	assert.True(t, backend.shutDown)
}
