package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/bricklayer/engine/assets"
	"github.com/spaghettifunk/bricklayer/engine/core"
	"github.com/spaghettifunk/bricklayer/engine/renderer"
	"github.com/spaghettifunk/bricklayer/engine/renderer/components"
)

type Stage uint8

const (
	// Viewer is in an uninitialized state
	ViewerStageUninitialized Stage = iota
	// Viewer is currently initializing
	ViewerStageInitializing
	// Viewer initialization is complete
	ViewerStageInitialized
	// Viewer is currently running
	ViewerStageRunning
	// Viewer is in the process of shutting down
	ViewerStageShuttingDown
)

// Viewer owns the shared state of the program: the asset table, the
// reload pipeline and the camera. Run executes the frame loop on the
// calling goroutine, which must be the one owning the graphics
// context; everything GPU-facing happens there.
type Viewer struct {
	currentStage Stage
	config       *Config
	backend      renderer.Backend

	table      *assets.AssetTable
	queue      *assets.ReloadQueue
	watcher    *assets.Watcher
	dispatcher *assets.Dispatcher
	camera     *components.Camera

	clock    *core.Clock
	metrics  *core.Metrics
	lastTime float64

	gridEnabled      bool
	wireframeEnabled bool
	quitRequested    atomic.Bool
}

// New wires the viewer together. meshPaths is the ordered,
// de-duplication-free list of mesh files to display; it must not be
// empty.
func New(config *Config, meshPaths []string, backend renderer.Backend) (*Viewer, error) {
	if len(meshPaths) == 0 {
		return nil, fmt.Errorf("no mesh files were supplied")
	}

	queue := assets.NewReloadQueue()
	table := assets.NewAssetTable(backend, meshPaths)

	return &Viewer{
		currentStage:     ViewerStageUninitialized,
		config:           config,
		backend:          backend,
		table:            table,
		queue:            queue,
		watcher:          assets.NewWatcher(queue, time.Duration(config.Watcher.PollIntervalMS)*time.Millisecond),
		dispatcher:       assets.NewDispatcher(table, queue, backend),
		camera:           components.NewCamera(config.OrbitSettings()),
		clock:            core.NewClock(),
		metrics:          core.NewMetrics(),
		gridEnabled:      config.Scene.Grid,
		wireframeEnabled: config.Scene.Wireframe,
	}, nil
}

// Initialize starts the backend, performs the initial loads and spins
// up the watcher. Must be called from the render thread.
func (v *Viewer) Initialize() error {
	v.currentStage = ViewerStageInitializing
	core.SetLogLevel(v.config.LogLevel)

	if err := v.backend.Startup(renderer.WindowConfig{
		Width:     v.config.Window.Width,
		Height:    v.config.Window.Height,
		Title:     v.config.Window.Title,
		TargetFPS: v.config.Window.TargetFPS,
	}); err != nil {
		return err
	}

	for i := 0; i < v.table.Len(); i++ {
		meshPath, texturePath := v.table.Paths(i)

		v.watcher.Track(i, assets.RequestMesh, meshPath)
		v.dispatcher.ReloadMesh(i, meshPath)

		if texturePath != "" {
			v.watcher.Track(i, assets.RequestTexture, texturePath)
			v.dispatcher.ReloadTexture(i, texturePath)
		}
	}
	v.watcher.Start()

	core.LogInfo("viewer initialized with %d asset slot(s)", v.table.Len())
	v.currentStage = ViewerStageInitialized
	return nil
}

// Run executes the frame loop until the window closes or Stop is
// called, then shuts everything down. Blocks the calling goroutine.
func (v *Viewer) Run() error {
	if v.currentStage != ViewerStageInitialized {
		return fmt.Errorf("viewer must be initialized before running")
	}
	v.currentStage = ViewerStageRunning

	v.clock.Start()
	v.lastTime = 0

	for !v.backend.ShouldClose() && !v.quitRequested.Load() {
		v.clock.Update()
		now := v.clock.ElapsedSeconds()
		delta := now - v.lastTime
		v.lastTime = now

		v.frame(delta)
		v.metrics.Update(delta)
	}

	return v.shutdown()
}

// Stop requests a cooperative shutdown. Safe to call from any
// goroutine; the frame loop notices on its next iteration.
func (v *Viewer) Stop() {
	v.quitRequested.Store(true)
}

func (v *Viewer) frame(delta float64) {
	// Commit whatever the watcher produced since the last frame. The
	// drain never blocks waiting for new requests.
	v.dispatcher.Drain()

	in := v.backend.PollInput()
	if in.ToggleGrid {
		v.gridEnabled = !v.gridEnabled
	}
	if in.ToggleWireframe {
		v.wireframeEnabled = !v.wireframeEnabled
	}
	if in.ResetCamera {
		v.camera.Reset()
	}
	if in.PanActive {
		v.camera.Pan(in.MouseDeltaX, in.MouseDeltaY)
	} else if in.OrbitActive {
		v.camera.Orbit(in.MouseDeltaX, in.MouseDeltaY)
	} else if v.config.Camera.AutoRotate {
		v.camera.AutoRotate(delta)
	}
	if in.WheelMove != 0 {
		v.camera.Zoom(in.WheelMove)
	}

	v.backend.BeginFrame(v.camera)
	v.table.Each(func(slot int, mesh renderer.MeshHandle) {
		v.backend.DrawMesh(mesh, v.wireframeEnabled)
	})
	if v.gridEnabled {
		v.backend.DrawGrid()
	}
	fps, frameTime := v.metrics.Frame()
	v.backend.DrawStats(fps, frameTime)
	v.backend.EndFrame()
}

func (v *Viewer) shutdown() error {
	v.currentStage = ViewerStageShuttingDown
	core.LogInfo("shutting down")

	v.watcher.Stop()
	v.table.ReleaseAll()
	return v.backend.Shutdown()
}
