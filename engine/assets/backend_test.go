package assets

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/bricklayer/engine/renderer"
	"github.com/spaghettifunk/bricklayer/engine/renderer/components"
	"github.com/spaghettifunk/bricklayer/engine/sprite"
)

type fakeMesh struct {
	name      string
	materials int
}

func (m *fakeMesh) Valid() bool        { return m != nil }
func (m *fakeMesh) MaterialCount() int { return m.materials }

type fakeTexture struct {
	name string
}

func (t *fakeTexture) Valid() bool { return t != nil }

// fakeBackend records every load, upload, release and bind so tests
// can assert on handle lifecycles without a GPU.
type fakeBackend struct {
	mu sync.Mutex

	meshMaterials int // material count for the next loaded mesh
	failMeshLoad  bool
	failUpload    bool

	loadedMeshes     []*fakeMesh
	uploadedTextures []*fakeTexture
	releasedMeshes   map[renderer.MeshHandle]int
	releasedTextures map[renderer.TextureHandle]int
	bound            map[renderer.MeshHandle]renderer.TextureHandle
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		meshMaterials:    1,
		releasedMeshes:   make(map[renderer.MeshHandle]int),
		releasedTextures: make(map[renderer.TextureHandle]int),
		bound:            make(map[renderer.MeshHandle]renderer.TextureHandle),
	}
}

func (b *fakeBackend) Startup(renderer.WindowConfig) error { return nil }
func (b *fakeBackend) Shutdown() error                     { return nil }
func (b *fakeBackend) ShouldClose() bool                   { return true }
func (b *fakeBackend) PollInput() renderer.InputState      { return renderer.InputState{} }
func (b *fakeBackend) BeginFrame(*components.Camera)       {}
func (b *fakeBackend) DrawMesh(renderer.MeshHandle, bool)  {}
func (b *fakeBackend) DrawGrid()                           {}
func (b *fakeBackend) DrawStats(float64, float64)          {}
func (b *fakeBackend) EndFrame()                           {}

func (b *fakeBackend) LoadMesh(path string) (renderer.MeshHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failMeshLoad {
		return nil, renderer.ErrMeshLoadFailed
	}
	m := &fakeMesh{
		name:      fmt.Sprintf("%s#%d", path, len(b.loadedMeshes)),
		materials: b.meshMaterials,
	}
	b.loadedMeshes = append(b.loadedMeshes, m)
	return m, nil
}

func (b *fakeBackend) ReleaseMesh(m renderer.MeshHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releasedMeshes[m]++
}

func (b *fakeBackend) UploadTexture(img *sprite.Image) (renderer.TextureHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failUpload {
		return nil, fmt.Errorf("upload refused")
	}
	t := &fakeTexture{name: fmt.Sprintf("%dx%d#%d", img.Width, img.Height, len(b.uploadedTextures))}
	b.uploadedTextures = append(b.uploadedTextures, t)
	return t, nil
}

func (b *fakeBackend) ReleaseTexture(t renderer.TextureHandle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releasedTextures[t]++
}

func (b *fakeBackend) BindTexture(m renderer.MeshHandle, t renderer.TextureHandle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m.MaterialCount() == 0 {
		return fmt.Errorf("no material")
	}
	b.bound[m] = t
	return nil
}

var _ renderer.Backend = (*fakeBackend)(nil)

// spriteImage1x1 is a minimal decoded raster for upload tests.
var spriteImage1x1 = sprite.Image{Width: 1, Height: 1, Pix: []byte{255, 255, 255, 255}}
