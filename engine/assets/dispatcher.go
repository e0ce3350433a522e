package assets

import (
	"os"

	"github.com/spaghettifunk/bricklayer/engine/core"
	"github.com/spaghettifunk/bricklayer/engine/renderer"
	"github.com/spaghettifunk/bricklayer/engine/sprite"
)

// Dispatcher drains the reload queue once per frame and commits results
// into the asset table. It runs exclusively on the render thread,
// because mesh loads and texture uploads go through the graphics
// context. Decoding happens before the table lock is taken; the lock
// only covers the handle swap.
type Dispatcher struct {
	table   *AssetTable
	queue   *ReloadQueue
	backend renderer.Backend
}

func NewDispatcher(table *AssetTable, queue *ReloadQueue, backend renderer.Backend) *Dispatcher {
	return &Dispatcher{
		table:   table,
		queue:   queue,
		backend: backend,
	}
}

// Drain processes whatever is queued and returns how many requests it
// handled. It never waits for new requests; an empty queue costs one
// mutex acquisition.
func (d *Dispatcher) Drain() int {
	processed := 0
	for {
		req, ok := d.queue.Pop()
		if !ok {
			return processed
		}
		processed++

		switch req.Kind {
		case RequestMesh:
			d.ReloadMesh(req.Slot, req.Path)
		case RequestTexture:
			d.ReloadTexture(req.Slot, req.Path)
		default:
			core.LogWarn("dropping reload request of unknown kind %s", req.Kind)
		}
	}
}

// ReloadMesh loads a mesh and commits it into the slot. On failure the
// slot keeps its previous mesh; no failure here affects any other slot
// or the frame loop.
func (d *Dispatcher) ReloadMesh(slot int, path string) {
	mesh, err := d.backend.LoadMesh(path)
	if err != nil {
		core.LogError("slot %d: loading mesh %q: %s", slot, path, err)
		return
	}
	if mesh == nil || !mesh.Valid() {
		core.LogError("slot %d: loading mesh %q: %s", slot, path, renderer.ErrMeshLoadFailed)
		return
	}
	d.table.CommitMesh(slot, mesh)
	core.LogDebug("slot %d: mesh committed from %q", slot, path)
}

// ReloadTexture reads and decodes the companion file, uploads the
// raster and commits the handle. Each failure mode leaves the previous
// texture in place: a vanished file, any decoder error from the typed
// taxonomy, or a failed upload.
func (d *Dispatcher) ReloadTexture(slot int, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		core.LogDebug("slot %d: companion %q unreadable: %s", slot, path, err)
		return
	}

	img, err := sprite.Decode(data)
	if err != nil {
		core.LogError("slot %d: decoding %q: %s", slot, path, err)
		return
	}

	texture, err := d.backend.UploadTexture(img)
	if err != nil {
		core.LogError("slot %d: uploading %dx%d texture: %s", slot, img.Width, img.Height, err)
		return
	}

	if !d.table.CommitTexture(slot, texture) {
		core.LogDebug("slot %d: mesh has no material yet, texture reload skipped", slot)
	}
}
