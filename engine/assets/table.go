package assets

import (
	"sync"

	"github.com/google/uuid"
	"github.com/spaghettifunk/bricklayer/engine/core"
	"github.com/spaghettifunk/bricklayer/engine/renderer"
)

// AssetSlot is one tracked mesh plus its companion texture. Slots are
// created once at startup and never removed; reloads replace the
// handles in place, so a slot index stays valid for the lifetime of
// the program.
type AssetSlot struct {
	ID          uuid.UUID
	MeshPath    string
	TexturePath string // empty when no companion path could be derived

	Mesh    renderer.MeshHandle
	Texture renderer.TextureHandle

	// Bumped on every successful commit. Useful in logs to see which
	// save actually made it to the screen.
	MeshGeneration    uint32
	TextureGeneration uint32
}

// AssetTable is the shared table of loaded assets. A single mutex
// guards all slots; commits swap handles under the write lock so the
// render loop can never observe a handle mid-replacement, and handle
// release happens after the lock is dropped.
type AssetTable struct {
	mu      sync.RWMutex
	slots   []*AssetSlot
	backend renderer.Backend
}

// NewAssetTable creates one slot per input mesh path. A mesh path too
// short to derive a companion from simply gets no texture path; the
// mesh is shown untextured.
func NewAssetTable(backend renderer.Backend, meshPaths []string) *AssetTable {
	t := &AssetTable{
		slots:   make([]*AssetSlot, 0, len(meshPaths)),
		backend: backend,
	}
	for _, meshPath := range meshPaths {
		slot := &AssetSlot{
			ID:       uuid.New(),
			MeshPath: meshPath,
		}
		texturePath, err := TexturePathFor(meshPath)
		if err != nil {
			core.LogWarn("asset %s: no companion texture for %q: %s", slot.ID, meshPath, err)
		} else {
			slot.TexturePath = texturePath
		}
		t.slots = append(t.slots, slot)
	}
	return t
}

func (t *AssetTable) Len() int {
	return len(t.slots)
}

// Paths returns the two source paths of a slot. They are immutable
// after construction, so no lock is needed.
func (t *AssetTable) Paths(slot int) (meshPath, texturePath string) {
	s := t.slots[slot]
	return s.MeshPath, s.TexturePath
}

// Each calls fn for every slot holding a valid mesh, under the read
// lock. The render loop draws through this.
func (t *AssetTable) Each(fn func(slot int, mesh renderer.MeshHandle)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for i, s := range t.slots {
		if s.Mesh != nil && s.Mesh.Valid() {
			fn(i, s.Mesh)
		}
	}
}

// Generations reports the commit counters of a slot.
func (t *AssetTable) Generations(slot int) (mesh, texture uint32) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := t.slots[slot]
	return s.MeshGeneration, s.TextureGeneration
}

// CommitMesh swaps in a freshly loaded mesh handle and releases the
// previous one. The surviving texture is re-bound onto the new mesh
// when it has a material to hold it, matching how a model reload keeps
// its texture.
func (t *AssetTable) CommitMesh(slot int, mesh renderer.MeshHandle) {
	t.mu.Lock()
	s := t.slots[slot]
	old := s.Mesh
	s.Mesh = mesh
	s.MeshGeneration++
	if s.Texture != nil && s.Texture.Valid() && mesh.MaterialCount() > 0 {
		if err := t.backend.BindTexture(mesh, s.Texture); err != nil {
			core.LogError("asset %s: rebinding texture after mesh reload: %s", s.ID, err)
		}
	}
	t.mu.Unlock()

	if old != nil && old.Valid() {
		t.backend.ReleaseMesh(old)
	}
}

// CommitTexture swaps in a freshly uploaded texture and releases the
// previous one. When the slot's mesh has no material slot yet the
// commit is a no-op: the new texture is released and the table is left
// untouched until the next change on disk.
func (t *AssetTable) CommitTexture(slot int, texture renderer.TextureHandle) bool {
	t.mu.Lock()
	s := t.slots[slot]
	if s.Mesh == nil || !s.Mesh.Valid() || s.Mesh.MaterialCount() == 0 {
		t.mu.Unlock()
		t.backend.ReleaseTexture(texture)
		return false
	}

	old := s.Texture
	s.Texture = texture
	s.TextureGeneration++
	if err := t.backend.BindTexture(s.Mesh, texture); err != nil {
		core.LogError("asset %s: binding texture: %s", s.ID, err)
	}
	t.mu.Unlock()

	if old != nil && old.Valid() {
		t.backend.ReleaseTexture(old)
	}
	return true
}

// ReleaseAll frees every handle in the table. Called once at shutdown
// from the render thread.
func (t *AssetTable) ReleaseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.slots {
		if s.Texture != nil && s.Texture.Valid() {
			t.backend.ReleaseTexture(s.Texture)
			s.Texture = nil
		}
		if s.Mesh != nil && s.Mesh.Valid() {
			t.backend.ReleaseMesh(s.Mesh)
			s.Mesh = nil
		}
	}
}
