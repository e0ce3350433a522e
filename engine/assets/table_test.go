package assets

import (
	"testing"

	"github.com/spaghettifunk/bricklayer/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssetTableDerivesCompanionPaths(t *testing.T) {
	backend := newFakeBackend()
	table := NewAssetTable(backend, []string{"/models/crate.obj", "oj"})

	require.Equal(t, 2, table.Len())

	meshPath, texturePath := table.Paths(0)
	assert.Equal(t, "/models/crate.obj", meshPath)
	assert.Equal(t, "/models/crate.aseprite", texturePath)

	_, texturePath = table.Paths(1)
	assert.Empty(t, texturePath, "too-short mesh path gets no companion")
}

func TestCommitMeshReleasesPrevious(t *testing.T) {
	backend := newFakeBackend()
	table := NewAssetTable(backend, []string{"crate.obj"})

	first, err := backend.LoadMesh("crate.obj")
	require.NoError(t, err)
	table.CommitMesh(0, first)

	second, err := backend.LoadMesh("crate.obj")
	require.NoError(t, err)
	table.CommitMesh(0, second)

	assert.Equal(t, 1, backend.releasedMeshes[first])
	assert.Zero(t, backend.releasedMeshes[second])

	meshGen, _ := table.Generations(0)
	assert.Equal(t, uint32(2), meshGen)
}

func TestCommitMeshRebindsSurvivingTexture(t *testing.T) {
	backend := newFakeBackend()
	table := NewAssetTable(backend, []string{"crate.obj"})

	mesh, _ := backend.LoadMesh("crate.obj")
	table.CommitMesh(0, mesh)

	texture, _ := backend.UploadTexture(&spriteImage1x1)
	require.True(t, table.CommitTexture(0, texture))
	assert.Equal(t, texture, backend.bound[mesh])

	replacement, _ := backend.LoadMesh("crate.obj")
	table.CommitMesh(0, replacement)

	assert.Equal(t, texture, backend.bound[replacement], "texture survives a mesh reload")
	assert.Zero(t, backend.releasedTextures[texture])
}

func TestCommitTextureWithoutMaterialIsNoop(t *testing.T) {
	backend := newFakeBackend()
	table := NewAssetTable(backend, []string{"crate.obj"})

	texture, _ := backend.UploadTexture(&spriteImage1x1)
	assert.False(t, table.CommitTexture(0, texture), "no mesh loaded yet")
	assert.Equal(t, 1, backend.releasedTextures[texture], "unbindable texture is released, not leaked")

	backend.meshMaterials = 0
	bare, _ := backend.LoadMesh("crate.obj")
	table.CommitMesh(0, bare)

	texture2, _ := backend.UploadTexture(&spriteImage1x1)
	assert.False(t, table.CommitTexture(0, texture2), "mesh has no material slot")
	assert.Equal(t, 1, backend.releasedTextures[texture2])

	_, textureGen := table.Generations(0)
	assert.Zero(t, textureGen)
}

func TestCommitTextureReleasesPrevious(t *testing.T) {
	backend := newFakeBackend()
	table := NewAssetTable(backend, []string{"crate.obj"})

	mesh, _ := backend.LoadMesh("crate.obj")
	table.CommitMesh(0, mesh)

	first, _ := backend.UploadTexture(&spriteImage1x1)
	second, _ := backend.UploadTexture(&spriteImage1x1)
	require.True(t, table.CommitTexture(0, first))
	require.True(t, table.CommitTexture(0, second))

	assert.Equal(t, 1, backend.releasedTextures[first])
	assert.Zero(t, backend.releasedTextures[second])
	assert.Equal(t, second, backend.bound[mesh])
}

func TestEachSkipsEmptySlots(t *testing.T) {
	backend := newFakeBackend()
	table := NewAssetTable(backend, []string{"a.obj", "b.obj"})

	mesh, _ := backend.LoadMesh("b.obj")
	table.CommitMesh(1, mesh)

	var visited []int
	table.Each(func(slot int, m renderer.MeshHandle) {
		visited = append(visited, slot)
		assert.Equal(t, mesh, m)
	})
	assert.Equal(t, []int{1}, visited)
}

func TestReleaseAllFreesEverythingOnce(t *testing.T) {
	backend := newFakeBackend()
	table := NewAssetTable(backend, []string{"a.obj", "b.obj"})

	meshA, _ := backend.LoadMesh("a.obj")
	meshB, _ := backend.LoadMesh("b.obj")
	table.CommitMesh(0, meshA)
	table.CommitMesh(1, meshB)
	texture, _ := backend.UploadTexture(&spriteImage1x1)
	require.True(t, table.CommitTexture(0, texture))

	table.ReleaseAll()
	table.ReleaseAll() // second call must not double-free

	assert.Equal(t, 1, backend.releasedMeshes[meshA])
	assert.Equal(t, 1, backend.releasedMeshes[meshB])
	assert.Equal(t, 1, backend.releasedTextures[texture])

	table.Each(func(int, renderer.MeshHandle) {
		t.Fatal("no slot should hold a mesh after ReleaseAll")
	})
}
