package world

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

func TestSparseGrid_UnloadedChunk(t *testing.T) {
	g := NewSparseGrid()
	pos := vec.Vec3{X: 100, Y: 10, Z: 200}

	_, err := g.GetCell(pos)
	assert.ErrorIs(t, err, ErrCellUnavailable, "Чтение из незагруженного чанка - ошибка доступа")
	assert.ErrorIs(t, err, ErrChunkNotLoaded)
	assert.ErrorIs(t, g.SetCellMaterial(pos, block.Air), ErrCellUnavailable)

	g.LoadChunk(pos.ToChunkCoords())
	cell, err := g.GetCell(pos)
	require.NoError(t, err)
	assert.True(t, cell.IsAir(), "Пустая ячейка загруженного чанка - воздух")
}

func TestSparseGrid_OutOfBounds(t *testing.T) {
	g := NewSparseGrid()
	require.NoError(t, g.Place(vec.Vec3{}, NewCell(block.Stone)))

	_, err := g.GetCell(vec.Vec3{Y: MaxY + 1})
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.ErrorIs(t, err, ErrCellUnavailable)
}

func TestSparseGrid_FarCoordinatesRejected(t *testing.T) {
	g := NewSparseGrid()
	require.NoError(t, g.Place(vec.Vec3{Y: 10}, NewCell("minecraft:iron_ore")))

	far := vec.Vec3{X: 1 << 36, Y: 10}
	_, err := g.GetCell(far)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.ErrorIs(t, g.Place(far, NewCell(block.Stone)), ErrCellUnavailable)
	assert.ErrorIs(t, g.LoadChunk(far.ToChunkCoords()), ErrOutOfBounds)

	edge := vec.Vec3{X: MaxXZ, Y: 10, Z: MinXZ}
	require.NoError(t, g.Place(edge, NewCell(block.Stone)))
	cell, err := g.GetCell(edge)
	require.NoError(t, err)
	assert.Equal(t, block.Stone, cell.Material)
}

func TestInBounds(t *testing.T) {
	assert.True(t, InBounds(vec.Vec3{X: MaxXZ, Y: MaxY, Z: MinXZ}))
	assert.False(t, InBounds(vec.Vec3{Y: MinY - 1}))
	assert.False(t, InBounds(vec.Vec3{X: MaxXZ + 1}))
	assert.False(t, InBounds(vec.Vec3{Z: MinXZ - 1}))
	assert.False(t, InBounds(vec.Vec3{X: -1 << 36}))
}

func TestSparseGrid_SetAndClone(t *testing.T) {
	g := NewSparseGrid()
	pos := vec.Vec3{X: 1, Y: 64, Z: -1}
	require.NoError(t, g.Place(pos, NewCell("minecraft:wheat").WithState(block.StateGrowth, 7)))

	cell, err := g.GetCell(pos)
	require.NoError(t, err)
	v, ok := cell.StateValue(block.StateGrowth)
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	// Изменение копии не затрагивает сетку
	cell.State[block.StateGrowth] = 0
	again, _ := g.GetCell(pos)
	v, _ = again.StateValue(block.StateGrowth)
	assert.Equal(t, 7, v)

	require.NoError(t, g.SetCellMaterial(pos, block.Air))
	assert.Empty(t, g.QueryCells(vec.Vec3{X: -10, Y: -64, Z: -10}, vec.Vec3{X: 10, Y: 300, Z: 10}))
}

func TestSparseGrid_SpawnYieldCaps(t *testing.T) {
	g := NewSparseGrid()
	origin := vec.Vec3{X: 3, Y: 12, Z: 3}
	g.LoadChunk(origin.ToChunkCoords())

	require.NoError(t, g.SpawnYield("minecraft:coal", 100, origin))
	assert.ErrorIs(t, g.SpawnYield("minecraft:coal", 0, origin), ErrInvalidQuantity)
	assert.ErrorIs(t, g.SpawnYield("minecraft:coal", 1, vec.Vec3{X: 500, Y: 12}), ErrCellUnavailable)

	drops := g.TakeDrops()
	require.Len(t, drops, 1)
	assert.Equal(t, StackLimit, drops[0].Count, "Количество молча ограничивается размером стопки")
	assert.Empty(t, g.Drops())
}
