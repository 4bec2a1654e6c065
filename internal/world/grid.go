package world

import (
	"errors"
	"math"

	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// Границы высоты мира
const (
	MinY = -64
	MaxY = 319
)

// Горизонтальные границы: ключи хранилища кодируют X и Z как int32
const (
	MinXZ = math.MinInt32
	MaxXZ = math.MaxInt32
)

// StackLimit - максимальное количество единиц в одном выпадении
const StackLimit = 64

var (
	// ErrCellUnavailable - ячейку нельзя прочитать или изменить (вне загруженной области)
	ErrCellUnavailable = errors.New("cell unavailable")
	// ErrChunkNotLoaded - чанк ячейки не загружен
	ErrChunkNotLoaded = errors.New("chunk not loaded")
	// ErrOutOfBounds - координата вне границ мира
	ErrOutOfBounds = errors.New("coordinate out of world bounds")
	// ErrInvalidQuantity - неположительное количество для выпадения
	ErrInvalidQuantity = errors.New("invalid yield quantity")
)

// CellReader читает ячейки сетки
type CellReader interface {
	GetCell(pos vec.Vec3) (Cell, error)
}

// GridAccessor - контракт доступа к сетке для автоматизации:
// чтение, очистка ячейки и создание выпадающих предметов.
type GridAccessor interface {
	CellReader
	SetCellMaterial(pos vec.Vec3, id block.MaterialID) error
	// SpawnYield создаёт выпадение; quantity молча ограничивается StackLimit
	SpawnYield(id block.MaterialID, quantity int, pos vec.Vec3) error
}

// Grid - полный доступ к сетке, включая установку состояний ячейки
type Grid interface {
	GridAccessor
	SetCell(pos vec.Vec3, cell Cell) error
}

// ItemDrop - созданное в мире выпадение
type ItemDrop struct {
	Material block.MaterialID
	Count    int
	Pos      vec.Vec3
}

// CapQuantity ограничивает количество одного выпадения лимитом стопки
func CapQuantity(quantity int) (int, error) {
	if quantity <= 0 {
		return 0, ErrInvalidQuantity
	}
	if quantity > StackLimit {
		return StackLimit, nil
	}
	return quantity, nil
}

// InBounds проверяет высоту и горизонтальный диапазон координаты
func InBounds(pos vec.Vec3) bool {
	return pos.Y >= MinY && pos.Y <= MaxY && inRangeXZ(pos.X) && inRangeXZ(pos.Z)
}

// ChunkInBounds проверяет, что колонна чанка лежит в горизонтальных границах
func ChunkInBounds(coords vec.Vec2) bool {
	return coords.X >= MinXZ>>4 && coords.X <= MaxXZ>>4 &&
		coords.Y >= MinXZ>>4 && coords.Y <= MaxXZ>>4
}

func inRangeXZ(v int) bool {
	return v >= MinXZ && v <= MaxXZ
}
