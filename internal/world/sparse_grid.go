package world

import (
	"fmt"
	"sync"

	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// Chunk - колонна 16x16 на всю высоту мира. Хранит только непустые ячейки.
type Chunk struct {
	Coords vec.Vec2
	cells  map[vec.Vec3]Cell
}

// NewChunk создаёт пустой чанк
func NewChunk(coords vec.Vec2) *Chunk {
	return &Chunk{
		Coords: coords,
		cells:  make(map[vec.Vec3]Cell),
	}
}

// Len возвращает количество непустых ячеек
func (c *Chunk) Len() int { return len(c.cells) }

// SparseGrid - разреженная сетка в памяти, разбитая на колонны чанков.
// Чтение ячейки в незагруженном чанке возвращает ErrCellUnavailable.
type SparseGrid struct {
	mu     sync.RWMutex
	chunks map[vec.Vec2]*Chunk
	drops  []ItemDrop
}

// NewSparseGrid создаёт сетку без загруженных чанков
func NewSparseGrid() *SparseGrid {
	return &SparseGrid{
		chunks: make(map[vec.Vec2]*Chunk),
	}
}

// LoadChunk загружает (создаёт пустым) чанк. Ошибки не бывает: сигнатура общая с BadgerGrid.
func (g *SparseGrid) LoadChunk(coords vec.Vec2) error {
	if !ChunkInBounds(coords) {
		return fmt.Errorf("%w: chunk %v", ErrOutOfBounds, coords)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, exists := g.chunks[coords]; !exists {
		g.chunks[coords] = NewChunk(coords)
	}
	return nil
}

// UnloadChunk выгружает чанк вместе с содержимым
func (g *SparseGrid) UnloadChunk(coords vec.Vec2) {
	g.mu.Lock()
	delete(g.chunks, coords)
	g.mu.Unlock()
}

// IsLoaded проверяет, загружен ли чанк координаты
func (g *SparseGrid) IsLoaded(pos vec.Vec3) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, exists := g.chunks[pos.ToChunkCoords()]
	return exists
}

// chunkFor возвращает чанк координаты; вызывать под блокировкой
func (g *SparseGrid) chunkFor(pos vec.Vec3) (*Chunk, error) {
	if !InBounds(pos) {
		return nil, fmt.Errorf("%w: %w at %s", ErrCellUnavailable, ErrOutOfBounds, pos)
	}
	chunk, exists := g.chunks[pos.ToChunkCoords()]
	if !exists {
		return nil, fmt.Errorf("%w: %w at %s", ErrCellUnavailable, ErrChunkNotLoaded, pos)
	}
	return chunk, nil
}

// GetCell возвращает ячейку; отсутствующие в загруженном чанке ячейки - воздух
func (g *SparseGrid) GetCell(pos vec.Vec3) (Cell, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	chunk, err := g.chunkFor(pos)
	if err != nil {
		return Cell{}, err
	}
	cell, exists := chunk.cells[pos]
	if !exists {
		return NewCell(block.Air), nil
	}
	return cell.Clone(), nil
}

// SetCell устанавливает ячейку в загруженном чанке
func (g *SparseGrid) SetCell(pos vec.Vec3, cell Cell) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	chunk, err := g.chunkFor(pos)
	if err != nil {
		return err
	}
	if cell.IsAir() {
		delete(chunk.cells, pos)
		return nil
	}
	chunk.cells[pos] = cell.Clone()
	return nil
}

// SetCellMaterial заменяет ячейку материалом без состояний
func (g *SparseGrid) SetCellMaterial(pos vec.Vec3, id block.MaterialID) error {
	return g.SetCell(pos, NewCell(id))
}

// Place загружает чанк при необходимости и ставит ячейку (построение мира)
func (g *SparseGrid) Place(pos vec.Vec3, cell Cell) error {
	g.LoadChunk(pos.ToChunkCoords())
	return g.SetCell(pos, cell)
}

// SpawnYield создаёт выпадение в загруженном чанке
func (g *SparseGrid) SpawnYield(id block.MaterialID, quantity int, pos vec.Vec3) error {
	count, err := CapQuantity(quantity)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, err := g.chunkFor(pos); err != nil {
		return err
	}
	g.drops = append(g.drops, ItemDrop{Material: id, Count: count, Pos: pos})
	return nil
}

// Drops возвращает копию всех созданных выпадений
func (g *SparseGrid) Drops() []ItemDrop {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]ItemDrop, len(g.drops))
	copy(out, g.drops)
	return out
}

// TakeDrops возвращает и очищает накопленные выпадения (подбор предметов)
func (g *SparseGrid) TakeDrops() []ItemDrop {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := g.drops
	g.drops = nil
	return out
}

// QueryCells возвращает непустые ячейки в параллелепипеде [min, max] в загруженных чанках
func (g *SparseGrid) QueryCells(min, max vec.Vec3) map[vec.Vec3]Cell {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make(map[vec.Vec3]Cell)
	for _, chunk := range g.chunks {
		for pos, cell := range chunk.cells {
			if pos.X < min.X || pos.X > max.X || pos.Y < min.Y || pos.Y > max.Y || pos.Z < min.Z || pos.Z > max.Z {
				continue
			}
			result[pos] = cell.Clone()
		}
	}
	return result
}
