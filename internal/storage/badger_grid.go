package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// Префиксы ключей BadgerDB
var (
	prefixChunk = []byte("chunk:")
	prefixCell  = []byte("cell:")
)

// cellRecord - сериализованная ячейка
type cellRecord struct {
	ID    block.MaterialID `json:"id"`
	State map[string]int   `json:"state,omitempty"`
}

// BadgerGrid - сетка мира поверх BadgerDB.
// Ключ ячейки - упакованная координата vec.Vec3.Key(), значение - JSON cellRecord.
// Воздух не хранится: отсутствие ключа в загруженном чанке означает воздух.
type BadgerGrid struct {
	db    *badger.DB
	mutex sync.RWMutex
	drops []world.ItemDrop
	ready bool
}

var _ world.Grid = (*BadgerGrid)(nil)

// NewBadgerGrid открывает хранилище сетки. Пустой path - BadgerDB в памяти.
func NewBadgerGrid(path string) (*BadgerGrid, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}
	return &BadgerGrid{db: db, ready: true}, nil
}

// Close закрывает хранилище
func (g *BadgerGrid) Close() error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	if !g.ready {
		return nil
	}
	g.ready = false
	return g.db.Close()
}

func chunkKey(coords vec.Vec2) []byte {
	key := make([]byte, len(prefixChunk)+8)
	copy(key, prefixChunk)
	binary.BigEndian.PutUint32(key[len(prefixChunk):], uint32(coords.X))
	binary.BigEndian.PutUint32(key[len(prefixChunk)+4:], uint32(coords.Y))
	return key
}

func cellKey(pos vec.Vec3) []byte {
	return append(append([]byte(nil), prefixCell...), pos.Key()...)
}

// LoadChunk отмечает чанк загруженным
func (g *BadgerGrid) LoadChunk(coords vec.Vec2) error {
	if !world.ChunkInBounds(coords) {
		return fmt.Errorf("%w: chunk %v", world.ErrOutOfBounds, coords)
	}
	return g.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(coords), []byte{1})
	})
}

// IsLoaded сообщает, загружен ли чанк координаты
func (g *BadgerGrid) IsLoaded(pos vec.Vec3) bool {
	if !world.ChunkInBounds(pos.ToChunkCoords()) {
		return false
	}
	err := g.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(chunkKey(pos.ToChunkCoords()))
		return err
	})
	return err == nil
}

// checkAvailable проверяет границы мира и загрузку чанка внутри транзакции
func checkAvailable(txn *badger.Txn, pos vec.Vec3) error {
	if !world.InBounds(pos) {
		return fmt.Errorf("%w: %w at %s", world.ErrCellUnavailable, world.ErrOutOfBounds, pos)
	}
	if _, err := txn.Get(chunkKey(pos.ToChunkCoords())); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %w at %s", world.ErrCellUnavailable, world.ErrChunkNotLoaded, pos)
		}
		return fmt.Errorf("%w: %v", world.ErrCellUnavailable, err)
	}
	return nil
}

// GetCell читает ячейку
func (g *BadgerGrid) GetCell(pos vec.Vec3) (world.Cell, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if !g.ready {
		return world.Cell{}, fmt.Errorf("%w: хранилище закрыто", world.ErrCellUnavailable)
	}

	var cell world.Cell
	err := g.db.View(func(txn *badger.Txn) error {
		if err := checkAvailable(txn, pos); err != nil {
			return err
		}
		item, err := txn.Get(cellKey(pos))
		if errors.Is(err, badger.ErrKeyNotFound) {
			cell = world.NewCell(block.Air)
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var rec cellRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return fmt.Errorf("ошибка десериализации ячейки %s: %w", pos, err)
			}
			cell = world.Cell{Material: rec.ID, State: rec.State}
			return nil
		})
	})
	if err != nil {
		return world.Cell{}, err
	}
	return cell, nil
}

// SetCell записывает ячейку; воздух удаляет ключ
func (g *BadgerGrid) SetCell(pos vec.Vec3, cell world.Cell) error {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	if !g.ready {
		return fmt.Errorf("%w: хранилище закрыто", world.ErrCellUnavailable)
	}

	return g.db.Update(func(txn *badger.Txn) error {
		if err := checkAvailable(txn, pos); err != nil {
			return err
		}
		if cell.IsAir() {
			return txn.Delete(cellKey(pos))
		}
		data, err := json.Marshal(cellRecord{ID: cell.Material, State: cell.State})
		if err != nil {
			return fmt.Errorf("ошибка сериализации ячейки: %w", err)
		}
		return txn.Set(cellKey(pos), data)
	})
}

// SetCellMaterial заменяет ячейку материалом без состояний
func (g *BadgerGrid) SetCellMaterial(pos vec.Vec3, id block.MaterialID) error {
	return g.SetCell(pos, world.NewCell(id))
}

// Place загружает чанк при необходимости и ставит ячейку
func (g *BadgerGrid) Place(pos vec.Vec3, cell world.Cell) error {
	if err := g.LoadChunk(pos.ToChunkCoords()); err != nil {
		return err
	}
	return g.SetCell(pos, cell)
}

// SpawnYield записывает выпадение в загруженном чанке
func (g *BadgerGrid) SpawnYield(id block.MaterialID, quantity int, pos vec.Vec3) error {
	count, err := world.CapQuantity(quantity)
	if err != nil {
		return err
	}
	err = g.db.View(func(txn *badger.Txn) error {
		return checkAvailable(txn, pos)
	})
	if err != nil {
		return err
	}

	g.mutex.Lock()
	g.drops = append(g.drops, world.ItemDrop{Material: id, Count: count, Pos: pos})
	g.mutex.Unlock()
	return nil
}

// TakeDrops возвращает и очищает накопленные выпадения
func (g *BadgerGrid) TakeDrops() []world.ItemDrop {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	out := g.drops
	g.drops = nil
	return out
}

// CountCells возвращает число непустых ячеек
func (g *BadgerGrid) CountCells() (int, error) {
	n := 0
	err := g.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefixCell
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
