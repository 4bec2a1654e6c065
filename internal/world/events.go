package world

import (
	"github.com/tsugumi-sys/minecraft-addons/internal/actor"
	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
)

// EventType определяет тип события мира
type EventType uint8

const (
	EventTypeBlockBreak EventType = iota // Игрок добывает блок
	EventTypeBlockPlace                  // Игрок ставит блок
	EventTypeItemUse                     // Игрок использует предмет
)

// String возвращает имя типа события
func (t EventType) String() string {
	switch t {
	case EventTypeBlockBreak:
		return "BlockBreak"
	case EventTypeBlockPlace:
		return "BlockPlace"
	case EventTypeItemUse:
		return "ItemUse"
	default:
		return "Unknown"
	}
}

// Event представляет собой интерфейс для всех событий
type Event interface {
	GetType() EventType
}

// BlockBreakEvent - игрок добывает ячейку Pos.
// Cell - состояние ячейки до разрушения; пустой Material означает "прочитать из сетки".
type BlockBreakEvent struct {
	Actor actor.Actor
	Pos   vec.Vec3
	Cell  Cell
}

// GetType возвращает тип события
func (e BlockBreakEvent) GetType() EventType { return EventTypeBlockBreak }

// BlockPlaceEvent - игрок ставит ячейку Cell в Pos
type BlockPlaceEvent struct {
	Actor actor.Actor
	Pos   vec.Vec3
	Cell  Cell
}

// GetType возвращает тип события
func (e BlockPlaceEvent) GetType() EventType { return EventTypeBlockPlace }

// ItemUseEvent - игрок использует предмет Item
type ItemUseEvent struct {
	Actor actor.Actor
	Item  actor.ItemStack
}

// GetType возвращает тип события
func (e ItemUseEvent) GetType() EventType { return EventTypeItemUse }
