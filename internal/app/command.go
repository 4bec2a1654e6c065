package app

import (
	"errors"
	"fmt"

	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
)

// CommandType - вид команды, поступающей в поток тиков
type CommandType string

const (
	CommandJoin      CommandType = "join"       // игрок входит в мир
	CommandLeave     CommandType = "leave"      // игрок выходит
	CommandMove      CommandType = "move"       // новая позиция игрока
	CommandSneak     CommandType = "sneak"      // присед вкл/выкл
	CommandSelect    CommandType = "select"     // выбор слота хотбара
	CommandGive      CommandType = "give"       // предмет в инвентарь
	CommandLoadChunk CommandType = "load_chunk" // загрузить чанк координаты
	CommandSetCell   CommandType = "set_cell"   // правка сетки без событий
	CommandBreak     CommandType = "break"      // игрок добывает блок
	CommandPlace     CommandType = "place"      // игрок ставит блок
	CommandUse       CommandType = "use"        // игрок использует предмет в руке
)

var (
	// ErrInvalidCommand - команда не прошла проверку
	ErrInvalidCommand = errors.New("invalid command")
	// ErrUnknownActor - игрок с таким ID не в мире
	ErrUnknownActor = errors.New("unknown actor")
	// ErrQueueFull - очередь команд переполнена
	ErrQueueFull = errors.New("command queue is full")
)

// Command - внешнее событие (REST, тесты), применяемое в потоке тиков
type Command struct {
	Type     CommandType    `json:"type"`
	ActorID  string         `json:"actor_id,omitempty"`
	Name     string         `json:"name,omitempty"`
	Pos      vec.Vec3       `json:"pos"`
	Location vec.Vec3Float  `json:"location"`
	Sneaking bool           `json:"sneaking,omitempty"`
	Slot     int            `json:"slot,omitempty"`
	Material string         `json:"material,omitempty"`
	State    map[string]int `json:"state,omitempty"`
	Amount   int            `json:"amount,omitempty"`
	// Прочность выдаваемого инструмента
	Damage        int `json:"damage,omitempty"`
	MaxDurability int `json:"max_durability,omitempty"`
}

// Validate проверяет обязательные поля команды
func (c Command) Validate() error {
	switch c.Type {
	case CommandLoadChunk:
		return nil
	case CommandSetCell:
		if c.Material == "" {
			return fmt.Errorf("%w: %s requires material", ErrInvalidCommand, c.Type)
		}
		return nil
	case CommandJoin, CommandLeave, CommandMove, CommandSneak, CommandSelect, CommandBreak, CommandUse:
	case CommandGive, CommandPlace:
		if c.Material == "" {
			return fmt.Errorf("%w: %s requires material", ErrInvalidCommand, c.Type)
		}
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCommand, c.Type)
	}
	if c.ActorID == "" {
		return fmt.Errorf("%w: %s requires actor_id", ErrInvalidCommand, c.Type)
	}
	return nil
}
