package world

import (
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// Cell - содержимое одной ячейки сетки: материал и его состояния (рост, возраст…)
type Cell struct {
	Material block.MaterialID
	State    map[string]int
}

// NewCell создаёт ячейку без состояний
func NewCell(id block.MaterialID) Cell {
	return Cell{Material: id}
}

// IsAir сообщает, пуста ли ячейка
func (c Cell) IsAir() bool {
	return c.Material == block.Air || c.Material == block.None
}

// StateValue возвращает значение состояния
func (c Cell) StateValue(name string) (int, bool) {
	if c.State == nil {
		return 0, false
	}
	v, ok := c.State[name]
	return v, ok
}

// WithState возвращает копию ячейки с установленным состоянием
func (c Cell) WithState(name string, value int) Cell {
	out := c.Clone()
	if out.State == nil {
		out.State = make(map[string]int, 1)
	}
	out.State[name] = value
	return out
}

// Clone создаёт копию ячейки
func (c Cell) Clone() Cell {
	if c.State == nil {
		return Cell{Material: c.Material}
	}
	state := make(map[string]int, len(c.State))
	for k, v := range c.State {
		state[k] = v
	}
	return Cell{Material: c.Material, State: state}
}
