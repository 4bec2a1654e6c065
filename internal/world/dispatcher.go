package world

import (
	"context"
	"fmt"
	"sync"

	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// BreakHandler обрабатывает добычу блока
type BreakHandler func(ctx context.Context, ev BlockBreakEvent)

// PlaceHandler обрабатывает установку блока
type PlaceHandler func(ctx context.Context, ev BlockPlaceEvent)

// ItemUseHandler обрабатывает использование предмета
type ItemUseHandler func(ctx context.Context, ev ItemUseEvent)

// Dispatcher синхронно доставляет события мира подписчикам в порядке подписки.
// Вызывается только из потока тиков: обработчики выполняются в том же ходе.
type Dispatcher struct {
	mu            sync.RWMutex
	grid          Grid
	beforeBreak   []BreakHandler
	afterBreak    []BreakHandler
	afterPlace    []PlaceHandler
	beforeItemUse []ItemUseHandler
}

// NewDispatcher создаёт диспетчер поверх сетки
func NewDispatcher(grid Grid) *Dispatcher {
	return &Dispatcher{grid: grid}
}

// OnBeforeBreak подписывает обработчик, вызываемый до удаления блока
func (d *Dispatcher) OnBeforeBreak(h BreakHandler) {
	d.mu.Lock()
	d.beforeBreak = append(d.beforeBreak, h)
	d.mu.Unlock()
}

// OnAfterBreak подписывает обработчик, вызываемый после удаления блока
func (d *Dispatcher) OnAfterBreak(h BreakHandler) {
	d.mu.Lock()
	d.afterBreak = append(d.afterBreak, h)
	d.mu.Unlock()
}

// OnAfterPlace подписывает обработчик установки блока
func (d *Dispatcher) OnAfterPlace(h PlaceHandler) {
	d.mu.Lock()
	d.afterPlace = append(d.afterPlace, h)
	d.mu.Unlock()
}

// OnBeforeItemUse подписывает обработчик использования предмета
func (d *Dispatcher) OnBeforeItemUse(h ItemUseHandler) {
	d.mu.Lock()
	d.beforeItemUse = append(d.beforeItemUse, h)
	d.mu.Unlock()
}

// Dispatch применяет событие к сетке и вызывает подписчиков
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) error {
	switch e := ev.(type) {
	case BlockBreakEvent:
		return d.dispatchBreak(ctx, e)
	case BlockPlaceEvent:
		return d.dispatchPlace(ctx, e)
	case ItemUseEvent:
		d.mu.RLock()
		handlers := append([]ItemUseHandler(nil), d.beforeItemUse...)
		d.mu.RUnlock()
		for _, h := range handlers {
			safeCall(e.GetType(), func() { h(ctx, e) })
		}
		return nil
	default:
		return fmt.Errorf("unknown event type %T", ev)
	}
}

// dispatchBreak - обычный путь добычи одиночного блока: ячейка становится воздухом.
// Выпадение для самого блока здесь не создаётся.
func (d *Dispatcher) dispatchBreak(ctx context.Context, e BlockBreakEvent) error {
	if e.Cell.Material == block.None {
		cell, err := d.grid.GetCell(e.Pos)
		if err != nil {
			return fmt.Errorf("read broken cell: %w", err)
		}
		e.Cell = cell
	}
	if e.Cell.IsAir() {
		return nil
	}

	d.mu.RLock()
	before := append([]BreakHandler(nil), d.beforeBreak...)
	after := append([]BreakHandler(nil), d.afterBreak...)
	d.mu.RUnlock()

	for _, h := range before {
		safeCall(e.GetType(), func() { h(ctx, e) })
	}

	if err := d.grid.SetCellMaterial(e.Pos, block.Air); err != nil {
		return fmt.Errorf("break cell: %w", err)
	}

	for _, h := range after {
		safeCall(e.GetType(), func() { h(ctx, e) })
	}
	return nil
}

func (d *Dispatcher) dispatchPlace(ctx context.Context, e BlockPlaceEvent) error {
	if err := d.grid.SetCell(e.Pos, e.Cell); err != nil {
		return fmt.Errorf("place cell: %w", err)
	}

	d.mu.RLock()
	handlers := append([]PlaceHandler(nil), d.afterPlace...)
	d.mu.RUnlock()

	for _, h := range handlers {
		safeCall(e.GetType(), func() { h(ctx, e) })
	}
	return nil
}

// safeCall изолирует панику одного обработчика от остальных
func safeCall(t EventType, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("%s handler panicked: %v", t, r)
		}
	}()
	fn()
}
