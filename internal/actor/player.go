package actor

import (
	"fmt"
	"sync"

	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
)

// Размеры инвентаря игрока
const (
	InventorySize = 36
	HotbarSize    = 9
)

// MessageSink доставляет сообщение игроку (сеть, консоль). Ошибка - сообщение не доставлено.
type MessageSink func(actorID, text string) error

// Player - реализация Actor для игрока
type Player struct {
	mu        sync.RWMutex
	id        string
	name      string
	sneaking  bool
	location  vec.Vec3Float
	selected  int
	inventory *Container
	sink      MessageSink
	outbox    []string
}

// NewPlayer создаёт игрока с пустым инвентарём
func NewPlayer(id, name string) *Player {
	return &Player{
		id:        id,
		name:      name,
		inventory: NewContainer(InventorySize),
	}
}

func (p *Player) ID() string   { return p.id }
func (p *Player) Name() string { return p.name }

// IsSneaking возвращает, приседает ли игрок
func (p *Player) IsSneaking() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sneaking
}

// SetSneaking меняет позу игрока
func (p *Player) SetSneaking(v bool) {
	p.mu.Lock()
	p.sneaking = v
	p.mu.Unlock()
}

// Location возвращает текущую позицию
func (p *Player) Location() vec.Vec3Float {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.location
}

// MoveTo перемещает игрока
func (p *Player) MoveTo(pos vec.Vec3Float) {
	p.mu.Lock()
	p.location = pos
	p.mu.Unlock()
}

// SelectedSlot возвращает индекс выбранного слота хотбара
func (p *Player) SelectedSlot() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.selected
}

// SelectSlot выбирает слот хотбара
func (p *Player) SelectSlot(slot int) error {
	if slot < 0 || slot >= HotbarSize {
		return fmt.Errorf("%w: hotbar slot %d", ErrSlotOutOfRange, slot)
	}
	p.mu.Lock()
	p.selected = slot
	p.mu.Unlock()
	return nil
}

// Inventory возвращает инвентарь игрока
func (p *Player) Inventory() (*Container, error) {
	if p.inventory == nil {
		return nil, ErrNoInventory
	}
	return p.inventory, nil
}

// SetMainHand кладёт предмет в выбранный слот хотбара
func (p *Player) SetMainHand(item ItemStack) error {
	return p.inventory.SetItem(p.SelectedSlot(), item)
}

// SetMessageSink подключает доставку сообщений
func (p *Player) SetMessageSink(sink MessageSink) {
	p.mu.Lock()
	p.sink = sink
	p.mu.Unlock()
}

// SendMessage сохраняет сообщение в outbox и передаёт его в sink
func (p *Player) SendMessage(text string) error {
	p.mu.Lock()
	p.outbox = append(p.outbox, text)
	sink := p.sink
	p.mu.Unlock()

	if sink == nil {
		return nil
	}
	return sink(p.id, text)
}

// Messages возвращает копию всех отправленных игроку сообщений
func (p *Player) Messages() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, len(p.outbox))
	copy(out, p.outbox)
	return out
}
