package actor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

var (
	// ErrSlotOutOfRange - индекс слота вне контейнера
	ErrSlotOutOfRange = errors.New("slot out of range")
	// ErrNoInventory - у актёра нет компонента инвентаря
	ErrNoInventory = errors.New("actor has no inventory")
)

// Container - инвентарь фиксированного размера. Пустой слот хранится как nil.
type Container struct {
	mu    sync.RWMutex
	slots []*ItemStack
}

// NewContainer создаёт пустой контейнер
func NewContainer(size int) *Container {
	return &Container{slots: make([]*ItemStack, size)}
}

// Size возвращает количество слотов
func (c *Container) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.slots)
}

// GetItem возвращает предмет в слоте; ok=false для пустого слота
func (c *Container) GetItem(slot int) (ItemStack, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if slot < 0 || slot >= len(c.slots) {
		return ItemStack{}, false, fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	item := c.slots[slot]
	if item == nil {
		return ItemStack{}, false, nil
	}
	return *item, true, nil
}

// SetItem кладёт предмет в слот (заменяя содержимое)
func (c *Container) SetItem(slot int, item ItemStack) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot < 0 || slot >= len(c.slots) {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	if item.Amount <= 0 {
		c.slots[slot] = nil
		return nil
	}
	stored := item
	c.slots[slot] = &stored
	return nil
}

// ClearItem освобождает слот
func (c *Container) ClearItem(slot int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot < 0 || slot >= len(c.slots) {
		return fmt.Errorf("%w: %d", ErrSlotOutOfRange, slot)
	}
	c.slots[slot] = nil
	return nil
}

// AddItem кладёт предмет в первый свободный слот, возвращает индекс
func (c *Container) AddItem(item ItemStack) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.slots {
		if s == nil {
			stored := item
			c.slots[i] = &stored
			return i, nil
		}
	}
	return -1, errors.New("container is full")
}

// FindItem ищет первый слот с предметом типа id (amount > 0).
// skip - слот, который нужно пропустить (-1 если не нужно).
func (c *Container) FindItem(id block.MaterialID, skip int) (int, ItemStack, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i, s := range c.slots {
		if i == skip || s == nil {
			continue
		}
		if s.Type == id && s.Amount > 0 {
			return i, *s, true
		}
	}
	return -1, ItemStack{}, false
}

// Count возвращает общее количество предметов типа id
func (c *Container) Count(id block.MaterialID) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := 0
	for _, s := range c.slots {
		if s != nil && s.Type == id {
			total += s.Amount
		}
	}
	return total
}

// Consume списывает amount предметов из первого слота, где их не меньше amount.
// Стопки не объединяются: если ни в одном слоте не хватает, ничего не списывается.
func (c *Container) Consume(id block.MaterialID, amount int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.slots {
		if s == nil || s.Type != id || s.Amount < amount {
			continue
		}
		if s.Amount == amount {
			c.slots[i] = nil
		} else {
			rest := *s
			rest.Amount -= amount
			c.slots[i] = &rest
		}
		return true
	}
	return false
}
