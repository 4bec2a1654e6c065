package actor

import (
	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// Actor - сущность, вызывающая события и получающая сообщения.
// Все методы могут вернуть ошибку: хост не гарантирует наличие компонентов.
type Actor interface {
	ID() string
	Name() string
	// IsSneaking - квалифицирующая поза (присед)
	IsSneaking() bool
	Location() vec.Vec3Float
	SelectedSlot() int
	Inventory() (*Container, error)
	// SetMainHand кладёт предмет в основную руку
	SetMainHand(item ItemStack) error
	SendMessage(text string) error
}

// HeldItem возвращает предмет в выбранном слоте актёра
func HeldItem(a Actor) (ItemStack, bool, error) {
	inv, err := a.Inventory()
	if err != nil {
		return ItemStack{}, false, err
	}
	if inv == nil {
		return ItemStack{}, false, ErrNoInventory
	}
	return inv.GetItem(a.SelectedSlot())
}

// HeldToolID возвращает тип предмета в руке или block.None
func HeldToolID(a Actor) (block.MaterialID, error) {
	item, ok, err := HeldItem(a)
	if err != nil {
		return block.None, err
	}
	if !ok {
		return block.None, nil
	}
	return item.Type, nil
}

// FindItem ищет предмет в инвентаре актёра
func FindItem(a Actor, id block.MaterialID) (ItemStack, bool, error) {
	inv, err := a.Inventory()
	if err != nil {
		return ItemStack{}, false, err
	}
	if inv == nil {
		return ItemStack{}, false, ErrNoInventory
	}
	_, item, ok := inv.FindItem(id, -1)
	return item, ok, nil
}

// ConsumeItem списывает amount предметов типа id из инвентаря актёра
func ConsumeItem(a Actor, id block.MaterialID, amount int) (bool, error) {
	inv, err := a.Inventory()
	if err != nil {
		return false, err
	}
	if inv == nil {
		return false, ErrNoInventory
	}
	return inv.Consume(id, amount), nil
}
