package actor

import "github.com/tsugumi-sys/minecraft-addons/internal/world/block"

// ItemStack - стопка предметов в слоте инвентаря или в руке
type ItemStack struct {
	Type   block.MaterialID
	Amount int
	// Damage - накопленный износ; MaxDurability == 0 означает, что предмет не изнашивается
	Damage        int
	MaxDurability int
}

// NewItemStack создаёт стопку без прочности
func NewItemStack(id block.MaterialID, amount int) ItemStack {
	return ItemStack{Type: id, Amount: amount}
}

// NewTool создаёт одиночный инструмент с указанной прочностью
func NewTool(id block.MaterialID, damage, maxDurability int) ItemStack {
	return ItemStack{Type: id, Amount: 1, Damage: damage, MaxDurability: maxDurability}
}

// HasDurability сообщает, есть ли у предмета компонент прочности
func (s ItemStack) HasDurability() bool {
	return s.MaxDurability > 0
}

// IsNearlyBroken - инструмент сломается при следующем использовании
func (s ItemStack) IsNearlyBroken() bool {
	return s.HasDurability() && s.Damage >= s.MaxDurability-1
}

// Clone возвращает копию стопки
func (s ItemStack) Clone() ItemStack {
	return s
}
