package toolswap

import (
	"context"

	"github.com/tsugumi-sys/minecraft-addons/internal/actor"
	"github.com/tsugumi-sys/minecraft-addons/internal/eventbus"
	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
	"github.com/tsugumi-sys/minecraft-addons/internal/scheduler"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// SwappedMessage отправляется игроку после замены инструмента
const SwappedMessage = "§a道具を自動的に持ち替えました！ / Tool automatically replaced!"

// ToolTypes - предметы с прочностью, которые заменяются автоматически
var ToolTypes = buildToolTypes()

func buildToolTypes() map[block.MaterialID]struct{} {
	out := make(map[block.MaterialID]struct{}, 36)
	for _, kind := range []string{"sword", "axe", "pickaxe", "shovel", "hoe"} {
		for _, id := range block.Tools(kind) {
			out[id] = struct{}{}
		}
	}
	for _, name := range []string{"bow", "crossbow", "trident", "fishing_rod", "flint_and_steel", "shears"} {
		out[block.MaterialID(block.Namespace+name)] = struct{}{}
	}
	return out
}

// IsTool проверяет, входит ли предмет в список заменяемых
func IsTool(id block.MaterialID) bool {
	_, ok := ToolTypes[id]
	return ok
}

// Scheduler откладывает замену на следующий тик
type Scheduler interface {
	ScheduleAfter(delay int, task scheduler.Task) scheduler.Handle
}

// Swapped - полезная нагрузка события ToolSwapped
type Swapped struct {
	ActorID  string `json:"actor_id"`
	Tool     string `json:"tool"`
	FromSlot int    `json:"from_slot"`
}

// Swapper меняет почти сломанный инструмент на запасной того же типа
type Swapper struct {
	sched     Scheduler
	log       *logging.Logger
	metrics   *Metrics
	publisher eventbus.Publisher
}

// NewSwapper создаёт обработчик. log == nil - логгер компонента toolswap.
func NewSwapper(sched Scheduler, log *logging.Logger, metrics *Metrics, pub eventbus.Publisher) *Swapper {
	if log == nil {
		log = logging.GetToolSwapLogger()
	}
	return &Swapper{sched: sched, log: log, metrics: metrics, publisher: pub}
}

// OnItemUse вызывается до применения предмета. Если инструмент сломается
// при этом использовании, замена выполняется на следующем тике.
func (s *Swapper) OnItemUse(ctx context.Context, ev world.ItemUseEvent) {
	item := ev.Item
	if ev.Actor == nil || !IsTool(item.Type) || !item.HasDurability() {
		return
	}
	if !item.IsNearlyBroken() {
		return
	}

	a := ev.Actor
	s.sched.ScheduleAfter(1, scheduler.TaskFunc(func() {
		s.replace(ctx, a, item.Type)
	}))
}

func (s *Swapper) replace(ctx context.Context, a actor.Actor, tool block.MaterialID) {
	inv, err := a.Inventory()
	if err != nil {
		s.fail("Tool replacement failed: %v", err)
		return
	}

	// выбранный слот пропускаем: там сам изношенный инструмент
	slot, spare, ok := inv.FindItem(tool, a.SelectedSlot())
	if !ok {
		s.metrics.observeMissing()
		return
	}

	if err := inv.ClearItem(slot); err != nil {
		s.fail("Tool replacement failed: %v", err)
		return
	}
	if err := a.SetMainHand(spare.Clone()); err != nil {
		// вернуть запасной инструмент на место
		if restoreErr := inv.SetItem(slot, spare); restoreErr != nil {
			s.log.Error("Failed to restore %s to slot %d: %v", tool, slot, restoreErr)
		}
		s.fail("Tool replacement failed: %v", err)
		return
	}

	if err := a.SendMessage(SwappedMessage); err != nil {
		s.log.Warn("Failed to send message to %s: %v", a.ID(), err)
	}
	s.metrics.observeSwap()
	s.log.Debug("Swapped %s from slot %d for %s", tool, slot, a.ID())

	if err := eventbus.PublishEvent(ctx, s.publisher, eventbus.EventToolSwapped, "toolswap", Swapped{
		ActorID:  a.ID(),
		Tool:     tool.String(),
		FromSlot: slot,
	}); err != nil {
		s.log.Warn("Не удалось опубликовать замену инструмента: %v", err)
	}
}

func (s *Swapper) fail(format string, args ...interface{}) {
	s.metrics.observeFailure()
	s.log.Warn(format, args...)
}
