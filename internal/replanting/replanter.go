package replanting

import (
	"context"
	"fmt"

	"github.com/tsugumi-sys/minecraft-addons/internal/actor"
	"github.com/tsugumi-sys/minecraft-addons/internal/eventbus"
	"github.com/tsugumi-sys/minecraft-addons/internal/i18n"
	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
	"github.com/tsugumi-sys/minecraft-addons/internal/scheduler"
	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// DefaultDelayTicks - пауза перед посадкой (2 секунды)
const DefaultDelayTicks = 40

// Kind - что было посажено
type Kind string

const (
	KindCrop Kind = "crop"
	KindTree Kind = "tree"
)

// Scheduler откладывает посадку
type Scheduler interface {
	ScheduleAfter(delay int, task scheduler.Task) scheduler.Handle
}

// Options настраивает Replanter
type Options struct {
	DelayTicks int
	Translator *i18n.Translator
	Logger     *logging.Logger
	Metrics    *Metrics
	Publisher  eventbus.Publisher
}

// Replanted - полезная нагрузка события Replanted
type Replanted struct {
	Kind     Kind     `json:"kind"`
	ActorID  string   `json:"actor_id"`
	Pos      vec.Vec3 `json:"pos"`
	Material string   `json:"material"`
}

// Replanter сажает культуру или саженец на место собранного урожая,
// если у игрока есть семена
type Replanter struct {
	grid      world.Grid
	sched     Scheduler
	delay     int
	tr        *i18n.Translator
	log       *logging.Logger
	metrics   *Metrics
	publisher eventbus.Publisher
}

// NewReplanter создаёт обработчик пересадки
func NewReplanter(grid world.Grid, sched Scheduler, opts Options) *Replanter {
	if opts.DelayTicks <= 0 {
		opts.DelayTicks = DefaultDelayTicks
	}
	if opts.Translator == nil {
		opts.Translator = i18n.New("")
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetReplantingLogger()
	}
	return &Replanter{
		grid:      grid,
		sched:     sched,
		delay:     opts.DelayTicks,
		tr:        opts.Translator,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		publisher: opts.Publisher,
	}
}

// OnBreak вызывается после добычи блока. ev.Cell - ячейка до удаления.
func (r *Replanter) OnBreak(ctx context.Context, ev world.BlockBreakEvent) {
	if ev.Actor == nil {
		return
	}
	id := ev.Cell.Material

	if spec, ok := Crops[id]; ok {
		if IsMature(ev.Cell, spec) {
			r.scheduleCrop(ctx, ev, spec)
		}
		return
	}
	if sapling, ok := Trees[id]; ok {
		r.scheduleTree(ctx, ev, sapling)
	}
}

// IsMature проверяет стадию роста: growth, а при его отсутствии (или нуле) age
func IsMature(cell world.Cell, spec CropSpec) bool {
	stage, _ := cell.StateValue(block.StateGrowth)
	if stage == 0 {
		stage, _ = cell.StateValue(block.StateAge)
	}
	return stage >= spec.MatureAge
}

// growthState возвращает имя состояния, которым культура отмечает рост
func growthState(cell world.Cell) string {
	if _, ok := cell.StateValue(block.StateGrowth); ok {
		return block.StateGrowth
	}
	if _, ok := cell.StateValue(block.StateAge); ok {
		return block.StateAge
	}
	return block.StateGrowth
}

func (r *Replanter) scheduleCrop(ctx context.Context, ev world.BlockBreakEvent, spec CropSpec) {
	if !r.carries(ev.Actor, spec.Seed) {
		return
	}

	crop := ev.Cell.Material
	state := growthState(ev.Cell)
	pos := ev.Pos
	a := ev.Actor

	r.sched.ScheduleAfter(r.delay, scheduler.TaskFunc(func() {
		current, err := r.grid.GetCell(pos)
		if err != nil {
			r.fail(KindCrop, "Failed to replant crop: %v", err)
			return
		}
		if !current.IsAir() {
			return
		}
		if spec.NeedsFarmland {
			below, err := r.grid.GetCell(pos.Below())
			if err != nil || below.Material != block.Farmland {
				return
			}
		}

		if err := r.grid.SetCell(pos, world.NewCell(crop).WithState(state, 0)); err != nil {
			r.fail(KindCrop, "Failed to replant crop: %v", err)
			return
		}
		r.consume(a, spec.Seed)

		name := r.tr.Text(crop.ShortName())
		r.notify(a, r.message(name, i18n.KeyCropReplanted))
		r.done(ctx, KindCrop, a, pos, crop)
	}))
}

func (r *Replanter) scheduleTree(ctx context.Context, ev world.BlockBreakEvent, sapling block.MaterialID) {
	if !r.carries(ev.Actor, sapling) {
		return
	}
	ground, ok := r.FindGround(ev.Pos)
	if !ok {
		return
	}

	spot := ground.Above()
	a := ev.Actor

	r.sched.ScheduleAfter(r.delay, scheduler.TaskFunc(func() {
		current, err := r.grid.GetCell(spot)
		if err != nil {
			r.fail(KindTree, "Failed to replant tree: %v", err)
			return
		}
		if !current.IsAir() {
			return
		}

		if err := r.grid.SetCell(spot, world.NewCell(sapling)); err != nil {
			r.fail(KindTree, "Failed to replant tree: %v", err)
			return
		}
		r.consume(a, sapling)

		name := r.tr.Text(sapling.ShortName())
		r.notify(a, r.message(name, i18n.KeyTreeReplanted))
		r.done(ctx, KindTree, a, spot, sapling)
	}))
}

// FindGround ищет почву под сломанным бревном: от его высоты вниз на GroundScanDepth блоков,
// первую подходящую ячейку с воздухом над ней. Недоступные ячейки пропускаются.
func (r *Replanter) FindGround(from vec.Vec3) (vec.Vec3, bool) {
	for y := from.Y; y >= from.Y-GroundScanDepth; y-- {
		pos := vec.Vec3{X: from.X, Y: y, Z: from.Z}
		cell, err := r.grid.GetCell(pos)
		if err != nil || !block.IsSaplingGround(cell.Material) {
			continue
		}
		above, err := r.grid.GetCell(pos.Above())
		if err != nil {
			continue
		}
		if above.IsAir() {
			return pos, true
		}
	}
	return vec.Vec3{}, false
}

// message собирает сообщение: в японском имя идёт перед глаголом, в остальных языках после "Replanted"
func (r *Replanter) message(name, key string) string {
	if r.tr.IsJapanese() {
		return fmt.Sprintf("§a%s%s", name, r.tr.Text(key))
	}
	return fmt.Sprintf("§a%s %s %s", r.tr.Text(i18n.KeyReplanted), name, r.tr.Text(key))
}

func (r *Replanter) carries(a actor.Actor, id block.MaterialID) bool {
	_, ok, err := actor.FindItem(a, id)
	if err != nil {
		r.log.Warn("Failed to check inventory: %v", err)
		return false
	}
	return ok
}

func (r *Replanter) consume(a actor.Actor, id block.MaterialID) {
	ok, err := actor.ConsumeItem(a, id, 1)
	if err != nil {
		r.log.Warn("Failed to consume item: %v", err)
		return
	}
	if !ok {
		r.log.Debug("No %s left to consume for %s", id, a.ID())
	}
}

func (r *Replanter) notify(a actor.Actor, text string) {
	if err := a.SendMessage(text); err != nil {
		r.log.Warn("Failed to send message to %s: %v", a.ID(), err)
	}
}

func (r *Replanter) fail(kind Kind, format string, args ...interface{}) {
	r.metrics.observeFailure(kind)
	r.log.Warn(format, args...)
}

func (r *Replanter) done(ctx context.Context, kind Kind, a actor.Actor, pos vec.Vec3, id block.MaterialID) {
	r.metrics.observeReplant(kind)
	r.log.Debug("Replanted %s at %s for %s", id, pos, a.ID())
	if err := eventbus.PublishEvent(ctx, r.publisher, eventbus.EventReplanted, "replanting", Replanted{
		Kind:     kind,
		ActorID:  a.ID(),
		Pos:      pos,
		Material: id.String(),
	}); err != nil {
		r.log.Warn("Не удалось опубликовать пересадку: %v", err)
	}
}
