package capacitor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tsugumi-sys/minecraft-addons/internal/actor"
	"github.com/tsugumi-sys/minecraft-addons/internal/eventbus"
	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
	"github.com/tsugumi-sys/minecraft-addons/internal/scheduler"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// DefaultDelayTicks - задержка пакета после активации
const DefaultDelayTicks = 1

// Scheduler откладывает пакет на будущий тик
type Scheduler interface {
	ScheduleAfter(delay int, task scheduler.Task) scheduler.Handle
}

// Options настраивает Engine. Нулевые значения дают значения по умолчанию.
type Options struct {
	Rules      []*Rule // nil - DefaultRules(DefaultMaxBlocks)
	DelayTicks int
	StackSize  int
	Logger     *logging.Logger
	Metrics    *Metrics
	Publisher  eventbus.Publisher
	Tracer     trace.Tracer
}

// Engine проверяет правила при каждой добыче блока
type Engine struct {
	grid    world.GridAccessor
	sched   Scheduler
	rules   []*Rule
	delay   int
	log     *logging.Logger
	metrics *Metrics
	tracer  trace.Tracer
	mutator *Mutator
}

// ActivationResult - итог проверки одного правила
type ActivationResult struct {
	Rule      string
	Found     int  // размер найденной области
	Scheduled bool // пакет поставлен в очередь
	Err       error
}

// NewEngine создаёт движок правил
func NewEngine(grid world.GridAccessor, sched Scheduler, opts Options) *Engine {
	if opts.Rules == nil {
		opts.Rules = DefaultRules(DefaultMaxBlocks)
	}
	if opts.DelayTicks <= 0 {
		opts.DelayTicks = DefaultDelayTicks
	}
	if opts.StackSize <= 0 {
		opts.StackSize = world.StackLimit
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetCapacitorLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer("github.com/tsugumi-sys/minecraft-addons/internal/capacitor")
	}

	return &Engine{
		grid:    grid,
		sched:   sched,
		rules:   append([]*Rule(nil), opts.Rules...),
		delay:   opts.DelayTicks,
		log:     opts.Logger,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
		mutator: &Mutator{
			grid:      grid,
			stackSize: opts.StackSize,
			log:       opts.Logger,
			metrics:   opts.Metrics,
			publisher: opts.Publisher,
			tracer:    opts.Tracer,
		},
	}
}

// Rules возвращает правила в порядке проверки
func (e *Engine) Rules() []*Rule {
	return append([]*Rule(nil), e.rules...)
}

// Mutator возвращает исполнитель пакетов движка
func (e *Engine) Mutator() *Mutator { return e.mutator }

// HandleBreak проверяет все правила по порядку; срабатывание одного не отменяет остальные.
// Подписывается на событие до удаления блока, пока исходная ячейка ещё на месте.
func (e *Engine) HandleBreak(ctx context.Context, ev world.BlockBreakEvent) []ActivationResult {
	results := make([]ActivationResult, 0, len(e.rules))
	for _, rule := range e.rules {
		results = append(results, e.Activate(ctx, rule, ev))
	}
	return results
}

// Activate проверяет одно правило: материал, присед, инструмент; затем обход и планирование пакета.
// Непредвиденная ошибка перехватывается здесь, сообщается игроку и не влияет на другие правила.
func (e *Engine) Activate(ctx context.Context, rule *Rule, ev world.BlockBreakEvent) (res ActivationResult) {
	res.Rule = rule.Name()

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("%v", r)
			res.Scheduled = false
			e.metrics.observeActivationError(rule.Name())
			e.log.Error("%s failed: %v", rule.Name(), res.Err)
			notify(e.log, ev.Actor, fmt.Sprintf("%s error: %v", rule.Name(), res.Err))
		}
	}()

	material := ev.Cell.Material
	if material == block.None {
		cell, err := e.grid.GetCell(ev.Pos)
		if err != nil {
			e.log.Warn("Failed to access block at %s: %v", ev.Pos, err)
			return res
		}
		material = cell.Material
	}

	if !rule.IsHarvestable(material) || !e.qualifies(rule, ev.Actor) {
		return res
	}

	ctx, span := e.tracer.Start(ctx, "capacitor.Activate", trace.WithAttributes(
		attribute.String("capacitor.rule", rule.Name()),
		attribute.String("capacitor.origin", ev.Pos.String()),
	))
	defer span.End()

	target, _ := rule.YieldFor(material)
	comp, stats := floodFill(e.grid, ev.Pos, rule.Matcher(target), rule.MaxBlocks(), rule.Shape(), e.log)
	res.Found = len(comp)
	span.SetAttributes(
		attribute.Int("capacitor.found", len(comp)),
		attribute.Int("capacitor.visited", stats.Visited),
		attribute.Int("capacitor.lookup_failures", stats.LookupFailures),
	)

	if len(comp) <= 1 {
		return res
	}

	notify(e.log, ev.Actor, fmt.Sprintf("%s activated! Breaking %d blocks...", rule.Name(), len(comp)))

	task := &batchTask{
		mutator: e.mutator,
		pending: PendingBreak{
			Rule:   rule,
			Cells:  append([]Found(nil), comp[1:]...),
			Yield:  target,
			Origin: ev.Pos,
			Actor:  ev.Actor,
			link:   trace.LinkFromContext(ctx),
		},
	}
	e.sched.ScheduleAfter(e.delay, task)
	res.Scheduled = true

	e.metrics.observeActivation(rule.Name(), len(comp))
	if err := eventbus.PublishEvent(ctx, e.mutator.publisher, eventbus.EventCapacitorActivated, "capacitor", map[string]any{
		"rule":   rule.Name(),
		"origin": ev.Pos,
		"found":  len(comp),
	}); err != nil {
		e.log.Warn("Не удалось опубликовать активацию: %v", err)
	}
	span.SetStatus(codes.Ok, "")
	e.log.Debug("%s activated at %s: %d blocks", rule.Name(), ev.Pos, len(comp))

	return res
}

// qualifies проверяет присед и инструмент; любая ошибка коллаборатора - условие не выполнено
func (e *Engine) qualifies(rule *Rule, a actor.Actor) (ok bool) {
	if a == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Warn("Failed to check player's held item: %v", r)
			ok = false
		}
	}()

	if !a.IsSneaking() {
		return false
	}
	tool, err := actor.HeldToolID(a)
	if err != nil {
		e.log.Warn("Failed to check player's held item: %v", err)
		return false
	}
	return rule.QualifiesTool(tool)
}
