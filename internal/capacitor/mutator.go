package capacitor

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tsugumi-sys/minecraft-addons/internal/actor"
	"github.com/tsugumi-sys/minecraft-addons/internal/eventbus"
	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// PendingBreak - всё, что нужно отложенному пакету. Принадлежит одному пакету,
// после планирования движок его не трогает.
type PendingBreak struct {
	Rule   *Rule
	Cells  []Found // без исходной ячейки, в порядке обнаружения
	Yield  block.MaterialID
	Origin vec.Vec3
	Actor  actor.Actor

	// Связь со спаном активации
	link trace.Link
}

// BatchResult - итог выполнения пакета
type BatchResult struct {
	TotalBroken   int
	ErrorCount    int
	Spawned       int // созданные единицы добычи
	SpawnFailures int
}

// BatchOutcome - полезная нагрузка события CapacitorBatch
type BatchOutcome struct {
	Rule          string   `json:"rule"`
	ActorID       string   `json:"actor_id,omitempty"`
	Origin        vec.Vec3 `json:"origin"`
	Yield         string   `json:"yield"`
	TotalBroken   int      `json:"total_broken"`
	ErrorCount    int      `json:"error_count"`
	Spawned       int      `json:"spawned"`
	SpawnFailures int      `json:"spawn_failures"`
}

// Mutator выполняет отложенные пакеты
type Mutator struct {
	grid      world.GridAccessor
	stackSize int
	log       *logging.Logger
	metrics   *Metrics
	publisher eventbus.Publisher
	tracer    trace.Tracer
}

// Execute ломает ячейки пакета, создаёт добычу у исходной ячейки и сообщает итог игроку.
// Ошибка одной ячейки не прерывает пакет; ничего не повторяется.
func (m *Mutator) Execute(ctx context.Context, p *PendingBreak) (res BatchResult) {
	ctx, span := m.tracer.Start(ctx, "capacitor.Execute", trace.WithLinks(p.link))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch panicked")
			m.log.Error("%s batch failed: %v", p.Rule.Name(), err)
		}
	}()

	for _, f := range p.Cells {
		cell, err := m.grid.GetCell(f.Pos)
		if err != nil {
			res.ErrorCount++
			m.log.Warn("Failed to break block at %s: %v", f.Pos, err)
			continue
		}
		if !p.Rule.IsHarvestable(cell.Material) {
			res.ErrorCount++
			m.log.Debug("Block at %s changed to %s before batch", f.Pos, cell.Material)
			continue
		}
		if err := m.grid.SetCellMaterial(f.Pos, block.Air); err != nil {
			res.ErrorCount++
			m.log.Warn("Failed to break block at %s: %v", f.Pos, err)
			continue
		}
		res.TotalBroken++
	}

	if res.TotalBroken > 0 {
		// +1 - исходная ячейка, которую ломает обычная добыча
		for _, n := range SplitStacks(res.TotalBroken+1, m.stackSize) {
			if err := m.grid.SpawnYield(p.Yield, n, p.Origin); err != nil {
				res.SpawnFailures++
				m.log.Warn("Failed to spawn %d x %s at %s: %v", n, p.Yield, p.Origin, err)
				notify(m.log, p.Actor, fmt.Sprintf("Error dropping items: %v", err))
				continue
			}
			res.Spawned += n
		}
		if res.Spawned > 0 {
			notify(m.log, p.Actor, fmt.Sprintf("Dropped %d blocks at location!", res.Spawned))
		}
	}

	if res.ErrorCount > 0 {
		notify(m.log, p.Actor, fmt.Sprintf("Warning: %d blocks couldn't be broken due to errors.", res.ErrorCount))
	}

	span.SetAttributes(
		attribute.String("capacitor.rule", p.Rule.Name()),
		attribute.Int("capacitor.broken", res.TotalBroken),
		attribute.Int("capacitor.errors", res.ErrorCount),
		attribute.Int("capacitor.spawned", res.Spawned),
	)
	m.metrics.observeBatch(p.Rule.Name(), res)
	m.publish(ctx, p, res)
	m.log.Debug("%s batch at %s: broken=%d errors=%d spawned=%d", p.Rule.Name(), p.Origin, res.TotalBroken, res.ErrorCount, res.Spawned)

	return res
}

func (m *Mutator) publish(ctx context.Context, p *PendingBreak, res BatchResult) {
	outcome := BatchOutcome{
		Rule:          p.Rule.Name(),
		Origin:        p.Origin,
		Yield:         string(p.Yield),
		TotalBroken:   res.TotalBroken,
		ErrorCount:    res.ErrorCount,
		Spawned:       res.Spawned,
		SpawnFailures: res.SpawnFailures,
	}
	if p.Actor != nil {
		outcome.ActorID = p.Actor.ID()
	}
	if err := eventbus.PublishEvent(ctx, m.publisher, eventbus.EventCapacitorBatch, "capacitor", outcome); err != nil {
		m.log.Warn("Не удалось опубликовать итог пакета: %v", err)
	}
}

// batchTask - задача планировщика, владеющая своим PendingBreak
type batchTask struct {
	mutator *Mutator
	pending PendingBreak
}

func (t *batchTask) Run() {
	t.mutator.Execute(context.Background(), &t.pending)
}

// notify отправляет сообщение игроку; ошибка доставки только логируется
func notify(log *logging.Logger, a actor.Actor, text string) {
	if a == nil {
		return
	}
	if err := a.SendMessage(text); err != nil {
		log.Warn("Failed to send message to %s: %v", a.ID(), err)
	}
}
