package capacitor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsugumi-sys/minecraft-addons/internal/actor"
	"github.com/tsugumi-sys/minecraft-addons/internal/eventbus"
	"github.com/tsugumi-sys/minecraft-addons/internal/scheduler"
	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

type recordingPublisher struct {
	events []*eventbus.Envelope
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, ev *eventbus.Envelope) error {
	p.events = append(p.events, ev)
	return p.err
}

type engineFixture struct {
	grid    *scriptedGrid
	sched   *scheduler.Scheduler
	engine  *Engine
	pub     *recordingPublisher
	metrics *Metrics
}

func newFixture(t *testing.T, rules ...*Rule) *engineFixture {
	t.Helper()
	f := &engineFixture{
		grid:    newScriptedGrid(),
		sched:   scheduler.New(nil),
		pub:     &recordingPublisher{},
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	f.engine = NewEngine(f.grid, f.sched, Options{
		Rules:     rules,
		Metrics:   f.metrics,
		Publisher: f.pub,
	})
	return f
}

func breakEvent(a actor.Actor, pos vec.Vec3, id block.MaterialID) world.BlockBreakEvent {
	return world.BlockBreakEvent{Actor: a, Pos: pos, Cell: world.NewCell(id)}
}

func TestScenarioA_FiveConnectedOres(t *testing.T) {
	f := newFixture(t)
	cells := f.grid.placeLine(vec.Vec3{X: 2, Y: 12, Z: 2}, 5, ironOre)
	p := miner(ironPickaxe)

	results := f.engine.HandleBreak(context.Background(), breakEvent(p, cells[0], ironOre))
	require.Len(t, results, 3, "Проверяются все правила")
	assert.Equal(t, OreRuleName, results[1].Rule)
	assert.Equal(t, 5, results[1].Found)
	assert.True(t, results[1].Scheduled)
	assert.False(t, results[0].Scheduled)
	assert.False(t, results[2].Scheduled)

	assert.Equal(t, []string{"Ore Capacitor activated! Breaking 5 blocks..."}, p.Messages())
	assert.Equal(t, 1, f.sched.Pending())

	// Пакет не выполняется в том же ходе
	cell, _ := f.grid.GetCell(cells[1])
	assert.Equal(t, ironOre, cell.Material)

	f.sched.Tick()

	for _, pos := range cells[1:] {
		cell, err := f.grid.GetCell(pos)
		require.NoError(t, err)
		assert.True(t, cell.IsAir(), "%s сломан пакетом", pos)
	}
	origin, _ := f.grid.GetCell(cells[0])
	assert.Equal(t, ironOre, origin.Material, "Исходная ячейка остаётся для обычной добычи")

	drops := f.grid.TakeDrops()
	require.Len(t, drops, 1)
	assert.Equal(t, world.ItemDrop{Material: rawIron, Count: 5, Pos: cells[0]}, drops[0])
	assert.Equal(t, []string{
		"Ore Capacitor activated! Breaking 5 blocks...",
		"Dropped 5 blocks at location!",
	}, p.Messages())

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.activations.WithLabelValues(OreRuleName)))
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.broken.WithLabelValues(OreRuleName)))
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.failed.WithLabelValues(OreRuleName)))

	require.Len(t, f.pub.events, 2)
	assert.Equal(t, eventbus.EventCapacitorActivated, f.pub.events[0].EventType)
	var outcome BatchOutcome
	require.NoError(t, f.pub.events[1].DecodePayload(&outcome))
	assert.Equal(t, BatchOutcome{
		Rule:        OreRuleName,
		ActorID:     "p1",
		Origin:      cells[0],
		Yield:       string(rawIron),
		TotalBroken: 4,
		Spawned:     5,
	}, outcome)
}

func TestScenarioB_CellRemovedBeforeBatch(t *testing.T) {
	f := newFixture(t)
	cells := f.grid.placeLine(vec.Vec3{Y: 12}, 5, ironOre)
	p := miner(ironPickaxe)

	f.engine.HandleBreak(context.Background(), breakEvent(p, cells[0], ironOre))
	require.NoError(t, f.grid.SetCellMaterial(cells[3], block.Air))

	require.Equal(t, 1, f.sched.Pending())
	f.sched.Tick()

	drops := f.grid.TakeDrops()
	require.Len(t, drops, 1)
	assert.Equal(t, 4, drops[0].Count, "3 сломано + исходная")
	assert.Equal(t, []string{
		"Ore Capacitor activated! Breaking 5 blocks...",
		"Dropped 4 blocks at location!",
		"Warning: 1 blocks couldn't be broken due to errors.",
	}, p.Messages())

	// Тот же сценарий напрямую через Mutator
	g := newScriptedGrid()
	line := g.placeLine(vec.Vec3{Y: 12}, 5, ironOre)
	require.NoError(t, g.SetCellMaterial(line[2], block.Air))
	m := NewEngine(g, scheduler.New(nil), Options{}).Mutator()
	res := m.Execute(context.Background(), &PendingBreak{
		Rule:   DefaultRules(100)[1],
		Cells:  []Found{{line[1], ironOre}, {line[2], ironOre}, {line[3], ironOre}, {line[4], ironOre}},
		Yield:  rawIron,
		Origin: line[0],
	})
	assert.Equal(t, BatchResult{TotalBroken: 3, ErrorCount: 1, Spawned: 4}, res)
}

func TestScenarioC_CapLimitsComponent(t *testing.T) {
	rule, err := NewRule(RuleConfig{
		Name:      "Tiny Ore",
		Yields:    oreYields,
		Tools:     []block.MaterialID{ironPickaxe},
		MaxBlocks: 2,
	})
	require.NoError(t, err)
	f := newFixture(t, rule)
	cells := f.grid.placeLine(vec.Vec3{Y: 12}, 10, ironOre)
	p := miner(ironPickaxe)

	res := f.engine.Activate(context.Background(), rule, breakEvent(p, cells[0], ironOre))
	assert.Equal(t, 2, res.Found)
	assert.True(t, res.Scheduled)

	f.sched.Tick()
	for i, pos := range cells {
		cell, _ := f.grid.GetCell(pos)
		if i == 1 {
			assert.True(t, cell.IsAir())
		} else {
			assert.Equal(t, ironOre, cell.Material, "Ячейки за лимитом не тронуты")
		}
	}
	assert.Equal(t, 2, f.grid.TakeDrops()[0].Count)
}

func TestScenarioD_NotSneaking(t *testing.T) {
	f := newFixture(t)
	cells := f.grid.placeLine(vec.Vec3{Y: 12}, 5, ironOre)
	p := miner(ironPickaxe)
	p.SetSneaking(false)

	results := f.engine.HandleBreak(context.Background(), breakEvent(p, cells[0], ironOre))
	for _, r := range results {
		assert.False(t, r.Scheduled)
		assert.Zero(t, r.Found)
		assert.NoError(t, r.Err)
	}
	assert.Zero(t, f.grid.totalLookups(), "Обход не начинается")
	assert.Empty(t, p.Messages())
	assert.Zero(t, f.sched.Pending())
	assert.Empty(t, f.pub.events)
}

func TestScenarioE_StackSplitting(t *testing.T) {
	assert.Equal(t, []int{64, 64, 2}, SplitStacks(130, 64))
	assert.Equal(t, []int{64}, SplitStacks(64, 64))
	assert.Equal(t, []int{5}, SplitStacks(5, 0))
	assert.Nil(t, SplitStacks(0, 64))

	g := newScriptedGrid()
	origin := vec.Vec3{Y: 12}
	g.LoadChunk(origin.ToChunkCoords())
	var cells []Found
	for i := 1; i <= 129; i++ {
		pos := vec.Vec3{X: i % 16, Y: 12 + i/16, Z: 0}
		require.NoError(t, g.Place(pos, world.NewCell(ironOre)))
		cells = append(cells, Found{Pos: pos, Material: ironOre})
	}

	m := NewEngine(g, scheduler.New(nil), Options{}).Mutator()
	res := m.Execute(context.Background(), &PendingBreak{
		Rule:   DefaultRules(200)[1],
		Cells:  cells,
		Yield:  rawIron,
		Origin: origin,
	})
	assert.Equal(t, 129, res.TotalBroken)
	assert.Equal(t, []int{64, 64, 2}, g.spawns, "Три вызова создания выпадения")
	assert.Equal(t, 130, res.Spawned)
}

func TestActivate_SingleCellNeverSchedules(t *testing.T) {
	f := newFixture(t)
	origin := vec.Vec3{Y: 12}
	f.grid.placeLine(origin, 1, ironOre)
	p := miner(ironPickaxe)

	f.engine.HandleBreak(context.Background(), breakEvent(p, origin, ironOre))
	assert.Zero(t, f.sched.Pending())
	assert.Empty(t, p.Messages())
}

func TestActivate_IdempotentOnEmptiedRegion(t *testing.T) {
	f := newFixture(t)
	origin := vec.Vec3{Y: 12}
	f.grid.LoadChunk(origin.ToChunkCoords())
	p := miner(ironPickaxe)

	for i := 0; i < 2; i++ {
		ev := world.BlockBreakEvent{Actor: p, Pos: origin}
		for _, r := range f.engine.HandleBreak(context.Background(), ev) {
			assert.False(t, r.Scheduled)
		}
	}
	assert.Empty(t, p.Messages())
	assert.Zero(t, f.sched.Pending())
}

func TestActivate_ToolAndInventoryChecks(t *testing.T) {
	f := newFixture(t)
	cells := f.grid.placeLine(vec.Vec3{Y: 12}, 3, ironOre)

	wrongTool := miner(ns + "iron_axe")
	bare := miner(block.None)
	noInventory := &flakyActor{Player: miner(ironPickaxe), invErr: actor.ErrNoInventory}

	for _, a := range []actor.Actor{wrongTool, bare, noInventory, nil} {
		for _, r := range f.engine.HandleBreak(context.Background(), breakEvent(a, cells[0], ironOre)) {
			assert.False(t, r.Scheduled)
			assert.NoError(t, r.Err, "Ошибка инвентаря - просто невыполненное условие")
		}
	}
	assert.Zero(t, f.sched.Pending())
	assert.Empty(t, noInventory.Messages())
}

func TestActivate_MessageFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	cells := f.grid.placeLine(vec.Vec3{Y: 12}, 3, ironOre)
	a := &flakyActor{Player: miner(ironPickaxe), sendErr: errBoom}

	f.engine.HandleBreak(context.Background(), breakEvent(a, cells[0], ironOre))
	require.Equal(t, 1, f.sched.Pending())
	f.sched.Tick()

	assert.Equal(t, 3, f.grid.TakeDrops()[0].Count)
	assert.Len(t, a.Messages(), 2, "Сообщения отправляются один раз, без повторов")
}

func TestActivate_PanicIsContainedPerRule(t *testing.T) {
	f := newFixture(t)
	cells := f.grid.placeLine(vec.Vec3{Y: 12}, 3, ironOre)
	f.grid.panicGet[cells[1]] = "grid exploded"
	p := miner(ironPickaxe)

	var results []ActivationResult
	require.NotPanics(t, func() {
		results = f.engine.HandleBreak(context.Background(), breakEvent(p, cells[0], ironOre))
	})
	require.Len(t, results, 3, "Ошибка одного правила не мешает следующему")
	assert.Error(t, results[1].Err)
	assert.False(t, results[1].Scheduled)
	assert.Equal(t, []string{"Ore Capacitor error: grid exploded"}, p.Messages())
	assert.Zero(t, f.sched.Pending())
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.panics.WithLabelValues(OreRuleName)))
}

func TestExecute_SpawnFailureContinues(t *testing.T) {
	f := newFixture(t)
	origin := vec.Vec3{Y: 12}
	f.grid.LoadChunk(origin.ToChunkCoords())
	var cells []Found
	for i := 1; i <= 99; i++ {
		pos := vec.Vec3{X: i % 16, Y: 12 + i/16}
		require.NoError(t, f.grid.Place(pos, world.NewCell(ironOre)))
		cells = append(cells, Found{Pos: pos, Material: ironOre})
	}
	f.grid.spawnErrs = []error{errBoom, nil}
	p := miner(ironPickaxe)

	res := f.engine.Mutator().Execute(context.Background(), &PendingBreak{
		Rule:   DefaultRules(100)[1],
		Cells:  cells,
		Yield:  rawIron,
		Origin: origin,
		Actor:  p,
	})
	assert.Equal(t, 99, res.TotalBroken, "Ошибка выпадения не откатывает сломанные ячейки")
	assert.Equal(t, 1, res.SpawnFailures)
	assert.Equal(t, 36, res.Spawned)
	assert.Equal(t, []string{
		"Error dropping items: boom",
		"Dropped 36 blocks at location!",
	}, p.Messages())
}

// stalledPublisher не подтверждает публикацию до отмены ctx
type stalledPublisher struct {
	calls int
}

func (p *stalledPublisher) Publish(ctx context.Context, ev *eventbus.Envelope) error {
	p.calls++
	<-ctx.Done()
	return ctx.Err()
}

func TestBatch_CompletesWhenPublisherStalls(t *testing.T) {
	defer func(old time.Duration) { eventbus.PublishTimeout = old }(eventbus.PublishTimeout)
	eventbus.PublishTimeout = 20 * time.Millisecond

	grid := newScriptedGrid()
	sched := scheduler.New(nil)
	pub := &stalledPublisher{}
	engine := NewEngine(grid, sched, Options{
		Metrics:   NewMetrics(prometheus.NewRegistry()),
		Publisher: pub,
	})
	cells := grid.placeLine(vec.Vec3{X: 2, Y: 12, Z: 2}, 3, ironOre)
	p := miner(ironPickaxe)

	done := make(chan struct{})
	go func() {
		defer close(done)
		engine.HandleBreak(context.Background(), breakEvent(p, cells[0], ironOre))
		sched.Tick()
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Пакет завис на публикации события")
	}

	for _, pos := range cells[1:] {
		cell, err := grid.GetCell(pos)
		require.NoError(t, err)
		assert.True(t, cell.IsAir(), "%s сломан пакетом", pos)
	}
	assert.Equal(t, 2, pub.calls, "Активация и итог пакета")
	assert.Equal(t, []string{
		"Ore Capacitor activated! Breaking 3 blocks...",
		"Dropped 3 blocks at location!",
	}, p.Messages())
}

func TestExecute_MutationAndLookupFailuresCounted(t *testing.T) {
	f := newFixture(t)
	cells := f.grid.placeLine(vec.Vec3{Y: 12}, 4, ironOre)
	f.grid.failSet[cells[1]] = errBoom
	f.grid.failGet[cells[2]] = fmt.Errorf("%w: gone", world.ErrCellUnavailable)
	p := miner(ironPickaxe)

	res := f.engine.Mutator().Execute(context.Background(), &PendingBreak{
		Rule:   DefaultRules(100)[1],
		Cells:  []Found{{cells[1], ironOre}, {cells[2], ironOre}, {cells[3], ironOre}},
		Yield:  rawIron,
		Origin: cells[0],
		Actor:  p,
	})
	assert.Equal(t, BatchResult{TotalBroken: 1, ErrorCount: 2, Spawned: 2}, res)
	assert.Equal(t, []string{
		"Dropped 2 blocks at location!",
		"Warning: 2 blocks couldn't be broken due to errors.",
	}, p.Messages())
}

func TestExecute_NothingBrokenNoDrop(t *testing.T) {
	f := newFixture(t)
	cells := f.grid.placeLine(vec.Vec3{Y: 12}, 2, ironOre)
	require.NoError(t, f.grid.SetCellMaterial(cells[1], ns+"stone"))
	p := miner(ironPickaxe)

	res := f.engine.Mutator().Execute(context.Background(), &PendingBreak{
		Rule:   DefaultRules(100)[1],
		Cells:  []Found{{cells[1], ironOre}},
		Yield:  rawIron,
		Origin: cells[0],
		Actor:  p,
	})
	assert.Equal(t, BatchResult{ErrorCount: 1}, res)
	assert.Empty(t, f.grid.spawns)
	assert.Equal(t, []string{"Warning: 1 blocks couldn't be broken due to errors."}, p.Messages())
}

func TestEngine_CropRuleHarvestsField(t *testing.T) {
	f := newFixture(t)
	for x := 0; x < 3; x++ {
		for z := 0; z < 3; z++ {
			id := wheat
			if (x+z)%2 == 1 {
				id = carrots
			}
			require.NoError(t, f.grid.Place(vec.Vec3{X: x, Y: 64, Z: z}, world.NewCell(id)))
		}
	}
	p := miner(ns + "stone_hoe")

	results := f.engine.HandleBreak(context.Background(), breakEvent(p, vec.Vec3{Y: 64}, wheat))
	assert.Equal(t, 9, results[2].Found, "Разные культуры одного класса связаны")
	f.sched.Tick()

	drops := f.grid.TakeDrops()
	require.Len(t, drops, 1)
	assert.Equal(t, world.ItemDrop{Material: ns + "wheat", Count: 9, Pos: vec.Vec3{Y: 64}}, drops[0],
		"Добыча - продукт исходной культуры")
}
