package replanting

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsugumi-sys/minecraft-addons/internal/actor"
	"github.com/tsugumi-sys/minecraft-addons/internal/eventbus"
	"github.com/tsugumi-sys/minecraft-addons/internal/i18n"
	"github.com/tsugumi-sys/minecraft-addons/internal/scheduler"
	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

const (
	wheat      block.MaterialID = ns + "wheat"
	wheatSeeds block.MaterialID = ns + "wheat_seeds"
	netherWart block.MaterialID = ns + "nether_wart"
)

type recordingPublisher struct {
	events []*eventbus.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, ev *eventbus.Envelope) error {
	p.events = append(p.events, ev)
	return nil
}

type fixture struct {
	grid    *world.SparseGrid
	sched   *scheduler.Scheduler
	r       *Replanter
	player  *actor.Player
	pub     *recordingPublisher
	metrics *Metrics
}

func newFixture(t *testing.T, lang string) *fixture {
	t.Helper()
	grid := world.NewSparseGrid()
	grid.LoadChunk(vec.Vec2{X: 0, Y: 0})
	sched := scheduler.New(nil)
	pub := &recordingPublisher{}
	metrics := NewMetrics(prometheus.NewRegistry())
	r := NewReplanter(grid, sched, Options{
		Translator: i18n.New(lang),
		Publisher:  pub,
		Metrics:    metrics,
	})
	return &fixture{
		grid:    grid,
		sched:   sched,
		r:       r,
		player:  actor.NewPlayer("p1", "Steve"),
		pub:     pub,
		metrics: metrics,
	}
}

func (f *fixture) give(t *testing.T, id block.MaterialID, amount int) {
	t.Helper()
	inv, err := f.player.Inventory()
	require.NoError(t, err)
	_, err = inv.AddItem(actor.NewItemStack(id, amount))
	require.NoError(t, err)
}

func (f *fixture) count(t *testing.T, id block.MaterialID) int {
	t.Helper()
	inv, err := f.player.Inventory()
	require.NoError(t, err)
	return inv.Count(id)
}

// harvest ломает ячейку так же, как диспетчер: после удаления вызывается обработчик
func (f *fixture) harvest(t *testing.T, pos vec.Vec3) {
	t.Helper()
	cell, err := f.grid.GetCell(pos)
	require.NoError(t, err)
	require.NoError(t, f.grid.SetCellMaterial(pos, block.Air))
	f.r.OnBreak(context.Background(), world.BlockBreakEvent{Actor: f.player, Pos: pos, Cell: cell})
}

func (f *fixture) advance(ticks int) {
	for i := 0; i < ticks; i++ {
		f.sched.Tick()
	}
}

func TestIsMature(t *testing.T) {
	spec := Crops[wheat]
	assert.True(t, IsMature(world.NewCell(wheat).WithState(block.StateGrowth, 7), spec))
	assert.False(t, IsMature(world.NewCell(wheat).WithState(block.StateGrowth, 6), spec))
	assert.True(t, IsMature(world.NewCell(wheat).WithState(block.StateAge, 7), spec))
	assert.True(t, IsMature(world.NewCell(wheat).WithState(block.StateGrowth, 0).WithState(block.StateAge, 7), spec),
		"нулевой growth уступает age")
	assert.False(t, IsMature(world.NewCell(wheat), spec))
	assert.True(t, IsMature(world.NewCell(ns+"cocoa").WithState(block.StateAge, 2), Crops[ns+"cocoa"]))
}

func TestTreesTable(t *testing.T) {
	assert.Len(t, Trees, 8)
	assert.Equal(t, block.MaterialID(ns+"mangrove_propagule"), Trees[ns+"mangrove_log"])
	assert.Equal(t, block.MaterialID(ns+"oak_sapling"), Trees[ns+"oak_log"])
}

func TestReplantMatureCrop(t *testing.T) {
	f := newFixture(t, "en")
	pos := vec.Vec3{X: 2, Y: 64, Z: 2}
	require.NoError(t, f.grid.SetCell(pos.Below(), world.NewCell(block.Farmland)))
	require.NoError(t, f.grid.SetCell(pos, world.NewCell(wheat).WithState(block.StateGrowth, 7)))
	f.give(t, wheatSeeds, 3)

	f.harvest(t, pos)

	f.advance(DefaultDelayTicks - 1)
	cell, _ := f.grid.GetCell(pos)
	assert.True(t, cell.IsAir(), "посадка только через 40 тиков")

	f.advance(1)
	cell, _ = f.grid.GetCell(pos)
	assert.Equal(t, wheat, cell.Material)
	growth, ok := cell.StateValue(block.StateGrowth)
	assert.True(t, ok)
	assert.Zero(t, growth)

	assert.Equal(t, 2, f.count(t, wheatSeeds))
	assert.Equal(t, []string{"§aReplanted wheat crop replanted!"}, f.player.Messages())

	require.Len(t, f.pub.events, 1)
	var payload Replanted
	require.NoError(t, f.pub.events[0].DecodePayload(&payload))
	assert.Equal(t, KindCrop, payload.Kind)
	assert.Equal(t, pos, payload.Pos)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.replanted.WithLabelValues("crop")))
}

func TestReplantJapaneseMessage(t *testing.T) {
	f := newFixture(t, "ja")
	pos := vec.Vec3{X: 1, Y: 30, Z: 1}
	require.NoError(t, f.grid.SetCell(pos, world.NewCell(netherWart).WithState(block.StateAge, 3)))
	f.give(t, netherWart, 1)

	f.harvest(t, pos)
	f.advance(DefaultDelayTicks)

	cell, _ := f.grid.GetCell(pos)
	assert.Equal(t, netherWart, cell.Material)
	age, ok := cell.StateValue(block.StateAge)
	assert.True(t, ok, "состояние роста берётся из собранной ячейки")
	assert.Zero(t, age)
	assert.Equal(t, 0, f.count(t, netherWart))
	assert.Equal(t, []string{"§aネザーウォートを植え直しました！"}, f.player.Messages())
}

func TestReplantSkips(t *testing.T) {
	t.Run("Immature crop", func(t *testing.T) {
		f := newFixture(t, "en")
		pos := vec.Vec3{X: 2, Y: 64, Z: 2}
		require.NoError(t, f.grid.SetCell(pos.Below(), world.NewCell(block.Farmland)))
		require.NoError(t, f.grid.SetCell(pos, world.NewCell(wheat).WithState(block.StateGrowth, 3)))
		f.give(t, wheatSeeds, 1)

		f.harvest(t, pos)
		assert.Zero(t, f.sched.Pending())
	})

	t.Run("No seeds", func(t *testing.T) {
		f := newFixture(t, "en")
		pos := vec.Vec3{X: 2, Y: 64, Z: 2}
		require.NoError(t, f.grid.SetCell(pos, world.NewCell(wheat).WithState(block.StateGrowth, 7)))

		f.harvest(t, pos)
		assert.Zero(t, f.sched.Pending())
	})

	t.Run("Farmland gone", func(t *testing.T) {
		f := newFixture(t, "en")
		pos := vec.Vec3{X: 2, Y: 64, Z: 2}
		require.NoError(t, f.grid.SetCell(pos.Below(), world.NewCell(block.Farmland)))
		require.NoError(t, f.grid.SetCell(pos, world.NewCell(wheat).WithState(block.StateGrowth, 7)))
		f.give(t, wheatSeeds, 1)

		f.harvest(t, pos)
		require.NoError(t, f.grid.SetCell(pos.Below(), world.NewCell(block.Dirt)))
		f.advance(DefaultDelayTicks)

		cell, _ := f.grid.GetCell(pos)
		assert.True(t, cell.IsAir())
		assert.Equal(t, 1, f.count(t, wheatSeeds))
		assert.Empty(t, f.player.Messages())
	})

	t.Run("Cell occupied", func(t *testing.T) {
		f := newFixture(t, "en")
		pos := vec.Vec3{X: 2, Y: 64, Z: 2}
		require.NoError(t, f.grid.SetCell(pos.Below(), world.NewCell(block.Farmland)))
		require.NoError(t, f.grid.SetCell(pos, world.NewCell(wheat).WithState(block.StateGrowth, 7)))
		f.give(t, wheatSeeds, 1)

		f.harvest(t, pos)
		require.NoError(t, f.grid.SetCell(pos, world.NewCell(block.Stone)))
		f.advance(DefaultDelayTicks)

		cell, _ := f.grid.GetCell(pos)
		assert.Equal(t, block.Stone, cell.Material)
		assert.Equal(t, 1, f.count(t, wheatSeeds))
	})

	t.Run("Chunk unloaded", func(t *testing.T) {
		f := newFixture(t, "en")
		pos := vec.Vec3{X: 2, Y: 64, Z: 2}
		require.NoError(t, f.grid.SetCell(pos.Below(), world.NewCell(block.Farmland)))
		require.NoError(t, f.grid.SetCell(pos, world.NewCell(wheat).WithState(block.StateGrowth, 7)))
		f.give(t, wheatSeeds, 1)

		f.harvest(t, pos)
		f.grid.UnloadChunk(vec.Vec2{X: 0, Y: 0})
		assert.NotPanics(t, func() { f.advance(DefaultDelayTicks) })
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.failures.WithLabelValues("crop")))
		assert.Empty(t, f.player.Messages())
	})

	t.Run("Not a crop or log", func(t *testing.T) {
		f := newFixture(t, "en")
		pos := vec.Vec3{X: 2, Y: 64, Z: 2}
		require.NoError(t, f.grid.SetCell(pos, world.NewCell(block.Stone)))
		f.harvest(t, pos)
		assert.Zero(t, f.sched.Pending())
	})
}

func TestReplantTree(t *testing.T) {
	f := newFixture(t, "en")
	oakLog := block.Log("oak")
	oakSapling := block.Sapling("oak")

	// ствол из трёх брёвен на траве
	ground := vec.Vec3{X: 4, Y: 63, Z: 4}
	require.NoError(t, f.grid.SetCell(ground, world.NewCell(block.GrassBlock)))
	for y := 64; y <= 66; y++ {
		require.NoError(t, f.grid.SetCell(vec.Vec3{X: 4, Y: y, Z: 4}, world.NewCell(oakLog)))
	}
	f.give(t, oakSapling, 2)

	// верхнее бревно: под ним ещё брёвна, почва не найдена до очистки
	f.harvest(t, vec.Vec3{X: 4, Y: 66, Z: 4})
	assert.Zero(t, f.sched.Pending())

	f.harvest(t, vec.Vec3{X: 4, Y: 65, Z: 4})
	assert.Zero(t, f.sched.Pending())

	f.harvest(t, vec.Vec3{X: 4, Y: 64, Z: 4})
	require.Equal(t, 1, f.sched.Pending())

	f.advance(DefaultDelayTicks)
	cell, _ := f.grid.GetCell(ground.Above())
	assert.Equal(t, oakSapling, cell.Material)
	assert.Equal(t, 1, f.count(t, oakSapling))
	assert.Equal(t, []string{"§aReplanted oak sapling sapling planted!"}, f.player.Messages())
}

func TestFindGround(t *testing.T) {
	f := newFixture(t, "en")
	from := vec.Vec3{X: 8, Y: 70, Z: 8}

	_, ok := f.r.FindGround(from)
	assert.False(t, ok, "только воздух")

	// почва на границе глубины поиска
	require.NoError(t, f.grid.SetCell(vec.Vec3{X: 8, Y: 60, Z: 8}, world.NewCell(block.Podzol)))
	pos, ok := f.r.FindGround(from)
	require.True(t, ok)
	assert.Equal(t, vec.Vec3{X: 8, Y: 60, Z: 8}, pos)

	// глубже десяти блоков не ищем
	_, ok = f.r.FindGround(vec.Vec3{X: 8, Y: 71, Z: 8})
	assert.False(t, ok)

	// почва под камнем не подходит
	require.NoError(t, f.grid.SetCell(vec.Vec3{X: 8, Y: 61, Z: 8}, world.NewCell(block.Stone)))
	_, ok = f.r.FindGround(from)
	assert.False(t, ok)
}
