package capacitor

import (
	"errors"

	"github.com/tsugumi-sys/minecraft-addons/internal/actor"
	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

const (
	ironOre          block.MaterialID = ns + "iron_ore"
	deepslateIronOre block.MaterialID = ns + "deepslate_iron_ore"
	coalOre          block.MaterialID = ns + "coal_ore"
	rawIron          block.MaterialID = ns + "raw_iron"
	ironPickaxe      block.MaterialID = ns + "iron_pickaxe"
	wheat            block.MaterialID = ns + "wheat"
	carrots          block.MaterialID = ns + "carrots"
)

// scriptedGrid считает обращения и подставляет ошибки по сценарию
type scriptedGrid struct {
	*world.SparseGrid
	lookups   map[vec.Vec3]int
	failGet   map[vec.Vec3]error
	failSet   map[vec.Vec3]error
	panicGet  map[vec.Vec3]any
	spawnErrs []error // по одной на вызов SpawnYield, nil - успех
	spawns    []int
}

func newScriptedGrid() *scriptedGrid {
	return &scriptedGrid{
		SparseGrid: world.NewSparseGrid(),
		lookups:    make(map[vec.Vec3]int),
		failGet:    make(map[vec.Vec3]error),
		failSet:    make(map[vec.Vec3]error),
		panicGet:   make(map[vec.Vec3]any),
	}
}

func (g *scriptedGrid) GetCell(pos vec.Vec3) (world.Cell, error) {
	g.lookups[pos]++
	if v, ok := g.panicGet[pos]; ok {
		panic(v)
	}
	if err, ok := g.failGet[pos]; ok {
		return world.Cell{}, err
	}
	return g.SparseGrid.GetCell(pos)
}

func (g *scriptedGrid) SetCellMaterial(pos vec.Vec3, id block.MaterialID) error {
	if err, ok := g.failSet[pos]; ok {
		return err
	}
	return g.SparseGrid.SetCellMaterial(pos, id)
}

func (g *scriptedGrid) SpawnYield(id block.MaterialID, quantity int, pos vec.Vec3) error {
	g.spawns = append(g.spawns, quantity)
	if len(g.spawnErrs) > 0 {
		err := g.spawnErrs[0]
		g.spawnErrs = g.spawnErrs[1:]
		if err != nil {
			return err
		}
	}
	return g.SparseGrid.SpawnYield(id, quantity, pos)
}

func (g *scriptedGrid) totalLookups() int {
	n := 0
	for _, c := range g.lookups {
		n += c
	}
	return n
}

// placeLine ставит n ячеек материала вдоль оси X начиная с origin
func (g *scriptedGrid) placeLine(origin vec.Vec3, n int, id block.MaterialID) []vec.Vec3 {
	out := make([]vec.Vec3, 0, n)
	for i := 0; i < n; i++ {
		pos := origin.Add(vec.Vec3{X: i})
		if err := g.Place(pos, world.NewCell(id)); err != nil {
			panic(err)
		}
		out = append(out, pos)
	}
	return out
}

// flakyActor - игрок с отказами коллабораторов
type flakyActor struct {
	*actor.Player
	sendErr error
	invErr  error
}

func (a *flakyActor) SendMessage(text string) error {
	_ = a.Player.SendMessage(text)
	return a.sendErr
}

func (a *flakyActor) Inventory() (*actor.Container, error) {
	if a.invErr != nil {
		return nil, a.invErr
	}
	return a.Player.Inventory()
}

// miner возвращает присевшего игрока с инструментом в руке
func miner(tool block.MaterialID) *actor.Player {
	p := actor.NewPlayer("p1", "Steve")
	p.SetSneaking(true)
	if tool != block.None {
		inv, _ := p.Inventory()
		_ = inv.SetItem(0, actor.NewTool(tool, 0, 250))
	}
	return p
}

var errBoom = errors.New("boom")
