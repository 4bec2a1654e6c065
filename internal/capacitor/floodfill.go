package capacitor

import (
	"github.com/tsugumi-sys/minecraft-addons/internal/logging"
	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// Found - ячейка, найденная обходом, с материалом на момент обнаружения
type Found struct {
	Pos      vec.Vec3
	Material block.MaterialID
}

// Component - связная область в порядке обхода в ширину; первый элемент - исходная ячейка
type Component []Found

// Positions возвращает координаты области
func (c Component) Positions() []vec.Vec3 {
	out := make([]vec.Vec3, len(c))
	for i, f := range c {
		out[i] = f.Pos
	}
	return out
}

// FillStats - счётчики одного обхода
type FillStats struct {
	Visited        int
	LookupFailures int
}

// FloodFill находит связную область от origin, не больше limit ячеек.
// Лимит проверяется в начале каждой итерации: уже поставленные в очередь
// ячейки сверх лимита просто не извлекаются. limit <= 0 - пустой результат без обращений к сетке.
func FloodFill(grid world.CellReader, origin vec.Vec3, match Matcher, limit int, shape NeighborShape) Component {
	comp, _ := floodFill(grid, origin, match, limit, shape, nil)
	return comp
}

func floodFill(grid world.CellReader, origin vec.Vec3, match Matcher, limit int, shape NeighborShape, log *logging.Logger) (Component, FillStats) {
	var stats FillStats
	if limit <= 0 {
		return nil, stats
	}

	offsets := shape.Offsets()
	visited := make(map[vec.Vec3]struct{})
	queue := []vec.Vec3{origin}
	var comp Component

	for len(queue) > 0 && len(comp) < limit {
		pos := queue[0]
		queue = queue[1:]

		if _, seen := visited[pos]; seen {
			continue
		}
		visited[pos] = struct{}{}
		stats.Visited++

		cell, err := grid.GetCell(pos)
		if err != nil {
			stats.LookupFailures++
			if log != nil {
				log.Warn("Failed to access block at %s: %v", pos, err)
			}
			continue
		}
		if !match(cell.Material) {
			continue
		}

		comp = append(comp, Found{Pos: pos, Material: cell.Material})
		for _, off := range offsets {
			next := pos.Add(off)
			if _, seen := visited[next]; !seen {
				queue = append(queue, next)
			}
		}
	}

	return comp, stats
}
