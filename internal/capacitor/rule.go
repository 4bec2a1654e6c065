// Package capacitor реализует правила массовой добычи: при добыче блока с правильным
// инструментом в присевшем положении находит связную область того же материала
// и ломает её отложенным пакетом, складывая добычу в стопки у исходного блока.
package capacitor

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tsugumi-sys/minecraft-addons/internal/vec"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

// MatchMode - предикат эквивалентности материалов
type MatchMode uint8

const (
	// MatchExactYield - ячейки связаны, только если их материалы дают одинаковую добычу
	MatchExactYield MatchMode = iota
	// MatchClass - любые материалы из таблицы правила связаны между собой
	MatchClass
)

func (m MatchMode) String() string {
	switch m {
	case MatchExactYield:
		return "exact"
	case MatchClass:
		return "class"
	default:
		return fmt.Sprintf("MatchMode(%d)", m)
	}
}

// ParseMatchMode разбирает "exact" / "class"; пустая строка - exact
func ParseMatchMode(s string) (MatchMode, error) {
	switch s {
	case "", "exact":
		return MatchExactYield, nil
	case "class":
		return MatchClass, nil
	}
	return 0, fmt.Errorf("unknown match mode %q", s)
}

// NeighborShape - форма окрестности обхода
type NeighborShape uint8

const (
	// ShapeVolumetric - 26 соседей в кубе 3x3x3
	ShapeVolumetric NeighborShape = iota
	// ShapePlanar - 8 соседей на той же высоте
	ShapePlanar
)

func (s NeighborShape) String() string {
	switch s {
	case ShapeVolumetric:
		return "volumetric"
	case ShapePlanar:
		return "planar"
	default:
		return fmt.Sprintf("NeighborShape(%d)", s)
	}
}

// Offsets возвращает смещения соседей в фиксированном порядке перебора
func (s NeighborShape) Offsets() []vec.Vec3 {
	if s == ShapePlanar {
		return vec.PlanarOffsets
	}
	return vec.VolumetricOffsets
}

// ParseNeighborShape разбирает "volumetric" / "planar"; пустая строка - volumetric
func ParseNeighborShape(s string) (NeighborShape, error) {
	switch s {
	case "", "volumetric":
		return ShapeVolumetric, nil
	case "planar":
		return ShapePlanar, nil
	}
	return 0, fmt.Errorf("unknown neighbor shape %q", s)
}

// RuleConfig - исходные данные правила
type RuleConfig struct {
	Name      string
	Yields    map[block.MaterialID]block.MaterialID // добываемый материал → добыча
	Tools     []block.MaterialID
	MaxBlocks int
	Match     MatchMode
	Shape     NeighborShape
}

// Rule - неизменяемое правило массовой добычи
type Rule struct {
	name      string
	yields    map[block.MaterialID]block.MaterialID
	tools     map[block.MaterialID]struct{}
	maxBlocks int
	match     MatchMode
	shape     NeighborShape
}

// Matcher классифицирует материал ячейки при обходе
type Matcher func(id block.MaterialID) bool

// NewRule копирует конфигурацию в неизменяемое правило
func NewRule(cfg RuleConfig) (*Rule, error) {
	if cfg.Name == "" {
		return nil, errors.New("rule name is empty")
	}
	if len(cfg.Yields) == 0 {
		return nil, fmt.Errorf("rule %q has no harvestable materials", cfg.Name)
	}
	if cfg.MaxBlocks < 0 {
		return nil, fmt.Errorf("rule %q: negative max blocks %d", cfg.Name, cfg.MaxBlocks)
	}
	if cfg.Match > MatchClass {
		return nil, fmt.Errorf("rule %q: %s", cfg.Name, cfg.Match)
	}
	if cfg.Shape > ShapePlanar {
		return nil, fmt.Errorf("rule %q: %s", cfg.Name, cfg.Shape)
	}

	r := &Rule{
		name:      cfg.Name,
		yields:    make(map[block.MaterialID]block.MaterialID, len(cfg.Yields)),
		tools:     make(map[block.MaterialID]struct{}, len(cfg.Tools)),
		maxBlocks: cfg.MaxBlocks,
		match:     cfg.Match,
		shape:     cfg.Shape,
	}
	for from, to := range cfg.Yields {
		if from == block.None || to == block.None {
			return nil, fmt.Errorf("rule %q: empty material in yield table", cfg.Name)
		}
		r.yields[from] = to
	}
	for _, t := range cfg.Tools {
		r.tools[t] = struct{}{}
	}
	return r, nil
}

// MustRule - NewRule для статических таблиц
func MustRule(cfg RuleConfig) *Rule {
	r, err := NewRule(cfg)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Rule) Name() string         { return r.name }
func (r *Rule) MaxBlocks() int       { return r.maxBlocks }
func (r *Rule) Match() MatchMode     { return r.match }
func (r *Rule) Shape() NeighborShape { return r.shape }

// IsHarvestable сообщает, есть ли материал в таблице правила
func (r *Rule) IsHarvestable(id block.MaterialID) bool {
	_, ok := r.yields[id]
	return ok
}

// YieldFor возвращает добычу материала
func (r *Rule) YieldFor(id block.MaterialID) (block.MaterialID, bool) {
	y, ok := r.yields[id]
	return y, ok
}

// QualifiesTool сообщает, подходит ли инструмент
func (r *Rule) QualifiesTool(id block.MaterialID) bool {
	if id == block.None {
		return false
	}
	_, ok := r.tools[id]
	return ok
}

// Matcher возвращает предикат связности для целевой добычи target
func (r *Rule) Matcher(target block.MaterialID) Matcher {
	if r.match == MatchClass {
		return r.IsHarvestable
	}
	return func(id block.MaterialID) bool {
		y, ok := r.yields[id]
		return ok && y == target
	}
}

// Materials возвращает добываемые материалы в отсортированном порядке
func (r *Rule) Materials() []block.MaterialID {
	out := make([]block.MaterialID, 0, len(r.yields))
	for id := range r.yields {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Tools возвращает подходящие инструменты в отсортированном порядке
func (r *Rule) Tools() []block.MaterialID {
	out := make([]block.MaterialID, 0, len(r.tools))
	for id := range r.tools {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
