package capacitor

import (
	"fmt"

	"github.com/tsugumi-sys/minecraft-addons/internal/config"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

const ns = block.Namespace

// Имена стандартных правил
const (
	WoodRuleName = "Wood Capacitor"
	OreRuleName  = "Ore Capacitor"
	CropRuleName = "Crop Capacitor"
)

// DefaultMaxBlocks - лимит области по умолчанию
const DefaultMaxBlocks = 100

func woodYields() map[block.MaterialID]block.MaterialID {
	out := make(map[block.MaterialID]block.MaterialID)
	for _, sp := range block.WoodSpecies {
		out[block.Log(sp)] = block.Log(sp)
		out[block.Wood(sp)] = block.Log(sp)
	}
	return out
}

var oreYields = map[block.MaterialID]block.MaterialID{
	ns + "coal_ore":               ns + "coal",
	ns + "deepslate_coal_ore":     ns + "coal",
	ns + "iron_ore":               ns + "raw_iron",
	ns + "deepslate_iron_ore":     ns + "raw_iron",
	ns + "copper_ore":             ns + "raw_copper",
	ns + "deepslate_copper_ore":   ns + "raw_copper",
	ns + "gold_ore":               ns + "raw_gold",
	ns + "deepslate_gold_ore":     ns + "raw_gold",
	ns + "redstone_ore":           ns + "redstone",
	ns + "deepslate_redstone_ore": ns + "redstone",
	ns + "lapis_ore":              ns + "lapis_lazuli",
	ns + "deepslate_lapis_ore":    ns + "lapis_lazuli",
	ns + "diamond_ore":            ns + "diamond",
	ns + "deepslate_diamond_ore":  ns + "diamond",
	ns + "emerald_ore":            ns + "emerald",
	ns + "deepslate_emerald_ore":  ns + "emerald",
	ns + "nether_quartz_ore":      ns + "quartz",
	ns + "nether_gold_ore":        ns + "gold_nugget",
	ns + "ancient_debris":         ns + "netherite_scrap",
}

var cropYields = map[block.MaterialID]block.MaterialID{
	ns + "wheat":            ns + "wheat",
	ns + "carrots":          ns + "carrot",
	ns + "potatoes":         ns + "potato",
	ns + "beetroots":        ns + "beetroot",
	ns + "nether_wart":      ns + "nether_wart",
	ns + "sweet_berry_bush": ns + "sweet_berries",
	ns + "cocoa":            ns + "cocoa_beans",
	ns + "melon":            ns + "melon_slice",
	ns + "pumpkin":          ns + "pumpkin",
	ns + "sugar_cane":       ns + "sugar_cane",
	ns + "bamboo":           ns + "bamboo",
	ns + "kelp":             ns + "kelp",
	ns + "sea_pickle":       ns + "sea_pickle",
}

// DefaultRules возвращает стандартные правила в порядке Wood → Ore → Crop.
// maxBlocks <= 0 - DefaultMaxBlocks.
func DefaultRules(maxBlocks int) []*Rule {
	if maxBlocks <= 0 {
		maxBlocks = DefaultMaxBlocks
	}
	return []*Rule{
		MustRule(RuleConfig{
			Name:      WoodRuleName,
			Yields:    woodYields(),
			Tools:     block.Tools("axe"),
			MaxBlocks: maxBlocks,
			Match:     MatchExactYield,
			Shape:     ShapeVolumetric,
		}),
		MustRule(RuleConfig{
			Name:      OreRuleName,
			Yields:    oreYields,
			Tools:     block.Tools("pickaxe"),
			MaxBlocks: maxBlocks,
			Match:     MatchExactYield,
			Shape:     ShapeVolumetric,
		}),
		MustRule(RuleConfig{
			Name:      CropRuleName,
			Yields:    cropYields,
			Tools:     block.Tools("hoe"),
			MaxBlocks: maxBlocks,
			Match:     MatchClass,
			Shape:     ShapePlanar,
		}),
	}
}

// RuleFromSpec строит правило из описания в файле правил
func RuleFromSpec(spec config.RuleSpec, defaultMax int) (*Rule, error) {
	match, err := ParseMatchMode(spec.Match)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", spec.Name, err)
	}
	shape, err := ParseNeighborShape(spec.Shape)
	if err != nil {
		return nil, fmt.Errorf("rule %q: %w", spec.Name, err)
	}

	maxBlocks := spec.MaxBlocks
	if maxBlocks <= 0 {
		maxBlocks = defaultMax
	}

	yields := make(map[block.MaterialID]block.MaterialID, len(spec.Yields))
	for from, to := range spec.Yields {
		yields[block.MaterialID(from)] = block.MaterialID(to)
	}
	tools := make([]block.MaterialID, 0, len(spec.Tools))
	for _, t := range spec.Tools {
		tools = append(tools, block.MaterialID(t))
	}

	return NewRule(RuleConfig{
		Name:      spec.Name,
		Yields:    yields,
		Tools:     tools,
		MaxBlocks: maxBlocks,
		Match:     match,
		Shape:     shape,
	})
}

// RulesFromFile строит правила в порядке файла
func RulesFromFile(file *config.RulesFile, defaultMax int) ([]*Rule, error) {
	rules := make([]*Rule, 0, len(file.Rules))
	for _, spec := range file.Rules {
		r, err := RuleFromSpec(spec, defaultMax)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

// LoadRules возвращает правила из файла или стандартные, если путь пуст
func LoadRules(path string, maxBlocks int) ([]*Rule, error) {
	if path == "" {
		return DefaultRules(maxBlocks), nil
	}
	file, err := config.LoadRules(path)
	if err != nil {
		return nil, err
	}
	if maxBlocks <= 0 {
		maxBlocks = DefaultMaxBlocks
	}
	return RulesFromFile(file, maxBlocks)
}
