package capacitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsugumi-sys/minecraft-addons/internal/config"
	"github.com/tsugumi-sys/minecraft-addons/internal/world/block"
)

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules(0)
	require.Len(t, rules, 3)

	wood, ore, crop := rules[0], rules[1], rules[2]
	assert.Equal(t, []string{WoodRuleName, OreRuleName, CropRuleName}, []string{wood.Name(), ore.Name(), crop.Name()})
	assert.Equal(t, DefaultMaxBlocks, ore.MaxBlocks())

	assert.Len(t, wood.Materials(), 16, "Брёвна и древесина восьми пород")
	assert.Len(t, ore.Materials(), 19)
	assert.Len(t, crop.Materials(), 13)

	assert.Equal(t, ShapePlanar, crop.Shape())
	assert.Equal(t, MatchClass, crop.Match())
	assert.Equal(t, ShapeVolumetric, wood.Shape())

	y, ok := wood.YieldFor(block.Wood("cherry"))
	assert.True(t, ok)
	assert.Equal(t, block.Log("cherry"), y)

	assert.True(t, wood.QualifiesTool(ns+"netherite_axe"))
	assert.False(t, wood.QualifiesTool(ns+"netherite_pickaxe"))
	assert.False(t, wood.QualifiesTool(block.None))
	assert.Len(t, crop.Tools(), 6)
}

func TestRule_MatcherModes(t *testing.T) {
	wood := DefaultRules(100)[0]
	oakMatch := wood.Matcher(block.Log("oak"))
	assert.True(t, oakMatch(block.Log("oak")))
	assert.True(t, oakMatch(block.Wood("oak")), "Древесина даёт то же бревно")
	assert.False(t, oakMatch(block.Log("birch")), "Другая порода не связана")
	assert.False(t, oakMatch(block.Air))

	crop := DefaultRules(100)[2]
	anyCrop := crop.Matcher(ns + "wheat")
	assert.True(t, anyCrop(ns+"kelp"))
	assert.False(t, anyCrop(ns+"oak_log"))
}

func TestNewRule_Validation(t *testing.T) {
	_, err := NewRule(RuleConfig{Yields: oreYields})
	assert.Error(t, err, "Пустое имя")

	_, err = NewRule(RuleConfig{Name: "x"})
	assert.Error(t, err, "Пустая таблица")

	_, err = NewRule(RuleConfig{Name: "x", Yields: oreYields, MaxBlocks: -1})
	assert.Error(t, err)

	_, err = NewRule(RuleConfig{Name: "x", Yields: map[block.MaterialID]block.MaterialID{"a": ""}})
	assert.Error(t, err)

	// Правило не зависит от исходной карты после создания
	src := map[block.MaterialID]block.MaterialID{ns + "sand": ns + "sand"}
	r, err := NewRule(RuleConfig{Name: "Sand", Yields: src})
	require.NoError(t, err)
	src[ns+"gravel"] = ns + "flint"
	assert.False(t, r.IsHarvestable(ns+"gravel"))
}

func TestRuleFromSpec(t *testing.T) {
	r, err := RuleFromSpec(config.RuleSpec{
		Name:   "Leaf Capacitor",
		Match:  "class",
		Shape:  "planar",
		Tools:  []string{"minecraft:shears"},
		Yields: map[string]string{"minecraft:oak_leaves": "minecraft:oak_leaves"},
	}, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, r.MaxBlocks(), "Лимит по умолчанию")
	assert.Equal(t, MatchClass, r.Match())
	assert.Equal(t, ShapePlanar, r.Shape())
	assert.True(t, r.QualifiesTool("minecraft:shears"))

	_, err = RuleFromSpec(config.RuleSpec{Name: "bad", Shape: "spherical", Yields: map[string]string{"a": "b"}}, 10)
	assert.Error(t, err)
}

func TestLoadRules_DefaultWithoutFile(t *testing.T) {
	rules, err := LoadRules("", 7)
	require.NoError(t, err)
	require.Len(t, rules, 3)
	assert.Equal(t, 7, rules[0].MaxBlocks())
}
