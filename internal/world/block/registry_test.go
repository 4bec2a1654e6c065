package block

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryBasics(t *testing.T) {
	assert.True(t, IsKnown(Air), "Воздух должен быть зарегистрирован")
	assert.True(t, IsKnown(Log("cherry")))
	assert.False(t, IsKnown(MaterialID("minecraft:unobtainium")))

	Register(Material{ID: "minecraft:wheat", GrowthState: StateGrowth})
	m, ok := Get("minecraft:wheat")
	assert.True(t, ok)
	assert.Equal(t, "wheat", m.DisplayKey, "DisplayKey по умолчанию - короткое имя")
	assert.Equal(t, StateGrowth, m.GrowthState)
}

func TestMaterialHelpers(t *testing.T) {
	assert.Equal(t, MaterialID("minecraft:mangrove_propagule"), Sapling("mangrove"))
	assert.Equal(t, MaterialID("minecraft:oak_sapling"), Sapling("oak"))
	assert.Equal(t, "dark_oak_log", Log("dark_oak").ShortName())
	assert.Equal(t, "unknown_thing", MaterialID("minecraft:unknown_thing").DisplayKey())

	axes := Tools("axe")
	assert.Len(t, axes, 6)
	assert.Equal(t, MaterialID("minecraft:wooden_axe"), axes[0])
	assert.Equal(t, MaterialID("minecraft:netherite_axe"), axes[5])

	assert.True(t, IsSaplingGround(Podzol))
	assert.False(t, IsSaplingGround(Stone))
}
