package block

// Базовые материалы мира
const (
	Air      MaterialID = "minecraft:air"
	Stone    MaterialID = "minecraft:stone"
	Farmland MaterialID = "minecraft:farmland"

	Dirt       MaterialID = "minecraft:dirt"
	GrassBlock MaterialID = "minecraft:grass_block"
	CoarseDirt MaterialID = "minecraft:coarse_dirt"
	Podzol     MaterialID = "minecraft:podzol"
	RootedDirt MaterialID = "minecraft:rooted_dirt"
	MossBlock  MaterialID = "minecraft:moss_block"
	Mycelium   MaterialID = "minecraft:mycelium"
)

// Имена состояний роста
const (
	StateGrowth = "growth"
	StateAge    = "age"
)

// WoodSpecies - породы деревьев
var WoodSpecies = []string{"oak", "birch", "spruce", "jungle", "acacia", "dark_oak", "mangrove", "cherry"}

// ToolTiers - материалы инструментов в порядке возрастания
var ToolTiers = []string{"wooden", "stone", "iron", "golden", "diamond", "netherite"}

// Log возвращает ID бревна породы
func Log(species string) MaterialID { return MaterialID(Namespace + species + "_log") }

// Wood возвращает ID блока древесины породы
func Wood(species string) MaterialID { return MaterialID(Namespace + species + "_wood") }

// Sapling возвращает ID саженца породы (у мангрова - пропагула)
func Sapling(species string) MaterialID {
	if species == "mangrove" {
		return MaterialID(Namespace + "mangrove_propagule")
	}
	return MaterialID(Namespace + species + "_sapling")
}

// Tools возвращает инструменты вида kind всех материалов ("axe" → wooden_axe…netherite_axe)
func Tools(kind string) []MaterialID {
	out := make([]MaterialID, 0, len(ToolTiers))
	for _, tier := range ToolTiers {
		out = append(out, MaterialID(Namespace+tier+"_"+kind))
	}
	return out
}

// SaplingGround - блоки, на которые можно посадить саженец
var SaplingGround = []MaterialID{Dirt, GrassBlock, CoarseDirt, Podzol, RootedDirt, MossBlock, Mycelium}

// IsSaplingGround проверяет, подходит ли блок как почва для саженца
func IsSaplingGround(id MaterialID) bool {
	for _, g := range SaplingGround {
		if g == id {
			return true
		}
	}
	return false
}

// Регистрируем все базовые материалы при импорте пакета
func init() {
	for _, id := range []MaterialID{Air, Stone, Farmland} {
		Register(Material{ID: id})
	}
	for _, id := range SaplingGround {
		Register(Material{ID: id})
	}
	for _, species := range WoodSpecies {
		Register(Material{ID: Log(species)})
		Register(Material{ID: Wood(species)})
		Register(Material{ID: Sapling(species)})
	}
	for _, kind := range []string{"sword", "axe", "pickaxe", "shovel", "hoe"} {
		for _, id := range Tools(kind) {
			Register(Material{ID: id})
		}
	}
}
