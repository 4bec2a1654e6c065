package replanting

import "github.com/tsugumi-sys/minecraft-addons/internal/world/block"

const ns = block.Namespace

// CropSpec описывает пересадку одной культуры
type CropSpec struct {
	Seed          block.MaterialID
	MatureAge     int
	NeedsFarmland bool
}

// Crops - культуры, которые пересаживаются после сбора зрелого урожая
var Crops = map[block.MaterialID]CropSpec{
	ns + "wheat":            {Seed: ns + "wheat_seeds", MatureAge: 7, NeedsFarmland: true},
	ns + "carrots":          {Seed: ns + "carrot", MatureAge: 7, NeedsFarmland: true},
	ns + "potatoes":         {Seed: ns + "potato", MatureAge: 7, NeedsFarmland: true},
	ns + "beetroots":        {Seed: ns + "beetroot_seeds", MatureAge: 3, NeedsFarmland: true},
	ns + "nether_wart":      {Seed: ns + "nether_wart", MatureAge: 3},
	ns + "sweet_berry_bush": {Seed: ns + "sweet_berries", MatureAge: 3},
	ns + "cocoa":            {Seed: ns + "cocoa_beans", MatureAge: 2},
}

// Trees сопоставляет бревно породы с её саженцем
var Trees = buildTrees()

func buildTrees() map[block.MaterialID]block.MaterialID {
	out := make(map[block.MaterialID]block.MaterialID, len(block.WoodSpecies))
	for _, species := range block.WoodSpecies {
		out[block.Log(species)] = block.Sapling(species)
	}
	return out
}

// GroundScanDepth - на сколько блоков ниже сломанного бревна ищется почва
const GroundScanDepth = 10
