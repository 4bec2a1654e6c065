package i18n

// Ключи текстов
const (
	KeySessionStats  = "sessionStats"
	KeyDistance      = "distance"
	KeyBlocks        = "blocks"
	KeyBlocksBroken  = "blocksbroken"
	KeyBlocksPlaced  = "blocksplaced"
	KeyReplanted     = "replanted"
	KeyCropReplanted = "cropReplanted"
	KeyTreeReplanted = "treeReplanted"
)

var texts = map[string]map[string]string{
	"en": {
		KeySessionStats:  "SESSION STATS",
		KeyDistance:      "Distance",
		KeyBlocks:        "blocks",
		KeyBlocksBroken:  "Blocks Broken",
		KeyBlocksPlaced:  "Blocks Placed",
		KeyReplanted:     "Replanted",
		KeyCropReplanted: "crop replanted!",
		KeyTreeReplanted: "sapling planted!",

		"wheat":              "wheat",
		"carrots":            "carrots",
		"potatoes":           "potatoes",
		"beetroots":          "beetroots",
		"nether_wart":        "nether wart",
		"sweet_berry_bush":   "sweet berry bush",
		"cocoa":              "cocoa",
		"oak_sapling":        "oak sapling",
		"birch_sapling":      "birch sapling",
		"spruce_sapling":     "spruce sapling",
		"jungle_sapling":     "jungle sapling",
		"acacia_sapling":     "acacia sapling",
		"dark_oak_sapling":   "dark oak sapling",
		"mangrove_propagule": "mangrove propagule",
		"cherry_sapling":     "cherry sapling",
	},
	"ja": {
		KeySessionStats:  "セッション活動量",
		KeyDistance:      "移動距離",
		KeyBlocks:        "ブロック",
		KeyBlocksBroken:  "破壊ブロック",
		KeyBlocksPlaced:  "設置ブロック",
		KeyReplanted:     "再植栽",
		KeyCropReplanted: "を植え直しました！",
		KeyTreeReplanted: "を植えました！",

		"wheat":              "小麦",
		"carrots":            "ニンジン",
		"potatoes":           "ジャガイモ",
		"beetroots":          "ビートルート",
		"nether_wart":        "ネザーウォート",
		"sweet_berry_bush":   "スイートベリー",
		"cocoa":              "ココア",
		"oak_sapling":        "オークの苗木",
		"birch_sapling":      "シラカバの苗木",
		"spruce_sapling":     "トウヒの苗木",
		"jungle_sapling":     "ジャングルの苗木",
		"acacia_sapling":     "アカシアの苗木",
		"dark_oak_sapling":   "ダークオークの苗木",
		"mangrove_propagule": "マングローブの胎生種子",
		"cherry_sapling":     "サクラの苗木",
	},
}
