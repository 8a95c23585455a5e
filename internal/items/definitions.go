package items

import (
	"fmt"
	"sort"
)

// ItemType identifies an item kind.
type ItemType string

// Class groups item kinds by how they stack and how they are valued.
type Class string

const (
	ClassEquipment  Class = "equipment"
	ClassConsumable Class = "consumable"
	ClassMaterial   Class = "material"
	ClassCurrency   Class = "currency"
)

// Rarity orders equipment tiers from common to legendary.
type Rarity int

const (
	RarityCommon Rarity = iota
	RarityUncommon
	RarityRare
	RarityEpic
	RarityLegendary
)

func (r Rarity) String() string {
	switch r {
	case RarityCommon:
		return "common"
	case RarityUncommon:
		return "uncommon"
	case RarityRare:
		return "rare"
	case RarityEpic:
		return "epic"
	case RarityLegendary:
		return "legendary"
	default:
		return "unknown"
	}
}

// Definition describes one item kind. Equipment never stacks; other classes
// stack up to MaxStack.
type Definition struct {
	Type      ItemType
	Name      string
	Class     Class
	Rarity    Rarity
	ItemLevel int
	MaxStack  int
	LootValue int
	SellValue int
}

// Equipment reports whether this kind occupies exactly one slot per item.
func (d Definition) Equipment() bool {
	return d.Class == ClassEquipment
}

const (
	TypeGold         ItemType = "gold"
	TypeHealthPotion ItemType = "health_potion"
	TypeBoneShard    ItemType = "bone_shard"
	TypeSlimeGel     ItemType = "slime_gel"
	TypeMushroomCap  ItemType = "mushroom_cap"
	TypeRustySword   ItemType = "rusty_sword"
	TypeBoneBlade    ItemType = "bone_blade"
	TypeCrawlerPlate ItemType = "crawler_plate"
	TypeDragonFang   ItemType = "dragon_fang"
)

var catalog = buildCatalog()

func buildCatalog() map[ItemType]Definition {
	defs := []Definition{
		{Type: TypeGold, Name: "Gold", Class: ClassCurrency, MaxStack: 9999, LootValue: 1, SellValue: 1},
		{Type: TypeHealthPotion, Name: "Healing Potion", Class: ClassConsumable, MaxStack: 10, LootValue: 12, SellValue: 6},
		{Type: TypeBoneShard, Name: "Bone Shard", Class: ClassMaterial, MaxStack: 50, LootValue: 3, SellValue: 2},
		{Type: TypeSlimeGel, Name: "Slime Gel", Class: ClassMaterial, MaxStack: 50, LootValue: 2, SellValue: 1},
		{Type: TypeMushroomCap, Name: "Mushroom Cap", Class: ClassMaterial, MaxStack: 30, LootValue: 4, SellValue: 3},
		{Type: TypeRustySword, Name: "Rusty Sword", Class: ClassEquipment, Rarity: RarityCommon, ItemLevel: 1, MaxStack: 1, LootValue: 0, SellValue: 0},
		{Type: TypeBoneBlade, Name: "Bone Blade", Class: ClassEquipment, Rarity: RarityUncommon, ItemLevel: 3, MaxStack: 1},
		{Type: TypeCrawlerPlate, Name: "Crawler Plate", Class: ClassEquipment, Rarity: RarityRare, ItemLevel: 5, MaxStack: 1},
		{Type: TypeDragonFang, Name: "Dragon Fang", Class: ClassEquipment, Rarity: RarityLegendary, ItemLevel: 10, MaxStack: 1},
	}
	byType := make(map[ItemType]Definition, len(defs))
	for _, def := range defs {
		if def.MaxStack <= 0 {
			def.MaxStack = 1
		}
		byType[def.Type] = def
	}
	return byType
}

// DefinitionFor looks up the catalog entry for an item type.
func DefinitionFor(t ItemType) (Definition, bool) {
	def, ok := catalog[t]
	return def, ok
}

// Register adds or replaces a catalog entry. Intended for archetype-specific
// loot tables loaded at startup.
func Register(def Definition) error {
	if def.Type == "" {
		return fmt.Errorf("items: empty item type")
	}
	if def.MaxStack <= 0 {
		def.MaxStack = 1
	}
	if def.Equipment() {
		def.MaxStack = 1
	}
	catalog[def.Type] = def
	return nil
}

// Types returns the catalog keys in sorted order.
func Types() []ItemType {
	keys := make([]ItemType, 0, len(catalog))
	for k := range catalog {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
