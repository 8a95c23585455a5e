package items

// rarityLootValue is the carry-priority table for equipment, keyed by tier.
func rarityLootValue(r Rarity) int {
	switch r {
	case RarityCommon:
		return 5
	case RarityUncommon:
		return 15
	case RarityRare:
		return 40
	case RarityEpic:
		return 90
	case RarityLegendary:
		return 200
	default:
		return 5
	}
}

// raritySellMultiplier scales equipment sale prices by tier.
func raritySellMultiplier(r Rarity) int {
	switch r {
	case RarityCommon:
		return 2
	case RarityUncommon:
		return 4
	case RarityRare:
		return 8
	case RarityEpic:
		return 15
	case RarityLegendary:
		return 30
	default:
		return 1
	}
}

// EstimateValue scores how much an item is worth carrying. Equipment is
// valued by rarity tier, everything else by its catalog table. Used by the
// looting behavior to decide what to pick up; distinct from SellPrice.
func EstimateValue(t ItemType) int {
	def, ok := DefinitionFor(t)
	if !ok {
		return 0
	}
	if def.Equipment() {
		return rarityLootValue(def.Rarity)
	}
	return def.LootValue
}

// SellPrice converts one unit of an item into gold at a safe zone. Equipment
// sells for item level times its rarity multiplier; consumables and materials
// use their catalog table.
func SellPrice(t ItemType) int {
	def, ok := DefinitionFor(t)
	if !ok {
		return 0
	}
	if def.Equipment() {
		return def.ItemLevel * raritySellMultiplier(def.Rarity)
	}
	return def.SellValue
}

// SellAll converts every slot to gold and empties the inventory, returning
// the total earned. Currency stacks convert at face value.
func SellAll(inv *Inventory) int {
	if inv == nil {
		return 0
	}
	total := 0
	for i := 0; i < inv.Capacity(); i++ {
		stack, ok := inv.Slot(i)
		if !ok || stack.Empty() {
			continue
		}
		if stack.Type == TypeGold {
			total += stack.Quantity
			continue
		}
		total += SellPrice(stack.Type) * stack.Quantity
	}
	inv.Clear()
	return total
}

// StacksValue sums the estimated carry value of the occupied slots.
func StacksValue(inv *Inventory) int {
	if inv == nil {
		return 0
	}
	total := 0
	for _, stack := range inv.Stacks() {
		total += EstimateValue(stack.Type) * stack.Quantity
	}
	return total
}
