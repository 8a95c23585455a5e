package items

import "testing"

func TestEstimateValueEquipmentByRarity(t *testing.T) {
	cases := []struct {
		item ItemType
		want int
	}{
		{TypeRustySword, 5},
		{TypeBoneBlade, 15},
		{TypeCrawlerPlate, 40},
		{TypeDragonFang, 200},
		{TypeSlimeGel, 2},
		{TypeHealthPotion, 12},
		{"unknown_item", 0},
	}
	for _, tc := range cases {
		if got := EstimateValue(tc.item); got != tc.want {
			t.Fatalf("EstimateValue(%s): expected %d, got %d", tc.item, tc.want, got)
		}
	}
}

func TestSellPriceEquipmentByLevelAndRarity(t *testing.T) {
	cases := []struct {
		item ItemType
		want int
	}{
		{TypeRustySword, 2},
		{TypeBoneBlade, 12},
		{TypeCrawlerPlate, 40},
		{TypeDragonFang, 300},
		{TypeBoneShard, 2},
	}
	for _, tc := range cases {
		if got := SellPrice(tc.item); got != tc.want {
			t.Fatalf("SellPrice(%s): expected %d, got %d", tc.item, tc.want, got)
		}
	}
}

func TestSellAllEmptiesAndSums(t *testing.T) {
	inv := NewInventory(6)
	inv.AddStack(Stack{Type: TypeGold, Quantity: 20})
	inv.AddStack(Stack{Type: TypeBoneBlade, Quantity: 1})
	inv.AddStack(Stack{Type: TypeSlimeGel, Quantity: 4})

	// 20 gold at face value, blade at 12, gel at 1 each.
	want := 20 + 12 + 4
	if got := SellAll(&inv); got != want {
		t.Fatalf("expected %d gold from sale, got %d", want, got)
	}
	if inv.UsedSlots() != 0 {
		t.Fatalf("expected emptied inventory, got %d used slots", inv.UsedSlots())
	}
	if SellAll(&inv) != 0 {
		t.Fatalf("selling an empty inventory should return 0")
	}
}

func TestStacksValue(t *testing.T) {
	inv := NewInventory(4)
	inv.AddStack(Stack{Type: TypeBoneBlade, Quantity: 1})
	inv.AddStack(Stack{Type: TypeSlimeGel, Quantity: 3})

	if got := StacksValue(&inv); got != 15+6 {
		t.Fatalf("expected carry value 21, got %d", got)
	}
}
