package ai

import "testing"

func TestDefaultPersonalityFillsEveryField(t *testing.T) {
	p := DefaultPersonality("rookie")
	if p.Name != "rookie" {
		t.Fatalf("Name = %q", p.Name)
	}
	if p.MoveSpeed != 90 || p.AttackDamage != 8 || p.MaxHealth != 100 {
		t.Fatalf("combat defaults = %v %v %v", p.MoveSpeed, p.AttackDamage, p.MaxHealth)
	}
	if p.FleeThreshold != 0.2 || p.EngageMinimum != 0.3 || p.SellThreshold != 0.8 {
		t.Fatalf("threshold defaults = %v %v %v", p.FleeThreshold, p.EngageMinimum, p.SellThreshold)
	}
	if p.DecisionInterval != 10 || p.AttackCooldown != 15 || p.FleeTimeoutTicks != 90 {
		t.Fatalf("timer defaults = %v %v %v", p.DecisionInterval, p.AttackCooldown, p.FleeTimeoutTicks)
	}
}

func TestParsePersonalitiesAppliesDefaultsAndOverrides(t *testing.T) {
	doc := []byte(`
archetypes:
  scavenger:
    loot_priority: 1.4
    min_item_value_to_loot: 1
  brawler:
    attack_damage: 12
    never_flees: true
`)
	catalog, err := ParsePersonalities(doc)
	if err != nil {
		t.Fatalf("ParsePersonalities: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("parsed %d archetypes, want 2", len(catalog))
	}

	scavenger := catalog["scavenger"]
	if scavenger.Name != "scavenger" || scavenger.LootPriority != 1.4 || scavenger.MinItemValueToLoot != 1 {
		t.Fatalf("scavenger = %+v", scavenger)
	}
	if scavenger.MoveSpeed != 90 {
		t.Fatalf("defaults not applied: move speed %v", scavenger.MoveSpeed)
	}

	brawler := catalog["brawler"]
	if brawler.AttackDamage != 12 || !brawler.NeverFlees {
		t.Fatalf("brawler = %+v", brawler)
	}
}

func TestParsePersonalitiesRejectsEmptyCatalog(t *testing.T) {
	if _, err := ParsePersonalities([]byte("archetypes: {}")); err == nil {
		t.Fatalf("expected an error for an empty catalog")
	}
}

func TestValidateRejectsBadThresholds(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{
			"flee at or above engage and half health",
			"archetypes:\n  panicky:\n    flee_threshold: 0.6\n    engage_minimum: 0.5\n",
		},
		{
			"sell threshold above one",
			"archetypes:\n  hoarder:\n    sell_threshold: 1.2\n",
		},
	}
	for _, tc := range cases {
		if _, err := ParsePersonalities([]byte(tc.doc)); err == nil {
			t.Fatalf("%s: expected a validation error", tc.name)
		}
	}
}
