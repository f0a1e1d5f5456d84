package park

import "testing"

func TestCost(t *testing.T) {
	tests := []struct {
		name    string
		scalars Scalars
		base    int
		want    int
	}{
		{"no modifiers", Scalars{}, 500, 500},
		{"discount", Scalars{Bonuses: Bonuses{UpgradeDiscount: 0.5}}, 350, 175},
		{"difficulty", Scalars{Difficulty: Difficulty{UpgradeCostMultiplier: 2}}, 150, 300},
		{"both floor", Scalars{Bonuses: Bonuses{UpgradeDiscount: 0.5}, Difficulty: Difficulty{UpgradeCostMultiplier: 1.5}}, 250, 187},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.scalars.Cost(tt.base); got != tt.want {
				t.Errorf("Cost(%d) = %d, want %d", tt.base, got, tt.want)
			}
		})
	}
}

func TestCanAfford(t *testing.T) {
	u, ok := LookupUpgrade(GlobalUpgrades, UpgradeFreezeGuestTimer)
	if !ok {
		t.Fatal("freeze upgrade missing from catalog")
	}
	if (Scalars{Balance: 99}).CanAfford(u) {
		t.Error("99 should not afford 100")
	}
	if !(Scalars{Balance: 100}).CanAfford(u) {
		t.Error("100 should afford 100")
	}
	if _, ok := LookupUpgrade(ZoneUpgrades, "teleport"); ok {
		t.Error("unknown upgrade type should not be found")
	}
}

func TestPrestigePricing(t *testing.T) {
	u := PrestigeUpgrade{ID: "luck", Cost: 2, MaxLevel: 4}

	if got := PrestigeCost(u, 0); got != 2 {
		t.Errorf("PrestigeCost(level 0) = %d, want 2", got)
	}
	if got := PrestigeCost(u, 3); got != 3 {
		t.Errorf("PrestigeCost(level 3) = %d, want 3", got)
	}

	sc := Scalars{PrestigePoints: 3, CurrentUpgrades: map[string]int{"luck": 3}}
	if !sc.CanBuyPrestige(u) {
		t.Error("3 points should buy level 4 at cost 3")
	}
	sc.CurrentUpgrades["luck"] = 4
	if sc.CanBuyPrestige(u) {
		t.Error("maxed upgrade must not be purchasable")
	}

	if (Scalars{Balance: 9, PrestigeRequirement: 10}).CanPrestige() {
		t.Error("balance under requirement should not prestige")
	}
	if !(Scalars{Balance: 10, PrestigeRequirement: 10}).CanPrestige() {
		t.Error("balance at requirement should prestige")
	}
}
