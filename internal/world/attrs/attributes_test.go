package attrs

import "testing"

func baseKnight() BaseAttributes {
	return BaseAttributes{
		MaxHP:           1000,
		AttackDamage:    50,
		WalkingSpeedPct: Pct(100),
		AttackRangePct:  Pct(100),
		AttackSpeedPct:  Pct(100),
		ArmorPct:        Pct(0),
		HealingPct:      Pct(100),
		HpRegenPct:      Pct(100),
		ManaRegenPct:    Pct(100),
	}
}

func TestCalculateNoModifiers(t *testing.T) {
	base := baseKnight()
	got := Calculate(base, nil)
	if got != CalculatedAttributes(base) {
		t.Fatalf("expected untouched base, got %+v", got)
	}
}

func TestCalculateMountedSpeed(t *testing.T) {
	base := baseKnight()
	mods := []Modifier{
		{Attribute: WalkingSpeedPct, Kind: AddPercentage, Percent: Pct(200), Source: "Mounted"},
	}
	got := Calculate(base, mods)
	if got.WalkingSpeedPct.AsWhole() != 300 {
		t.Fatalf("walking speed = %d%%, want 300%%", got.WalkingSpeedPct.AsWhole())
	}
}

func TestCalculateArmorClamp(t *testing.T) {
	base := baseKnight()
	mods := []Modifier{
		{Attribute: ArmorPct, Kind: AddPercentage, Percent: Pct(-60), Source: "ArmorBreak"},
		{Attribute: ArmorPct, Kind: AddPercentage, Percent: Pct(-60), Source: "ArmorBreak"},
	}
	got := Calculate(base, mods)
	if got.ArmorPct.AsWhole() != -100 {
		t.Fatalf("armor = %d%%, want clamped -100%%", got.ArmorPct.AsWhole())
	}
}

func TestCalculateAttackSpeedClamp(t *testing.T) {
	base := baseKnight()
	mods := []Modifier{
		{Attribute: AttackSpeedPct, Kind: AddPercentage, Percent: Pct(1000), Source: "Haste"},
	}
	got := Calculate(base, mods)
	if got.AttackSpeedPct.AsWhole() != 500 {
		t.Fatalf("attack speed = %d%%, want clamped 500%%", got.AttackSpeedPct.AsWhole())
	}
}

func TestCalculateAddValue(t *testing.T) {
	base := baseKnight()
	mods := []Modifier{
		{Attribute: MaxHP, Kind: AddValue, Value: 200, Source: "Blessing"},
		{Attribute: AttackDamage, Kind: AddValue, Value: -10, Source: "Weaken"},
	}
	got := Calculate(base, mods)
	if got.MaxHP != 1200 {
		t.Fatalf("max hp = %d, want 1200", got.MaxHP)
	}
	if got.AttackDamage != 40 {
		t.Fatalf("attack damage = %d, want 40", got.AttackDamage)
	}
}

func TestCalculateOrderMatters(t *testing.T) {
	base := baseKnight()
	// AddPercentage(10) then IncreaseByPercentage(200) on a running 100%
	// base: 100+10=110%, then 110.IncreaseBy(200%) = 110 + 110*2 = 330%.
	mods := []Modifier{
		{Attribute: HealingPct, Kind: AddPercentage, Percent: Pct(10), Source: "A"},
		{Attribute: HealingPct, Kind: IncreaseByPercentage, Percent: Pct(200), Source: "B"},
	}
	got := Calculate(base, mods)
	if got.HealingPct.AsWhole() != 330 {
		t.Fatalf("healing = %d%%, want 330%%", got.HealingPct.AsWhole())
	}
}
