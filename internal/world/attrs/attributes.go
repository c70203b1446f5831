package attrs

// Attribute names one layered, recomputed stat (§4.4). Each value maps onto
// a same-named field of BaseAttributes/CalculatedAttributes; keep Attribute
// additions in sync with attributeCount, Calculate's switch and the
// clampBounds table.
type Attribute int

const (
	MaxHP Attribute = iota
	AttackDamage
	WalkingSpeedPct
	AttackRangePct
	AttackSpeedPct
	ArmorPct
	HealingPct
	HpRegenPct
	ManaRegenPct
	attributeCount
)

// BaseAttributes is a character's job-derived, unmodified stat block.
// Percentage-valued fields are centered on 100% (Pct(100)) meaning "no
// change from the job baseline."
type BaseAttributes struct {
	MaxHP           int32
	AttackDamage    int32
	WalkingSpeedPct Percentage
	AttackRangePct  Percentage
	AttackSpeedPct  Percentage
	ArmorPct        Percentage
	HealingPct      Percentage
	HpRegenPct      Percentage
	ManaRegenPct    Percentage
}

// CalculatedAttributes is BaseAttributes after every active status's
// modifiers have been folded in and the bounded attributes clamped.
type CalculatedAttributes struct {
	MaxHP           int32
	AttackDamage    int32
	WalkingSpeedPct Percentage
	AttackRangePct  Percentage
	AttackSpeedPct  Percentage
	ArmorPct        Percentage
	HealingPct      Percentage
	HpRegenPct      Percentage
	ManaRegenPct    Percentage
}

// ModifierKind discriminates how a Modifier combines with an attribute's
// running value, mirroring CharAttributeModifier in the original source.
type ModifierKind int

const (
	// AddValue adds Value directly, for non-percentage attributes such as
	// MaxHP and AttackDamage.
	AddValue ModifierKind = iota
	// AddPercentage adds Percent to the running percentage value, e.g. two
	// +10% modifiers on the same attribute combine to +20%.
	AddPercentage
	// IncreaseByPercentage compounds the running value by Percent, e.g. a
	// running 100% increased by 200% becomes 300%.
	IncreaseByPercentage
)

// Modifier is one status's contribution to one attribute. Source identifies
// the status-effect kind the modifier came from, for logging only.
type Modifier struct {
	Attribute Attribute
	Kind      ModifierKind
	Value     int32
	Percent   Percentage
	Source    string
}

var clampBounds = map[Attribute][2]Percentage{
	AttackSpeedPct: {Pct(-300), Pct(500)},
	ArmorPct:       {Pct(-100), Pct(100)},
}

// Calculate folds modifiers into base in the order given, attribute by
// attribute, and clamps the bounded attributes. Modifiers for the same
// attribute apply in slice order, so callers must hand them in the order the
// owning statuses occupy their slots (§4.4: "a defined order").
func Calculate(base BaseAttributes, modifiers []Modifier) CalculatedAttributes {
	calc := CalculatedAttributes(base)

	for _, m := range modifiers {
		switch m.Attribute {
		case MaxHP:
			calc.MaxHP = applyValue(calc.MaxHP, m)
		case AttackDamage:
			calc.AttackDamage = applyValue(calc.AttackDamage, m)
		case WalkingSpeedPct:
			calc.WalkingSpeedPct = applyPct(calc.WalkingSpeedPct, m)
		case AttackRangePct:
			calc.AttackRangePct = applyPct(calc.AttackRangePct, m)
		case AttackSpeedPct:
			calc.AttackSpeedPct = applyPct(calc.AttackSpeedPct, m)
		case ArmorPct:
			calc.ArmorPct = applyPct(calc.ArmorPct, m)
		case HealingPct:
			calc.HealingPct = applyPct(calc.HealingPct, m)
		case HpRegenPct:
			calc.HpRegenPct = applyPct(calc.HpRegenPct, m)
		case ManaRegenPct:
			calc.ManaRegenPct = applyPct(calc.ManaRegenPct, m)
		}
	}

	if bounds, ok := clampBounds[AttackSpeedPct]; ok {
		calc.AttackSpeedPct = calc.AttackSpeedPct.Clamp(bounds[0], bounds[1])
	}
	if bounds, ok := clampBounds[ArmorPct]; ok {
		calc.ArmorPct = calc.ArmorPct.Clamp(bounds[0], bounds[1])
	}

	return calc
}

func applyValue(running int32, m Modifier) int32 {
	switch m.Kind {
	case AddValue:
		return running + m.Value
	case AddPercentage:
		return m.Percent.AddMeTo(running)
	case IncreaseByPercentage:
		return m.Percent.AddMeTo(running)
	default:
		return running
	}
}

func applyPct(running Percentage, m Modifier) Percentage {
	switch m.Kind {
	case AddValue:
		return running.Add(Pct(m.Value))
	case AddPercentage:
		return running.Add(m.Percent)
	case IncreaseByPercentage:
		return running.IncreaseBy(m.Percent)
	default:
		return running
	}
}
