// Package attrs implements the percentage fixed-point arithmetic and the
// layered attribute-modifier collector used to turn a character's base
// attributes plus its active statuses into calculated_attributes (§4.4).
package attrs

// percentageFactor scales a Percentage so it can represent 0.1% steps as an
// integer: "70.1%" is stored as the int32 70100.
const percentageFactor int32 = 1000

// Percentage is a 1000-scaled fixed-point percentage, matching
// original_source/src/components/char.rs's Percentage type bit-for-bit
// (including its integer-division rounding).
type Percentage struct {
	value int32
}

// Pct constructs a Percentage from a whole-number percent, e.g. Pct(70) is 70%.
func Pct(whole int32) Percentage {
	return Percentage{value: whole * percentageFactor}
}

// PctTenths constructs a Percentage from tenths of a percent, e.g.
// PctTenths(701) is 70.1%.
func PctTenths(tenths int32) Percentage {
	return Percentage{value: tenths * (percentageFactor / 10)}
}

// Raw returns the underlying 1000-scaled integer value.
func (p Percentage) Raw() int32 { return p.value }

// AsWhole returns the truncated whole-percent value.
func (p Percentage) AsWhole() int32 { return p.value / percentageFactor }

// AsFloat returns the percentage as a multiplier, e.g. 70% -> 0.7.
func (p Percentage) AsFloat() float64 {
	return float64(p.value) / float64(percentageFactor) / 100.0
}

// Clamp restricts p to [min, max].
func (p Percentage) Clamp(min, max Percentage) Percentage {
	if p.value < min.value {
		return min
	}
	if p.value > max.value {
		return max
	}
	return p
}

// Add returns p+other with saturating-free plain addition (callers clamp
// afterwards where the attribute has a bound, per §4.4).
func (p Percentage) Add(other Percentage) Percentage {
	return Percentage{value: p.value + other.value}
}

// IncreaseBy compounds p by another percentage: 100%.IncreaseBy(200%) == 300%.
func (p Percentage) IncreaseBy(other Percentage) Percentage {
	change := p.value / 100 * other.value
	return Percentage{value: p.value + change/percentageFactor}
}

// AddMeTo adds p percent of num to num.
func (p Percentage) AddMeTo(num int32) int32 {
	f := int64(percentageFactor)
	change := int64(num) * f / 100 * int64(p.value) / f / f
	return num + int32(change)
}

// SubtractMeFrom subtracts p percent of num from num. Used by armor
// calculation: applied = armor%.SubtractMeFrom(base).
func (p Percentage) SubtractMeFrom(num int32) int32 {
	f := int64(percentageFactor)
	change := int64(num) * f / 100 * int64(p.value) / f / f
	return num - int32(change)
}
