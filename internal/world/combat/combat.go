// Package combat implements the hp-modification pipeline (§4.5):
// area-attack expansion, validation, armor calculation, status
// pre/post-apply hooks, and force/push gating.
package combat

import (
	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/world/character"
	"github.com/bbodi/rustarok-sub001/internal/world/status"
)

// Request is a pending hp modification, before armor/status adjustment.
type Request struct {
	SrcID  uint64
	DstID  uint64
	Kind   protocol.HpModKind
	Amount float32
}

// Result is a fully resolved hp modification, ready to broadcast as a
// protocol.Damage message and to apply to the destination character.
type Result struct {
	Request Request
	Outcome protocol.DamageOutcome
	Applied float32
}

// AreaRequest describes an area-of-effect hp modification before it has
// been expanded against the character roster.
type AreaRequest struct {
	SrcID  uint64
	Kind   protocol.HpModKind
	Amount float32
	Center protocol.Point
	Radius float32
	Except uint64 // entity id to skip, 0 means none
}

// ExpandArea turns one AreaRequest into a Request per character inside its
// radius, mirroring AttackCalculation::apply_hp_mod_on_area's join-and-filter
// shape (the original's shape/collision query is left as a TODO there; this
// repo resolves it as a simple circle-distance test).
func ExpandArea(area AreaRequest, roster []*character.Character) []Request {
	var out []Request
	for _, c := range roster {
		if c.ID == area.Except {
			continue
		}
		dx := float64(c.Pos.X - area.Center.X)
		dy := float64(c.Pos.Y - area.Center.Y)
		if dx*dx+dy*dy > float64(area.Radius)*float64(area.Radius) {
			continue
		}
		out = append(out, Request{
			SrcID:  area.SrcID,
			DstID:  c.ID,
			Kind:   area.Kind,
			Amount: area.Amount,
		})
	}
	return out
}

// isHeal reports whether kind heals rather than damages.
func isHeal(kind protocol.HpModKind) bool {
	return kind == protocol.HpModHeal
}

// teamAllows mirrors the original's is_valid team check: heals require the
// teams to be allied, everything else requires them to be hostile.
func teamAllows(src, dst *character.Character, kind protocol.HpModKind) bool {
	if isHeal(kind) {
		return src.Team.Allied(dst.Team)
	}
	return src.Team.Hostile(dst.Team)
}

// applyArmor mirrors AttackCalculation::apply_armor_calc: armor% reduces
// damage-kind requests, heals pass through untouched, and a reduction to
// zero or below is reported Blocked rather than Applied.
func applyArmor(dst *character.Character, req Request) Result {
	if isHeal(req.Kind) {
		return Result{Request: req, Outcome: protocol.OutcomeApplied, Applied: req.Amount}
	}
	reduced := dst.Calculated.ArmorPct.SubtractMeFrom(int32(req.Amount))
	if reduced <= 0 {
		return Result{Request: req, Outcome: protocol.OutcomeBlocked, Applied: 0}
	}
	return Result{Request: req, Outcome: protocol.OutcomeApplied, Applied: float32(reduced)}
}

// Resolve runs one request through the full pipeline and applies it to src
// and dst. broadcast, when non-nil, is called once with the final result so
// the server layer can turn it into a protocol.Damage message.
func Resolve(src, dst *character.Character, req Request, now uint64, broadcast func(Result)) {
	if !teamAllows(src, dst, req.Kind) {
		return
	}
	if !dst.IsAlive() && !isHeal(req.Kind) {
		return
	}

	result := applyArmor(dst, req)

	hpMod := status.HPMod{Kind: result.Request.Kind, Amount: result.Applied, Outcome: result.Outcome}
	hpMod = dst.Statuses.PreApplyHP(hpMod)
	result.Applied = hpMod.Amount
	result.Outcome = hpMod.Outcome

	delta := int32(result.Applied)
	if !isHeal(req.Kind) {
		delta = -delta
	}
	if delta != 0 {
		dst.ApplyHPDelta(delta, now)
		if delta < 0 {
			character.OnHitStunEnter(dst, now)
		}
	}

	dst.Statuses.PostApplySelf(hpMod)
	src.Statuses.PostApplyEnemy(hpMod)

	if broadcast != nil {
		broadcast(result)
	}

	if reflected := dst.Statuses.DrainReflected(); reflected > 0 {
		resolveReflect(dst, src, reflected, now, broadcast)
	}
	if lifestolen := src.Statuses.DrainLifestolen(); lifestolen > 0 {
		resolveLifesteal(src, lifestolen, now, broadcast)
	}
}

// resolveReflect turns a drained DamageReflect amount into damage against
// the original attacker. It bypasses teamAllows/armor (reflector already
// computed the exact amount to return) and reflector's own reflect hooks,
// so a mutual-reflect pairing can't recurse.
func resolveReflect(reflector, attacker *character.Character, amount float32, now uint64, broadcast func(Result)) {
	result := Result{
		Request: Request{SrcID: reflector.ID, DstID: attacker.ID, Kind: protocol.HpModBasicDamage, Amount: amount},
		Outcome: protocol.OutcomeApplied,
		Applied: amount,
	}
	if attacker.ApplyHPDelta(-int32(amount), now) {
		character.OnHitStunEnter(attacker, now)
	}
	if broadcast != nil {
		broadcast(result)
	}
}

// resolveLifesteal turns a drained LifestealAura amount into a heal against
// the attacker that dealt the originating damage.
func resolveLifesteal(attacker *character.Character, amount float32, now uint64, broadcast func(Result)) {
	result := Result{
		Request: Request{SrcID: attacker.ID, DstID: attacker.ID, Kind: protocol.HpModHeal, Amount: amount},
		Outcome: protocol.OutcomeApplied,
		Applied: amount,
	}
	attacker.ApplyHPDelta(int32(amount), now)
	if broadcast != nil {
		broadcast(result)
	}
}

// AllowPush reports whether dst's active statuses permit an incoming push,
// the AND-across-all-statuses gate described in §4.5.
func AllowPush(dst *character.Character) bool {
	return dst.Statuses.AllowPush()
}
