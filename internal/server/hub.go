package server

import (
	"context"
	"log"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bbodi/rustarok-sub001/internal/config"
	"github.com/bbodi/rustarok-sub001/internal/httpapi"
	"github.com/bbodi/rustarok-sub001/internal/logging"
	loggingcombat "github.com/bbodi/rustarok-sub001/internal/logging/combat"
	loggingnetwork "github.com/bbodi/rustarok-sub001/internal/logging/network"
	loggingsimulation "github.com/bbodi/rustarok-sub001/internal/logging/simulation"
	"github.com/bbodi/rustarok-sub001/internal/metrics"
	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/sim"
	"github.com/bbodi/rustarok-sub001/internal/world/attrs"
	"github.com/bbodi/rustarok-sub001/internal/world/character"
	"github.com/bbodi/rustarok-sub001/internal/world/combat"
	"github.com/bbodi/rustarok-sub001/internal/world/status"
)

// tickRate is the fixed simulation frequency required by §4.1.
const tickRate = 30

// snapshotRingCapacity is how many past ticks of WorldSnapshots the hub
// retains (about 8.5s at 30Hz). step records into the ring; the hub does not
// read it back, and each Ack carries the current tick's snapshot.
const snapshotRingCapacity = 256

// jobNames maps a wire JobID to the balance table's job key. Extending the
// roster means appending here and to config-runtime.toml's [jobs.*] tables.
var jobNames = map[uint8]string{0: "knight"}

// connection binds a Session to its spawned character and pending acks.
type connection struct {
	session  *Session
	entityID uint64
	lastCID  uint32
}

// Hub owns the authoritative world state and drives the fixed-tick
// simulation loop, grounded on the teacher's Hub/RunSimulation split
// between network glue (this file) and per-tick resolution.
type Hub struct {
	mu          sync.Mutex
	characters  map[uint64]*character.Character
	connections map[uint64]*connection // keyed by entity id
	nextEntity  uint64

	commandBuf *sim.CommandBuffer
	snapshots  *sim.SnapshotRing

	tick      uint64
	publisher logging.Publisher
	log       *zap.Logger
	balance   *config.RuntimeConfig

	// overrides holds per-job balance changes applied by set_balance
	// (internal/scripting), layered on top of balance's file-driven table.
	overrides map[string]config.JobAttributes

	teamCounts map[protocol.Team]int
}

// NewHub constructs an empty world ready for RunSimulation. balance may be
// nil, in which case every job falls back to BalanceConfig{}'s JobOrDefault
// baseline.
func NewHub(publisher logging.Publisher, zlog *zap.Logger, balance *config.RuntimeConfig) *Hub {
	if publisher == nil {
		publisher = logging.NopPublisher{}
	}
	return &Hub{
		characters:  make(map[uint64]*character.Character),
		connections: make(map[uint64]*connection),
		commandBuf:  sim.NewCommandBuffer(1024, metrics.CommandBufferMetrics{}),
		snapshots:   sim.NewSnapshotRing(snapshotRingCapacity),
		publisher:   publisher,
		log:         zlog,
		balance:     balance,
		overrides:   make(map[string]config.JobAttributes),
		teamCounts:  make(map[protocol.Team]int),
	}
}

// baseAttributesFor resolves jobID's base attribute table from the live
// runtime config, falling back to the hardcoded default when no balance
// config was wired (e.g. in unit tests), and finally layering any
// set_balance override on top.
func (h *Hub) baseAttributesFor(jobID uint8) attrs.BaseAttributes {
	name := jobNames[jobID]
	var ja config.JobAttributes
	if h.balance == nil {
		ja = config.BalanceConfig{}.JobOrDefault(name)
	} else {
		ja = h.balance.Get().JobOrDefault(name)
	}
	if ov, ok := h.overrides[name]; ok {
		ja.MaxHP = ov.MaxHP
		ja.AttackDamage = ov.AttackDamage
	}
	return ja.ToBase()
}

// ConfigsFor flattens jobID's base attribute table and the global timing
// scalars into the wire Configs payload (spec.md §6: "reply Init then
// Configs") so a predicting client runs the same base attributes the
// simulation does. attack_cooldown_ticks and hit_stun_ticks are copied from
// the balance table as loaded; the hub's own swing cadence and hit-stun
// window come from the constants baseAttackDelayTicks and character's
// hitStunTicks, not from those entries.
func (h *Hub) ConfigsFor(jobID uint8) protocol.Configs {
	h.mu.Lock()
	defer h.mu.Unlock()

	base := h.baseAttributesFor(jobID)
	entries := []protocol.ConfigEntry{
		{Name: "tick_rate", Value: tickRate},
		{Name: "max_hp", Value: float32(base.MaxHP)},
		{Name: "attack_damage", Value: float32(base.AttackDamage)},
		{Name: "walking_speed_pct", Value: float32(base.WalkingSpeedPct.AsWhole())},
		{Name: "attack_range_pct", Value: float32(base.AttackRangePct.AsWhole())},
		{Name: "attack_speed_pct", Value: float32(base.AttackSpeedPct.AsWhole())},
		{Name: "armor_pct", Value: float32(base.ArmorPct.AsWhole())},
	}
	if h.balance != nil {
		b := h.balance.Get()
		entries = append(entries,
			protocol.ConfigEntry{Name: "attack_cooldown_ticks", Value: float32(b.AttackCooldownTicks)},
			protocol.ConfigEntry{Name: "hit_stun_ticks", Value: float32(b.HitStunTicks)},
		)
	}
	return protocol.Configs{Entries: entries}
}

// balanceTeam assigns the currently smaller of Left/Right to a new arrival.
func (h *Hub) balanceTeam() protocol.Team {
	if h.teamCounts[protocol.TeamRight] < h.teamCounts[protocol.TeamLeft] {
		h.teamCounts[protocol.TeamRight]++
		return protocol.TeamRight
	}
	h.teamCounts[protocol.TeamLeft]++
	return protocol.TeamLeft
}

// Spawn admits a newly-ready session into the world and returns its entity.
func (h *Hub) Spawn(sess *Session, name string) *character.Character {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextEntity++
	id := h.nextEntity
	team := h.balanceTeam()
	const jobID uint8 = 0
	c := character.New(id, name, team, jobID, h.baseAttributesFor(jobID), protocol.Point{X: 0, Y: 0})
	h.characters[id] = c
	h.connections[id] = &connection{session: sess, entityID: id}
	sess.EntityID = id

	loggingnetwork.Connected(context.Background(), h.publisher, h.tick, logging.EntityRef{ID: id, Kind: logging.EntityKindCharacter})
	metrics.SetConnectionsActive(len(h.connections))
	return c
}

// Disconnect removes entityID's character and connection from the world.
func (h *Hub) Disconnect(entityID uint64, reason string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.characters, entityID)
	delete(h.connections, entityID)
	loggingnetwork.Disconnected(context.Background(), h.publisher, h.tick, logging.EntityRef{ID: entityID, Kind: logging.EntityKindCharacter}, loggingnetwork.DisconnectedPayload{Reason: reason})
	metrics.SetConnectionsActive(len(h.connections))
}

// SpawnNPC admits a connectionless character into the world, e.g. a
// training dummy created by init.cmd. It satisfies internal/scripting.Host.
func (h *Hub) SpawnNPC(name string, team protocol.Team, x, y float32) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextEntity++
	id := h.nextEntity
	const jobID uint8 = 0
	c := character.New(id, name, team, jobID, h.baseAttributesFor(jobID), protocol.Point{X: x, Y: y})
	h.characters[id] = c
	return id
}

// SetBalance layers a per-job MaxHP/AttackDamage override on top of the
// file-driven balance table. It satisfies internal/scripting.Host.
func (h *Hub) SetBalance(job string, maxHP, attackDamage int32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.overrides[job] = config.JobAttributes{MaxHP: maxHP, AttackDamage: attackDamage}
}

// BroadcastText sends text to every connected session. It satisfies
// internal/scripting.Host.
func (h *Hub) BroadcastText(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	payload := protocol.EncodeBroadcastText(protocol.BroadcastText{Text: text})
	for _, conn := range h.connections {
		conn.session.Send(payload)
	}
}

// EnqueueIntention stages one client-predicted command for the next tick,
// rejecting (and logging) commands from an unknown actor or a full buffer
// rather than silently dropping them. Grounded on
// _teacher_copy/net/intake/command.go's StageClientCommand, which runs the
// same unknown-actor/queue-full checks before handing a command to its
// engine's Enqueue.
func (h *Hub) EnqueueIntention(entityID uint64, in protocol.Intention) {
	h.mu.Lock()
	_, known := h.characters[entityID]
	h.mu.Unlock()

	actor := logging.EntityRef{ID: entityID, Kind: logging.EntityKindCharacter}
	if !known {
		loggingnetwork.CommandRejected(context.Background(), h.publisher, h.tick, actor, loggingnetwork.CommandRejectUnknownActor)
		return
	}
	if !h.commandBuf.Push(sim.FromWire(entityID, in)) {
		loggingnetwork.CommandRejected(context.Background(), h.publisher, h.tick, actor, loggingnetwork.CommandRejectQueueFull)
	}
}

// roster adapts the character map to combat.ExpandArea's roster shape;
// positionOf below serves character.Resolve's entity-position lookup.
func (h *Hub) roster() []*character.Character {
	out := make([]*character.Character, 0, len(h.characters))
	for _, c := range h.characters {
		out = append(out, c)
	}
	return out
}

func (h *Hub) positionOf(id uint64) (protocol.Point, bool) {
	if c, ok := h.characters[id]; ok {
		return c.Pos, true
	}
	return protocol.Point{}, false
}

// DiagnosticsSnapshot satisfies internal/httpapi.Source.
func (h *Hub) DiagnosticsSnapshot() httpapi.Diagnostics {
	h.mu.Lock()
	defer h.mu.Unlock()
	sessions := make([]httpapi.SessionDiagnostics, 0, len(h.connections))
	for id, conn := range h.connections {
		sessions = append(sessions, httpapi.SessionDiagnostics{EntityID: id, LastAckCID: conn.lastCID})
	}
	return httpapi.Diagnostics{
		Connections: len(h.connections),
		Tick:        h.tick,
		TickRate:    tickRate,
		Sessions:    sessions,
	}
}

// RunSimulation drives the fixed 30Hz tick loop until stop closes, grounded
// on the teacher's RunSimulation: a time.Ticker paced loop that measures its
// own duration against the tick budget and logs/alarms on overrun.
func (h *Hub) RunSimulation(stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second / tickRate)
	defer ticker.Stop()

	budget := time.Second / tickRate

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			start := time.Now()
			h.step()
			duration := time.Since(start)
			metrics.RecordTick(duration)
			if duration > budget {
				ratio := float64(duration) / float64(budget)
				log.Printf("[tick] budget overrun: duration=%s budget=%s ratio=%.2f", duration, budget, ratio)
				loggingsimulation.TickBudgetOverrun(context.Background(), h.publisher, h.tick, loggingsimulation.TickBudgetOverrunPayload{
					DurationMillis: duration.Milliseconds(),
					BudgetMillis:   budget.Milliseconds(),
					Ratio:          ratio,
				})
			}
		}
	}
}

// step resolves exactly one simulation tick: drain staged commands, resolve
// intentions, run poison ticks, advance statuses, refresh base attributes
// from the balance table and recompute attributes, snapshot, and broadcast
// (§4.1's ordered-system pipeline).
func (h *Hub) step() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.tick++
	now := h.tick

	for _, cmd := range h.commandBuf.Drain() {
		c, ok := h.characters[cmd.EntityID]
		if !ok {
			continue
		}
		character.Resolve(c, cmd.Intention, now, h.positionOf)
		if conn, ok := h.connections[cmd.EntityID]; ok {
			conn.lastCID = cmd.Intention.CID
		}
	}

	roster := h.roster()
	for _, c := range roster {
		h.drainPoison(c, now)
		c.Statuses.Update(now)
		c.Base = h.baseAttributesFor(c.JobID)
		c.Recalculate()
		character.AdvancePosition(c, now)

		wasCasting := c.State == protocol.StateCastingSkill
		castTarget := c.Target
		character.Advance(c, now)
		if wasCasting && c.State == protocol.StateIdle {
			h.resolveCastFinish(c, castTarget, now)
		}

		active := 0
		c.Statuses.Active(func(int, *status.Instance) { active++ })
		metrics.RecordStatusSlotOccupancy(active)
	}

	h.resolveAttacks(roster, now)

	snap := sim.WorldSnapshot{Tick: now, Entities: make(map[uint64]protocol.CharSnapshot, len(roster))}
	for _, c := range roster {
		snap.Entities[c.ID] = c.Snapshot()
	}
	h.snapshots.Record(snap)

	h.broadcast(snap)
}

// drainPoison issues one hp-modification per elapsed poison tick, realizing
// the Poison status's periodic damage through the combat pipeline rather
// than mutating HP directly, so armor/shield/reflect hooks still apply.
func (h *Hub) drainPoison(c *character.Character, now uint64) {
	c.Statuses.Active(func(_ int, inst *status.Instance) {
		if inst.Definition.Kind != status.Poison {
			return
		}
		if inst.NextTickAt == 0 || inst.NextTickAt > now {
			return
		}
		src, ok := h.characters[inst.SourceID]
		if !ok {
			src = c
		}
		combat.Resolve(src, c, combat.Request{
			SrcID:  src.ID,
			DstID:  c.ID,
			Kind:   protocol.HpModPoison,
			Amount: status.PoisonDamage(),
		}, now, func(r combat.Result) {
			h.broadcastDamage(src.ID, c.ID, r)
		})
	})
}

func (h *Hub) broadcastDamage(srcID, dstID uint64, r combat.Result) {
	payload := protocol.EncodeDamage(protocol.Damage{
		SrcID:   srcID,
		DstID:   dstID,
		Kind:    r.Request.Kind,
		Outcome: r.Outcome,
		Amount:  r.Applied,
	})
	for _, conn := range h.connections {
		conn.session.Send(payload)
	}
	metrics.RecordDamageBroadcast()

	actor := logging.EntityRef{ID: srcID, Kind: logging.EntityKindCharacter}
	target := logging.EntityRef{ID: dstID, Kind: logging.EntityKindCharacter}
	entry := loggingcombat.AppliedPayload{
		Kind:      hpModKindName(r.Request.Kind),
		Requested: float64(r.Request.Amount),
		Applied:   float64(r.Applied),
	}
	switch r.Outcome {
	case protocol.OutcomeBlocked:
		loggingcombat.Blocked(context.Background(), h.publisher, h.tick, actor, target, entry)
	case protocol.OutcomeAbsorbed:
		loggingcombat.Absorbed(context.Background(), h.publisher, h.tick, actor, target, entry)
	default:
		loggingcombat.Applied(context.Background(), h.publisher, h.tick, actor, target, entry)
	}
}

func hpModKindName(kind protocol.HpModKind) string {
	switch kind {
	case protocol.HpModBasicDamage:
		return "basic_damage"
	case protocol.HpModSpellDamage:
		return "spell_damage"
	case protocol.HpModHeal:
		return "heal"
	case protocol.HpModPoison:
		return "poison"
	default:
		return "unknown"
	}
}

// baseAttackRangeTiles and baseAttackDelayTicks are Open Question choices,
// mirroring internal/world/character's baseWalkTilesPerSecond: the spec
// names attack_range% and attack_delay(attack_speed%) but, being a generic
// catalog-agnostic core, leaves their unmodified (100%) baseline
// unspecified. 2 tiles of reach and 18 ticks (0.6s at 30Hz) between swings
// are the values this repo's balance table (config-runtime.toml) is tuned
// against.
const baseAttackRangeTiles = 2.0
const baseAttackDelayTicks = 18

// spellAreaRadiusTiles is a further Open Question choice: a finished cast
// always lands as an area effect centered on its cast target, sized
// independently of attack_range_pct since a skill's reach is its own stat
// in the original and this core does not model a per-skill catalog.
const spellAreaRadiusTiles = 2.5

func attackRangeFor(c *character.Character) float64 {
	return baseAttackRangeTiles * c.Calculated.AttackRangePct.AsFloat()
}

// attackDelayTicks realizes attack_delay(attack_speed%): higher
// attack_speed_pct shortens the wait between swings, floored at one tick so
// an absurd speed buff can't make an attack land twice in the same tick.
func attackDelayTicks(c *character.Character) uint64 {
	mult := c.Calculated.AttackSpeedPct.AsFloat()
	if mult <= 0 {
		mult = 0.01
	}
	delay := float64(baseAttackDelayTicks) / mult
	if delay < 1 {
		delay = 1
	}
	return uint64(delay)
}

func inRange(a, b protocol.Point, radius float64) bool {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return dx*dx+dy*dy <= radius*radius
}

// resolveAttacks runs §4.5's attack pipeline once per tick: every Attacking
// character either gets its next damage_at_tick scheduled, or, once that
// tick arrives, has its hit resolved through combat.Resolve and the next
// swing scheduled attack_delay ticks out.
func (h *Hub) resolveAttacks(roster []*character.Character, now uint64) {
	for _, c := range roster {
		if c.State != protocol.StateAttacking {
			continue
		}
		if c.AttackDamageAtTick == 0 {
			c.AttackDamageAtTick = now + attackDelayTicks(c)
			continue
		}
		if now < c.AttackDamageAtTick {
			continue
		}
		h.resolveOneAttack(c, roster, now)
		if c.State == protocol.StateAttacking {
			c.AttackDamageAtTick = now + attackDelayTicks(c)
		}
	}
}

// resolveOneAttack lands one swing for src, by single-target lookup when
// Attack(entityID) set a TargetEntity, or by area sweep around the aimed
// point when AttackTowards set a TargetPoint. A vanished TargetEntity (the
// target disconnected or died) aborts the attack back to Idle rather than
// resolving against nothing, per §4.2's fallback.
func (h *Hub) resolveOneAttack(src *character.Character, roster []*character.Character, now uint64) {
	switch src.Target.Kind {
	case protocol.TargetEntity:
		dst, ok := h.characters[src.Target.EntityID]
		if !ok || !dst.IsAlive() {
			character.AbortAttack(src, now)
			return
		}
		if !inRange(src.Pos, dst.Pos, attackRangeFor(src)) {
			return
		}
		combat.Resolve(src, dst, combat.Request{
			SrcID:  src.ID,
			DstID:  dst.ID,
			Kind:   protocol.HpModBasicDamage,
			Amount: float32(src.Calculated.AttackDamage),
		}, now, func(r combat.Result) {
			h.broadcastDamage(src.ID, dst.ID, r)
		})

	case protocol.TargetPoint:
		reqs := combat.ExpandArea(combat.AreaRequest{
			SrcID:  src.ID,
			Kind:   protocol.HpModBasicDamage,
			Amount: float32(src.Calculated.AttackDamage),
			Center: src.Target.Point,
			Radius: float32(attackRangeFor(src)),
			Except: src.ID,
		}, roster)
		for _, req := range reqs {
			dst, ok := h.characters[req.DstID]
			if !ok {
				continue
			}
			combat.Resolve(src, dst, req, now, func(r combat.Result) {
				h.broadcastDamage(src.ID, dst.ID, r)
			})
		}

	default:
		character.AbortAttack(src, now)
	}
}

// resolveCastFinish lands a finished CastingSkill as a spell-damage area
// effect centered on the point targeted when the cast began, and publishes
// the cast-finished event §4.2 calls for.
func (h *Hub) resolveCastFinish(c *character.Character, target protocol.Target, now uint64) {
	if target.Kind == protocol.TargetPoint {
		reqs := combat.ExpandArea(combat.AreaRequest{
			SrcID:  c.ID,
			Kind:   protocol.HpModSpellDamage,
			Amount: float32(c.Calculated.AttackDamage),
			Center: target.Point,
			Radius: spellAreaRadiusTiles,
			Except: c.ID,
		}, h.roster())
		for _, req := range reqs {
			dst, ok := h.characters[req.DstID]
			if !ok {
				continue
			}
			combat.Resolve(c, dst, req, now, func(r combat.Result) {
				h.broadcastDamage(c.ID, dst.ID, r)
			})
		}
	}
	loggingcombat.CastFinished(context.Background(), h.publisher, now, logging.EntityRef{ID: c.ID, Kind: logging.EntityKindCharacter})
}

// broadcast sends each connected session an Ack whose first entry is always
// that session's own character, per §4.6.
func (h *Hub) broadcast(snap sim.WorldSnapshot) {
	for entityID, conn := range h.connections {
		entries := make([]protocol.AckEntry, 0, len(snap.Entities))
		if self, ok := snap.Entities[entityID]; ok {
			entries = append(entries, protocol.AckEntry{EntityID: entityID, State: self})
		}
		for id, s := range snap.Entities {
			if id == entityID {
				continue
			}
			entries = append(entries, protocol.AckEntry{EntityID: id, State: s})
		}
		payload := protocol.EncodeAck(protocol.Ack{CID: conn.lastCID, AckTick: snap.Tick, Entries: entries})
		conn.session.Send(payload)
	}
}
