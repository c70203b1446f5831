// Package client implements the predicting half of §4.6: it connects to a
// server, applies intentions locally the instant they are issued, and
// reconciles against the server's acks as they arrive, rolling back and
// replaying when prediction and authority disagree. It is a driver, not a
// renderer — cmd/client drives it headlessly from a scripted intention
// file, grounded on internal/server.Session's reader/writer goroutine split
// but simplified to this side's single inbound stream.
package client

import (
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bbodi/rustarok-sub001/internal/metrics"
	"github.com/bbodi/rustarok-sub001/internal/protocol"
	"github.com/bbodi/rustarok-sub001/internal/sim"
	"github.com/bbodi/rustarok-sub001/internal/world/attrs"
	"github.com/bbodi/rustarok-sub001/internal/world/character"
)

// Event is one inbound message handed to the caller after Client has
// already folded it into local state; Damage and BroadcastText have no
// local-state counterpart so they only ever arrive this way.
type Event struct {
	Kind     protocol.MessageKind
	Damage   protocol.Damage
	Text     string
	NewEntID uint64
}

// Client is one predicting connection to a server.
type Client struct {
	conn net.Conn
	log  *zap.Logger

	name string
	base attrs.BaseAttributes

	writeMu sync.Mutex

	mu          sync.Mutex
	nextCID     uint32
	tick        uint64
	self        protocol.CharSnapshot
	world       map[uint64]protocol.CharSnapshot
	history     *sim.PredictionHistory
	lastAck     uint64
	pacingDelay time.Duration

	events chan Event
	done   chan struct{}
}

// Dial connects to addr, completes the Welcome/ReadyForGame handshake, and
// waits for the server's Init+Configs reply before returning. name is sent
// as the player's Welcome name.
func Dial(addr, name string, log *zap.Logger) (*Client, error) {
	conn, err := net.DialTimeout("tcp", addr, 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", addr, err)
	}

	c := &Client{
		conn:    conn,
		log:     log,
		name:    name,
		world:   make(map[uint64]protocol.CharSnapshot),
		history: sim.NewPredictionHistory(),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
	}

	if err := protocol.WriteFrame(conn, protocol.EncodeWelcome(protocol.Welcome{Name: name})); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: send welcome: %w", err)
	}
	if err := protocol.WriteFrame(conn, protocol.EncodeReadyForGame()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("client: send ready: %w", err)
	}

	if err := c.awaitHandshake(); err != nil {
		conn.Close()
		return nil, err
	}

	go c.readLoop()
	return c, nil
}

// awaitHandshake blocks for the server's Init and Configs replies, which
// always arrive in that order right after ReadyForGame (spec.md §6).
func (c *Client) awaitHandshake() error {
	for i := 0; i < 2; i++ {
		payload, err := protocol.ReadFrame(c.conn)
		if err != nil {
			return fmt.Errorf("client: handshake read: %w", err)
		}
		r := protocol.NewReader(payload)
		switch r.Kind() {
		case protocol.KindInit:
			init := protocol.DecodeInit(r)
			c.self = protocol.CharSnapshot{Pos: protocol.Point{X: init.StartX, Y: init.StartY}}
		case protocol.KindConfigs:
			c.base = baseAttributesFromConfigs(protocol.DecodeConfigs(r))
		default:
			return fmt.Errorf("client: handshake: unexpected message kind %v", r.Kind())
		}
	}
	return nil
}

// baseAttributesFromConfigs rebuilds the base attribute table the server
// used to spawn this client's character from the flattened Configs entries
// Hub.ConfigsFor sends, so local prediction uses the same numbers.
func baseAttributesFromConfigs(cfg protocol.Configs) attrs.BaseAttributes {
	values := make(map[string]float32, len(cfg.Entries))
	for _, e := range cfg.Entries {
		values[e.Name] = e.Value
	}
	return attrs.BaseAttributes{
		MaxHP:           int32(values["max_hp"]),
		AttackDamage:    int32(values["attack_damage"]),
		WalkingSpeedPct: attrs.Pct(int32(values["walking_speed_pct"])),
		AttackRangePct:  attrs.Pct(int32(values["attack_range_pct"])),
		AttackSpeedPct:  attrs.Pct(int32(values["attack_speed_pct"])),
		ArmorPct:        attrs.Pct(int32(values["armor_pct"])),
	}
}

// Events exposes inbound messages (Ack folds into Self/World silently;
// Damage, BroadcastText, NewEntity, and PlayerDisconnected surface here).
func (c *Client) Events() <-chan Event { return c.events }

// Self returns the most recently predicted or reconciled snapshot of this
// client's own character.
func (c *Client) Self() protocol.CharSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.self
}

// World returns a copy of every other known character's last-acked state.
func (c *Client) World() map[uint64]protocol.CharSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[uint64]protocol.CharSnapshot, len(c.world))
	for id, s := range c.world {
		out[id] = s
	}
	return out
}

// MoveTo predicts and sends an IntentionMoveTo.
func (c *Client) MoveTo(p protocol.Point) error { return c.sendIntention(protocol.IntentionMoveTo, p, 0) }

// MoveTowardsMouse predicts and sends an IntentionMoveTowardsMouse.
func (c *Client) MoveTowardsMouse(p protocol.Point) error {
	return c.sendIntention(protocol.IntentionMoveTowardsMouse, p, 0)
}

// AttackTowards predicts and sends an IntentionAttackTowards.
func (c *Client) AttackTowards(p protocol.Point) error {
	return c.sendIntention(protocol.IntentionAttackTowards, p, 0)
}

// Attack predicts and sends an IntentionAttack against targetID.
func (c *Client) Attack(targetID uint64) error {
	return c.sendIntention(protocol.IntentionAttack, protocol.Point{}, targetID)
}

func (c *Client) sendIntention(kind protocol.IntentionKind, p protocol.Point, targetID uint64) error {
	c.mu.Lock()
	c.nextCID++
	cid := c.nextCID
	c.tick++
	tick := c.tick

	in := protocol.Intention{CID: cid, ClientTick: tick, Kind: kind, Point: p, EntityID: targetID}
	cmd := sim.FromWire(0, in)

	predicted := applyCommand(c.self, cmd, c.base)
	c.self = predicted
	c.history.Record(sim.PredictedEntry{CID: cid, ClientTick: tick, Command: cmd, Predicted: predicted})
	delay := c.pacingDelay
	c.mu.Unlock()

	// §4.6 flow control: handleAck nudges pacingDelay by at most
	// pacingStep per ack, so a run of server-ahead/too-far-behind acks
	// throttles how fast this side issues new commands.
	if delay > 0 {
		time.Sleep(delay)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return protocol.WriteFrame(c.conn, protocol.EncodeIntention(in))
}

// applyCommand runs one command through the same per-tick resolve/advance
// sequence Hub.step runs server-side, seeded from a wire snapshot rather
// than a live Character (§4.6's Reconcile replay callback shape).
func applyCommand(base protocol.CharSnapshot, cmd sim.Command, ba attrs.BaseAttributes) protocol.CharSnapshot {
	ch := character.New(cmd.EntityID, "", protocol.TeamLeft, 0, ba, base.Pos)
	ch.HP = base.HP
	ch.State = base.State
	ch.Facing = base.Facing
	ch.Target = base.Target
	ch.Recalculate()

	character.Resolve(ch, cmd.Intention, cmd.ClientTick, nil)
	character.AdvancePosition(ch, cmd.ClientTick)
	character.Advance(ch, cmd.ClientTick)

	return ch.Snapshot()
}

func (c *Client) readLoop() {
	defer close(c.done)
	defer close(c.events)
	for {
		payload, err := protocol.ReadFrame(c.conn)
		if err != nil {
			return
		}
		r := protocol.NewReader(payload)
		switch r.Kind() {
		case protocol.KindAck:
			c.handleAck(protocol.DecodeAck(r))
		case protocol.KindNewEntity:
			m := protocol.DecodeNewEntity(r)
			c.mu.Lock()
			c.world[m.ID] = m.State
			c.mu.Unlock()
			c.emit(Event{Kind: protocol.KindNewEntity, NewEntID: m.ID})
		case protocol.KindDamage:
			c.emit(Event{Kind: protocol.KindDamage, Damage: protocol.DecodeDamage(r)})
		case protocol.KindPlayerDisconnected:
			m := protocol.DecodePlayerDisconnected(r)
			c.mu.Lock()
			delete(c.world, m.ID)
			c.mu.Unlock()
			c.emit(Event{Kind: protocol.KindPlayerDisconnected, NewEntID: m.ID})
		case protocol.KindBroadcastText:
			c.emit(Event{Kind: protocol.KindBroadcastText, Text: protocol.DecodeBroadcastText(r).Text})
		case protocol.KindPong:
			// round-trip accounting only; nothing to fold into local state.
		}
	}
}

// pacingStep bounds how much one ack can nudge the outbound send delay;
// pacingDelayCap keeps a run of slow-down acks from stalling the client
// outright.
const pacingStep = time.Millisecond
const pacingDelayCap = 50 * time.Millisecond

// handleAck folds one Ack into local state. Entries[0] is always the
// recipient's own character (§4.6, mirrored by Hub.broadcast), so no
// separate entity-id bookkeeping is needed to find it.
func (c *Client) handleAck(ack protocol.Ack) {
	if len(ack.Entries) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ack.AckTick >= c.tick {
		// the server has already caught up to (or passed) local_tick; this
		// ack can't be reconciled against a tick we haven't predicted yet,
		// so drop it silently and ease off.
		c.slowDown()
		return
	}
	c.adjustPacing(ack.AckTick)

	if c.lastAck != 0 && ack.AckTick <= c.lastAck {
		return
	}
	c.lastAck = ack.AckTick

	selfState := ack.Entries[0].State
	for _, e := range ack.Entries[1:] {
		c.world[e.EntityID] = e.State
	}

	result := sim.Reconcile(c.history, selfState, ack.CID, func(base protocol.CharSnapshot, cmd sim.Command) protocol.CharSnapshot {
		return applyCommand(base, cmd, c.base)
	})
	if result.RolledBack {
		metrics.RecordRollback()
		c.log.Debug("rolled back and replayed prediction",
			zap.Uint32("ack_cid", ack.CID), zap.Int("replayed", result.ReplayedCount))
	}

	if pending := c.history.Pending(0); len(pending) > 0 {
		c.self = pending[len(pending)-1].Predicted
	} else {
		c.self = selfState
	}
}

// adjustPacing nudges pacingDelay by at most pacingStep per ack: local_tick
// leading acked_tick by less than 5 means the client is not far enough ahead
// and should speed up; leading by more than 10 means it is too far ahead and
// should slow down. The band in between is left alone. Caller holds c.mu.
func (c *Client) adjustPacing(ackedTick uint64) {
	switch {
	case c.tick < ackedTick+5:
		c.speedUp()
	case c.tick > ackedTick+10:
		c.slowDown()
	}
}

func (c *Client) speedUp() {
	if c.pacingDelay > 0 {
		c.pacingDelay -= pacingStep
	}
}

func (c *Client) slowDown() {
	if c.pacingDelay < pacingDelayCap {
		c.pacingDelay += pacingStep
	}
}

func (c *Client) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
		c.log.Warn("event channel full, dropping event", zap.Any("kind", ev.Kind))
	}
}

// Close shuts down the connection and its reader goroutine.
func (c *Client) Close() error {
	err := c.conn.Close()
	<-c.done
	return err
}
