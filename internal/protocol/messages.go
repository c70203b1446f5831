package protocol

// Version tracks the wire-protocol revision expected by both peers.
const Version = 1

// MessageKind is the 1-byte discriminator that opens every frame payload.
type MessageKind uint8

const (
	_ MessageKind = iota
	// Client -> server
	KindWelcome
	KindPing
	KindReadyForGame
	KindIntention
	KindConsoleCommand
	// Server -> client
	KindInit
	KindConfigs
	KindPong
	KindNewEntity
	KindAck
	KindDamage
	KindPlayerDisconnected
	KindBroadcastText
)

// Team classifies a character for ally/enemy/collision resolution.
type Team uint8

const (
	TeamLeft Team = iota
	TeamRight
	TeamNeutral
	TeamEnemyForAll
	TeamAllyForAll
)

// Hostile reports whether a and b should treat each other as enemies.
// AllyForAll and Neutral never read as hostile to anything; EnemyForAll
// always reads as hostile; otherwise two characters are hostile only when
// they sit on different teams.
func (a Team) Hostile(b Team) bool {
	if a == TeamAllyForAll || b == TeamAllyForAll {
		return false
	}
	if a == TeamNeutral || b == TeamNeutral {
		return false
	}
	if a == TeamEnemyForAll || b == TeamEnemyForAll {
		return true
	}
	return a != b
}

// Allied reports whether a and b should treat each other as allies.
func (a Team) Allied(b Team) bool {
	if a == TeamEnemyForAll || b == TeamEnemyForAll {
		return false
	}
	if a == TeamAllyForAll || b == TeamAllyForAll {
		return true
	}
	return a == b
}

// Facing is an 8-way direction discriminator.
type Facing uint8

const (
	FacingN Facing = iota
	FacingNE
	FacingE
	FacingSE
	FacingS
	FacingSW
	FacingW
	FacingNW
)

// CharStateKind mirrors Character.State's discriminator on the wire.
type CharStateKind uint8

const (
	StateIdle CharStateKind = iota
	StateWalking
	StateStandBy
	StateAttacking
	StateReceivingDamage
	StateCastingSkill
	StateDead
)

// TargetKind mirrors Character.Target's discriminator on the wire.
type TargetKind uint8

const (
	TargetNone TargetKind = iota
	TargetEntity
	TargetPoint
	TargetPointWhileAttacking
)

// IntentionKind discriminates the Intention payload.
type IntentionKind uint8

const (
	IntentionMoveTo IntentionKind = iota
	IntentionMoveTowardsMouse
	IntentionAttackTowards
	IntentionAttack
	IntentionCastSkill
)

// HpModKind discriminates an HpModificationRequest/Damage payload.
type HpModKind uint8

const (
	HpModBasicDamage HpModKind = iota
	HpModSpellDamage
	HpModHeal
	HpModPoison
)

// DamageOutcome mirrors the result of the combat pipeline's armor/status steps.
type DamageOutcome uint8

const (
	OutcomeApplied DamageOutcome = iota
	OutcomeBlocked
	OutcomeAbsorbed
)

// Point is a 2D wire coordinate.
type Point struct {
	X, Y float32
}

// Target is the wire form of Character.Target.
type Target struct {
	Kind     TargetKind
	EntityID uint64
	Point    Point
}

// CharSnapshot is the wire form of one character's serializable state (§4.6).
type CharSnapshot struct {
	Pos    Point
	HP     int32
	State  CharStateKind
	Facing Facing
	Target Target
}

func writeTarget(w *Writer, t Target) {
	w.WriteU8(uint8(t.Kind))
	switch t.Kind {
	case TargetEntity:
		w.WriteU64(t.EntityID)
	case TargetPoint, TargetPointWhileAttacking:
		w.WriteF32(t.Point.X)
		w.WriteF32(t.Point.Y)
	}
}

func readTarget(r *Reader) Target {
	var t Target
	t.Kind = TargetKind(r.ReadU8())
	switch t.Kind {
	case TargetEntity:
		t.EntityID = r.ReadU64()
	case TargetPoint, TargetPointWhileAttacking:
		t.Point.X = r.ReadF32()
		t.Point.Y = r.ReadF32()
	}
	return t
}

func writeCharSnapshot(w *Writer, s CharSnapshot) {
	w.WriteF32(s.Pos.X)
	w.WriteF32(s.Pos.Y)
	w.WriteI32(s.HP)
	w.WriteU8(uint8(s.State))
	w.WriteU8(uint8(s.Facing))
	writeTarget(w, s.Target)
}

func readCharSnapshot(r *Reader) CharSnapshot {
	var s CharSnapshot
	s.Pos.X = r.ReadF32()
	s.Pos.Y = r.ReadF32()
	s.HP = r.ReadI32()
	s.State = CharStateKind(r.ReadU8())
	s.Facing = Facing(r.ReadU8())
	s.Target = readTarget(r)
	return s
}

// --- Client -> server ---

type Welcome struct {
	Name string
}

func EncodeWelcome(m Welcome) []byte {
	w := NewWriter(KindWelcome)
	w.WriteString(m.Name)
	return w.Bytes()
}

func DecodeWelcome(r *Reader) Welcome {
	return Welcome{Name: r.ReadString()}
}

func EncodePing() []byte {
	return NewWriter(KindPing).Bytes()
}

func EncodeReadyForGame() []byte {
	return NewWriter(KindReadyForGame).Bytes()
}

// Intention is the wire form of a client-predicted movement/attack command.
type Intention struct {
	CID        uint32
	ClientTick uint64
	Kind       IntentionKind
	Point      Point
	EntityID   uint64
}

func EncodeIntention(m Intention) []byte {
	w := NewWriter(KindIntention)
	w.WriteU32(m.CID)
	w.WriteU64(m.ClientTick)
	w.WriteU8(uint8(m.Kind))
	switch m.Kind {
	case IntentionMoveTo, IntentionMoveTowardsMouse, IntentionAttackTowards, IntentionCastSkill:
		w.WriteF32(m.Point.X)
		w.WriteF32(m.Point.Y)
	case IntentionAttack:
		w.WriteU64(m.EntityID)
	}
	return w.Bytes()
}

func DecodeIntention(r *Reader) Intention {
	var m Intention
	m.CID = r.ReadU32()
	m.ClientTick = r.ReadU64()
	m.Kind = IntentionKind(r.ReadU8())
	switch m.Kind {
	case IntentionMoveTo, IntentionMoveTowardsMouse, IntentionAttackTowards, IntentionCastSkill:
		m.Point.X = r.ReadF32()
		m.Point.Y = r.ReadF32()
	case IntentionAttack:
		m.EntityID = r.ReadU64()
	}
	return m
}

type ConsoleCommand struct {
	Text string
}

func EncodeConsoleCommand(m ConsoleCommand) []byte {
	w := NewWriter(KindConsoleCommand)
	w.WriteString(m.Text)
	return w.Bytes()
}

func DecodeConsoleCommand(r *Reader) ConsoleCommand {
	return ConsoleCommand{Text: r.ReadString()}
}

// --- Server -> client ---

type Init struct {
	MapName string
	StartX  float32
	StartY  float32
}

func EncodeInit(m Init) []byte {
	w := NewWriter(KindInit)
	w.WriteString(m.MapName)
	w.WriteF32(m.StartX)
	w.WriteF32(m.StartY)
	return w.Bytes()
}

func DecodeInit(r *Reader) Init {
	var m Init
	m.MapName = r.ReadString()
	m.StartX = r.ReadF32()
	m.StartY = r.ReadF32()
	return m
}

// ConfigEntry is one named balance scalar shipped to the client so local
// prediction uses the same numbers as the authoritative simulation.
type ConfigEntry struct {
	Name  string
	Value float32
}

type Configs struct {
	Entries []ConfigEntry
}

func EncodeConfigs(m Configs) []byte {
	w := NewWriter(KindConfigs)
	w.WriteU16(uint16(len(m.Entries)))
	for _, e := range m.Entries {
		w.WriteString(e.Name)
		w.WriteF32(e.Value)
	}
	return w.Bytes()
}

func DecodeConfigs(r *Reader) Configs {
	n := int(r.ReadU16())
	entries := make([]ConfigEntry, 0, n)
	for i := 0; i < n; i++ {
		name := r.ReadString()
		value := r.ReadF32()
		entries = append(entries, ConfigEntry{Name: name, Value: value})
	}
	return Configs{Entries: entries}
}

type Pong struct {
	ServerTimeMs uint64
	ServerTick   uint64
}

func EncodePong(m Pong) []byte {
	w := NewWriter(KindPong)
	w.WriteU64(m.ServerTimeMs)
	w.WriteU64(m.ServerTick)
	return w.Bytes()
}

func DecodePong(r *Reader) Pong {
	return Pong{ServerTimeMs: r.ReadU64(), ServerTick: r.ReadU64()}
}

type NewEntity struct {
	ID     uint64
	Name   string
	Team   Team
	JobID  uint8
	State  CharSnapshot
}

func EncodeNewEntity(m NewEntity) []byte {
	w := NewWriter(KindNewEntity)
	w.WriteU64(m.ID)
	w.WriteString(m.Name)
	w.WriteU8(uint8(m.Team))
	w.WriteU8(m.JobID)
	writeCharSnapshot(w, m.State)
	return w.Bytes()
}

func DecodeNewEntity(r *Reader) NewEntity {
	var m NewEntity
	m.ID = r.ReadU64()
	m.Name = r.ReadString()
	m.Team = Team(r.ReadU8())
	m.JobID = r.ReadU8()
	m.State = readCharSnapshot(r)
	return m
}

// AckEntry is one character's snapshot inside an Ack; index 0 of Ack.Entries
// is always the recipient's own character (§4.6).
type AckEntry struct {
	EntityID uint64
	State    CharSnapshot
}

type Ack struct {
	CID     uint32
	AckTick uint64
	Entries []AckEntry
}

func EncodeAck(m Ack) []byte {
	w := NewWriter(KindAck)
	w.WriteU32(m.CID)
	w.WriteU64(m.AckTick)
	w.WriteU16(uint16(len(m.Entries)))
	for _, e := range m.Entries {
		w.WriteU64(e.EntityID)
		writeCharSnapshot(w, e.State)
	}
	return w.Bytes()
}

func DecodeAck(r *Reader) Ack {
	var m Ack
	m.CID = r.ReadU32()
	m.AckTick = r.ReadU64()
	n := int(r.ReadU16())
	m.Entries = make([]AckEntry, 0, n)
	for i := 0; i < n; i++ {
		id := r.ReadU64()
		state := readCharSnapshot(r)
		m.Entries = append(m.Entries, AckEntry{EntityID: id, State: state})
	}
	return m
}

type Damage struct {
	SrcID   uint64
	DstID   uint64
	Kind    HpModKind
	Outcome DamageOutcome
	Amount  float32
}

func EncodeDamage(m Damage) []byte {
	w := NewWriter(KindDamage)
	w.WriteU64(m.SrcID)
	w.WriteU64(m.DstID)
	w.WriteU8(uint8(m.Kind))
	w.WriteU8(uint8(m.Outcome))
	w.WriteF32(m.Amount)
	return w.Bytes()
}

func DecodeDamage(r *Reader) Damage {
	var m Damage
	m.SrcID = r.ReadU64()
	m.DstID = r.ReadU64()
	m.Kind = HpModKind(r.ReadU8())
	m.Outcome = DamageOutcome(r.ReadU8())
	m.Amount = r.ReadF32()
	return m
}

type PlayerDisconnected struct {
	ID uint64
}

func EncodePlayerDisconnected(m PlayerDisconnected) []byte {
	w := NewWriter(KindPlayerDisconnected)
	w.WriteU64(m.ID)
	return w.Bytes()
}

func DecodePlayerDisconnected(r *Reader) PlayerDisconnected {
	return PlayerDisconnected{ID: r.ReadU64()}
}

// BroadcastText is a server-authored line of text sent to every session,
// e.g. an init-script or console-command announcement.
type BroadcastText struct {
	Text string
}

func EncodeBroadcastText(m BroadcastText) []byte {
	w := NewWriter(KindBroadcastText)
	w.WriteString(m.Text)
	return w.Bytes()
}

func DecodeBroadcastText(r *Reader) BroadcastText {
	return BroadcastText{Text: r.ReadString()}
}
