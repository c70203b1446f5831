// Package logging provides a typed, non-blocking pub/sub event bus for the
// simulation. Call sites never build an Event literal directly; domain
// subpackages (combat, statuseffects, network, lifecycle, simulation) expose
// typed constructor functions instead.
package logging

import (
	"context"
	"time"
)

// EventType provides a namespaced identifier for simulation telemetry.
type EventType string

// Severity expresses the importance of a telemetry event.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// Category groups events by subsystem for filtering.
type Category string

// EntityKind differentiates referenced entities.
type EntityKind string

const (
	EntityKindCharacter EntityKind = "character"
	EntityKindController EntityKind = "controller"
)

// EntityRef identifies an entity involved in an event.
type EntityRef struct {
	ID   uint64
	Kind EntityKind
}

// Event describes a semantic occurrence within the simulation loop.
type Event struct {
	Type     EventType
	Tick     uint64
	Time     time.Time
	Actor    EntityRef
	Targets  []EntityRef
	Severity Severity
	Category Category
	Payload  any
	Extra    map[string]any
}

// Publisher emits telemetry events without blocking the simulation loop.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher is a Publisher that drops all events.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

// WithFields attaches static metadata to every event emitted by the Publisher.
func WithFields(base Publisher, fields map[string]any) Publisher {
	if base == nil {
		return NopPublisher{}
	}
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &fieldsPublisher{base: base, fields: copied}
}

type fieldsPublisher struct {
	base   Publisher
	fields map[string]any
}

func (p *fieldsPublisher) Publish(ctx context.Context, event Event) {
	if len(p.fields) > 0 {
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(p.fields))
		}
		for k, v := range p.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}
	p.base.Publish(ctx, event)
}
