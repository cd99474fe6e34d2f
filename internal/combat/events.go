package combat

import "github.com/samdwyer/emberfall/internal/gamedata"

// EventKind discriminates combat events.
type EventKind string

const (
	EventDamage        EventKind = "damage"
	EventHeal          EventKind = "heal"
	EventStatusApplied EventKind = "status_applied"
	EventStatusTick    EventKind = "status_tick"
	EventTurnSkipped   EventKind = "turn_skipped"
	EventCombatEnded   EventKind = "combat_ended"
)

// Event is one observable thing that happened during resolution. Events are
// returned in the ActionResult and mirrored to the encounter's EventSink for
// the presentation layer.
type Event struct {
	Kind    EventKind
	Actor   CombatantID         // Who caused it; empty for round-boundary ticks
	Target  CombatantID         // Who it happened to
	Ability string              // Ability id, when an ability caused it
	Amount  int                 // Damage dealt or HP healed
	Fatal   bool                // Target dropped to 0 HP
	Status  gamedata.StatusType // For status events and ticks
	Expired bool                // Status tick removed the effect
	Outcome Outcome             // For EventCombatEnded
}

// EventSink receives combat events as they happen. Sinks must not call back
// into the encounter; resolution is single-threaded and non-reentrant.
type EventSink func(Event)
