// Package combat provides the turn-based combat resolution engine: combatants,
// turn ordering, and the per-encounter action resolver.
package combat

import (
	"github.com/google/uuid"

	"github.com/samdwyer/emberfall/internal/gamedata"
	"github.com/samdwyer/emberfall/internal/stats"
)

// CombatantID identifies a combatant within one encounter. Ids are unique for
// the encounter's lifetime only.
type CombatantID string

// Faction separates the two sides of an encounter.
type Faction int

const (
	FactionAlly Faction = iota
	FactionEnemy
)

// String returns the faction name.
func (f Faction) String() string {
	switch f {
	case FactionAlly:
		return "ally"
	case FactionEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Status is an active timed effect on a combatant. Remaining counts rounds;
// durations decrement at each round boundary and expired effects are removed
// before the new round's first action.
type Status struct {
	Type      gamedata.StatusType `json:"type"`
	Remaining int                 `json:"remaining"`
	Power     int                 `json:"power,omitempty"` // Per-round damage (poison) or healing (regen)
}

// Combatant is one participant in an encounter. The encounter exclusively
// owns its combatants for the encounter's duration.
type Combatant struct {
	ID       CombatantID
	Name     string
	Faction  Faction
	Stats    stats.Block

	// CharacterID links an ally back to its party character for healing and
	// rewards after the encounter; empty for enemies.
	CharacterID string
	EnemyID     string // Content id for enemies; empty for allies
	Abilities   []string

	statuses []Status
}

// NewCombatant creates a combatant with a fresh encounter-scoped id.
func NewCombatant(name string, faction Faction, block stats.Block, abilities []string) *Combatant {
	ids := make([]string, len(abilities))
	copy(ids, abilities)
	return &Combatant{
		ID:        CombatantID(uuid.NewString()),
		Name:      name,
		Faction:   faction,
		Stats:     block,
		Abilities: ids,
	}
}

// Alive returns true while the combatant has HP remaining.
func (c *Combatant) Alive() bool {
	return c.Stats.Alive()
}

// AddStatus applies a status effect. Re-applying an effect of the same type
// refreshes its duration rather than stacking.
func (c *Combatant) AddStatus(s Status) {
	for i := range c.statuses {
		if c.statuses[i].Type == s.Type {
			c.statuses[i] = s
			return
		}
	}
	c.statuses = append(c.statuses, s)
}

// HasStatus reports whether an effect of the given type is active.
func (c *Combatant) HasStatus(t gamedata.StatusType) bool {
	for _, s := range c.statuses {
		if s.Type == t {
			return true
		}
	}
	return false
}

// Statuses returns a copy of the active status effects.
func (c *Combatant) Statuses() []Status {
	out := make([]Status, len(c.statuses))
	copy(out, c.statuses)
	return out
}
