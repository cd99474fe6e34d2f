// Package entity provides the player party and its characters.
package entity

import (
	"github.com/google/uuid"

	"github.com/samdwyer/emberfall/internal/gamedata"
	"github.com/samdwyer/emberfall/internal/stats"
)

// Character is one member of the player's party. Unlike encounter combatants,
// characters persist across encounters and sessions.
type Character struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	ClassID   string      `json:"classId"`
	Stats     stats.Block `json:"stats"`
	Abilities []string    `json:"abilities"`
}

// NewCharacter creates a character from a class definition.
func NewCharacter(name string, class *gamedata.ClassDef) *Character {
	abilities := make([]string, len(class.Abilities))
	copy(abilities, class.Abilities)
	return &Character{
		ID:        uuid.NewString(),
		Name:      name,
		ClassID:   class.ID,
		Stats:     class.BaseStats(),
		Abilities: abilities,
	}
}

// Alive returns true while the character has HP remaining.
func (c *Character) Alive() bool {
	return c.Stats.Alive()
}
