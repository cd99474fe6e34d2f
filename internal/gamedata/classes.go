package gamedata

import "github.com/samdwyer/emberfall/internal/stats"

// ClassDef defines a playable class loaded from JSON.
type ClassDef struct {
	ID         string       `json:"id"`        // Unique identifier (e.g., "warrior")
	Name       string       `json:"name"`      // Display name (e.g., "Warrior")
	Symbol     string       `json:"symbol"`    // Single character for rendering
	HP         int          `json:"hp"`        // Base hit points
	MP         int          `json:"mp"`        // Base mana points
	Attack     int          `json:"attack"`    // Base attack power
	Defense    int          `json:"defense"`   // Base defense value
	Magic      int          `json:"magic"`     // Base magic power
	Resistance int          `json:"resistance"` // Base magic resistance
	Speed      int          `json:"speed"`     // Base turn-order speed
	Abilities  []string     `json:"abilities"` // Ability ids this class starts with
	Growth     stats.Growth `json:"growth"`    // Per-level stat increase
}

// BaseStats returns a fresh stat block seeded from the class definition.
func (c *ClassDef) BaseStats() stats.Block {
	return stats.Block{
		MaxHP:      c.HP,
		HP:         c.HP,
		MaxMP:      c.MP,
		MP:         c.MP,
		Attack:     c.Attack,
		Defense:    c.Defense,
		Magic:      c.Magic,
		Resistance: c.Resistance,
		Speed:      c.Speed,
	}
}

// SymbolRune returns the symbol as a rune for rendering.
func (c *ClassDef) SymbolRune() rune {
	if len(c.Symbol) == 0 {
		return '?'
	}
	return rune(c.Symbol[0])
}

// ClassesFile represents the structure of classes.json.
type ClassesFile struct {
	Classes []ClassDef `json:"classes"`
}

// LoadClasses loads class definitions from the embedded classes.json file.
func LoadClasses() ([]ClassDef, error) {
	file, err := Load[ClassesFile]("classes.json")
	if err != nil {
		return nil, err
	}
	return file.Classes, nil
}
