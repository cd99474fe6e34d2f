package gamedata

import (
	"github.com/gdamore/tcell/v2"

	"github.com/samdwyer/emberfall/internal/stats"
)

// EnemyDef defines an enemy type loaded from JSON.
type EnemyDef struct {
	ID          string   `json:"id"`          // Unique identifier (e.g., "ash_wolf")
	Name        string   `json:"name"`        // Display name
	Glyph       string   `json:"glyph"`       // Single character for rendering
	Color       string   `json:"color"`       // Hex color code (e.g., "#00FF00")
	HP          int      `json:"hp"`
	MP          int      `json:"mp"`
	Attack      int      `json:"attack"`
	Defense     int      `json:"defense"`
	Magic       int      `json:"magic"`
	Resistance  int      `json:"resistance"`
	Speed       int      `json:"speed"`
	Abilities   []string `json:"abilities"`   // Ability ids this enemy can use
	SpawnWeight int      `json:"spawnWeight"` // Relative spawn frequency for random groups
	ExpReward   int      `json:"expReward"`
	Currency    int      `json:"currency"`
	Essence     int      `json:"essence"`
}

// BaseStats returns a fresh stat block seeded from the enemy definition.
func (e *EnemyDef) BaseStats() stats.Block {
	return stats.Block{
		MaxHP:      e.HP,
		HP:         e.HP,
		MaxMP:      e.MP,
		MP:         e.MP,
		Attack:     e.Attack,
		Defense:    e.Defense,
		Magic:      e.Magic,
		Resistance: e.Resistance,
		Speed:      e.Speed,
	}
}

// GlyphRune returns the glyph as a rune for rendering.
func (e *EnemyDef) GlyphRune() rune {
	if len(e.Glyph) == 0 {
		return '?'
	}
	return rune(e.Glyph[0])
}

// TCellColor returns the color as a tcell.Color, falling back to white.
func (e *EnemyDef) TCellColor() tcell.Color {
	color, err := ParseHexColor(e.Color)
	if err != nil {
		return tcell.ColorWhite
	}
	return color
}

// EnemiesFile represents the structure of enemies.json.
type EnemiesFile struct {
	Enemies []EnemyDef `json:"enemies"`
}

// LoadEnemies loads enemy definitions from the embedded enemies.json file.
func LoadEnemies() ([]EnemyDef, error) {
	file, err := Load[EnemiesFile]("enemies.json")
	if err != nil {
		return nil, err
	}
	return file.Enemies, nil
}
