// Package world provides overworld map generation and queries.
package world

// Tile represents a single overworld tile.
type Tile rune

const (
	// TileThicket is impassable overgrowth bounding the walkable map.
	TileThicket Tile = '#'
	// TileGrass is open, walkable ground.
	TileGrass Tile = '.'
	// TileMarsh is walkable but more likely to stir an encounter.
	TileMarsh Tile = '~'
)

// IsPassable returns true if the party can walk on the tile.
func (t Tile) IsPassable() bool {
	return t == TileGrass || t == TileMarsh
}

// EncounterChance returns the percent chance a step onto this tile triggers
// an encounter.
func (t Tile) EncounterChance() int {
	switch t {
	case TileGrass:
		return 8
	case TileMarsh:
		return 18
	default:
		return 0
	}
}

// Rune returns the tile's display character.
func (t Tile) Rune() rune {
	return rune(t)
}
